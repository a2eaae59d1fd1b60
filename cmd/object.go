// This file is part of bizfly-s3
//
// Copyright (C) 2020  BizFly Cloud
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bizflycloud/bizfly-s3/pkg/transfer"
)

var (
	listObjectsHeaders = []string{"Key"}
	outputFormat       string
	noVerify           bool
	showProgress       bool
)

var objectListCmd = &cobra.Command{
	Use:   "object-list BUCKET PREFIX",
	Short: "List the keys of a bucket starting with PREFIX.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		keys, err := repo.Object().List(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		log.Info("Objects", zap.String("bucket", args[0]), zap.Int("count", len(keys)))

		data := make([][]string, 0, len(keys))
		for _, k := range keys {
			data = append(data, []string{k})
		}
		renderTable(cmd.OutOrStdout(), listObjectsHeaders, data)
		return nil
	},
}

var objectInfoCmd = &cobra.Command{
	Use:   "object-info BUCKET KEY",
	Short: "Show the attributes and metadata of an object.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		info, err := repo.Object().Info(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printInfo(cmd.OutOrStdout(), info, outputFormat)
	},
}

var objectUploadCmd = &cobra.Command{
	Use:   "object-upload BUCKET PATH KEY",
	Short: "Upload a local file with its SHA-256 checksum as metadata.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := connect(cmd.Context(), transferOptions()...)
		if err != nil {
			return err
		}
		bucket, path, key := args[0], args[1], args[2]
		res, err := repo.Object().Upload(cmd.Context(), bucket, path, key)
		if err != nil {
			return err
		}
		log.Info(fmt.Sprintf("Upload Bucket '%s': path: %s, key: %s success", bucket, path, key))
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", res.Checksum, key)
		return nil
	},
}

var objectDownloadCmd = &cobra.Command{
	Use:   "object-download BUCKET PATH KEY",
	Short: "Download an object to a local file and verify its checksum.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := transferOptions()
		if noVerify {
			opts = append(opts, transfer.WithoutVerify())
		}
		repo, err := connect(cmd.Context(), opts...)
		if err != nil {
			return err
		}
		bucket, path, key := args[0], args[1], args[2]
		res, err := repo.Object().Download(cmd.Context(), bucket, path, key)
		if err != nil {
			return err
		}
		log.Info(fmt.Sprintf("Download Bucket '%s': path: %s, key: %s success", bucket, path, key),
			zap.Bool("verified", res.Verified))
		status := "verified"
		if !res.Verified {
			status = "unverified"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", res.Checksum, path, status)
		return nil
	},
}

var objectDeleteCmd = &cobra.Command{
	Use:   "object-delete BUCKET KEY",
	Short: "Delete an object.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		if err := repo.Object().Delete(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		log.Info(fmt.Sprintf("Delete Bucket '%s': key: %s success", args[0], args[1]))
		return nil
	},
}

func transferOptions() []transfer.Option {
	if showProgress {
		return []transfer.Option{transfer.WithProgress(os.Stderr)}
	}
	return nil
}

func init() {
	objectInfoCmd.Flags().StringVarP(&outputFormat, "output", "o", formatJSON, "output format: json or yaml")
	objectDownloadCmd.Flags().BoolVar(&noVerify, "no-verify", false, "do not compare the downloaded file with the stored checksum")
	objectUploadCmd.Flags().BoolVar(&showProgress, "progress", false, "report transferred bytes on stderr")
	objectDownloadCmd.Flags().BoolVar(&showProgress, "progress", false, "report transferred bytes on stderr")

	rootCmd.AddCommand(objectListCmd)
	rootCmd.AddCommand(objectInfoCmd)
	rootCmd.AddCommand(objectUploadCmd)
	rootCmd.AddCommand(objectDownloadCmd)
	rootCmd.AddCommand(objectDeleteCmd)
}
