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
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listBucketsHeaders = []string{"Name"}

var bucketListCmd = &cobra.Command{
	Use:   "bucket-list",
	Short: "List all buckets.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		names, err := repo.Bucket().List(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("Buckets", zap.Strings("buckets", names))

		data := make([][]string, 0, len(names))
		for _, n := range names {
			data = append(data, []string{n})
		}
		renderTable(cmd.OutOrStdout(), listBucketsHeaders, data)
		return nil
	},
}

var bucketExistsCmd = &cobra.Command{
	Use:   "bucket-exists NAME",
	Short: "Check whether a bucket exists.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		exists, err := repo.Bucket().Exists(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		log.Info("Exists?", zap.String("bucket", args[0]), zap.Bool("exists", exists))
		fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(exists))
		return nil
	},
}

var bucketCreateCmd = &cobra.Command{
	Use:   "bucket-create NAME",
	Short: "Create a bucket in the configured region, unless it exists.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		return repo.Bucket().Ensure(cmd.Context(), args[0], repo.Conf.Region)
	},
}

var bucketDeleteCmd = &cobra.Command{
	Use:   "bucket-delete NAME",
	Short: "Delete every object of a bucket, then the bucket.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("Deleting bucket: " + args[0])
		n, err := repo.Bucket().DeleteObjects(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("empty bucket %s after %d deletions: %w", args[0], n, err)
		}
		if err := repo.Bucket().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		log.Info("Bucket deleted", zap.Int("objects", n))
		return nil
	},
}

var bucketStatsCmd = &cobra.Command{
	Use:   "bucket-stats NAME",
	Short: "Show object count and total size of a bucket.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		stats, err := repo.Bucket().Stats(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		log.Info(fmt.Sprintf("Bucket '%s': %s", args[0], stats))
		renderTable(cmd.OutOrStdout(), []string{"Bucket", "Objects", "Size", "Bytes"}, [][]string{{
			args[0],
			strconv.Itoa(stats.ObjectCount),
			humanize.Bytes(stats.TotalSize),
			strconv.FormatUint(stats.TotalSize, 10),
		}})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bucketListCmd)
	rootCmd.AddCommand(bucketExistsCmd)
	rootCmd.AddCommand(bucketCreateCmd)
	rootCmd.AddCommand(bucketDeleteCmd)
	rootCmd.AddCommand(bucketStatsCmd)
}
