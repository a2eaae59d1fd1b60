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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bizflycloud/bizfly-s3/pkg/config"
	"github.com/bizflycloud/bizfly-s3/pkg/logger"
	"github.com/bizflycloud/bizfly-s3/pkg/repository"
	"github.com/bizflycloud/bizfly-s3/pkg/transfer"
)

var (
	cfgFile      string
	debug        bool
	logFile      string
	ensureBucket bool
	log          *zap.Logger

	conf    config.Config
	confErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "bizfly-s3",
	Short:         "BizFly Cloud object storage client.",
	Long:          `bizfly-s3 is a CLI application to manage buckets and transfer checksummed objects to an S3-compatible storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			fmt.Println(err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if log != nil {
			log.Error(err.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bizfly-s3.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug (default is false)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file, rotated")
	rootCmd.PersistentFlags().BoolVar(&ensureBucket, "ensure-bucket", false, "create the default bucket ($MINIO_BUCKET) if it does not exist")
}

// initConfig reads in the .env file, config file and ENV variables if set.
func initConfig() {
	conf, confErr = config.Config{}, nil

	var err error
	if log, err = logger.New(logger.Options{Debug: debug, File: logFile}); err != nil {
		panic(err)
	}

	if err := config.LoadDotEnv(); err != nil {
		log.Warn("Could not load .env file", zap.Error(err))
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}

		// Search config in home directory with name ".bizfly-s3" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".bizfly-s3")
	}

	config.SetDefaults(viper.GetViper())

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info("Using config file: " + viper.ConfigFileUsed())
	} else if cfgFile != "" {
		confErr = fmt.Errorf("read config %s: %w", cfgFile, err)
		return
	}

	conf, confErr = config.Load(viper.GetViper())
	if confErr == nil {
		log.Debug("Loaded S3 config", zap.Stringer("config", conf))
	}
}

// connect builds the repository every storage command works with.
func connect(ctx context.Context, opts ...transfer.Option) (*repository.Repository, error) {
	if confErr != nil {
		return nil, confErr
	}
	repoOpts := []repository.Option{
		repository.WithLogger(log),
		repository.WithTransferOptions(opts...),
	}
	if ensureBucket {
		repoOpts = append(repoOpts, repository.WithEnsureBucket())
	}
	return repository.Connect(ctx, conf, repoOpts...)
}
