// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/logging"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "wikithat",
		Short:         "Encyclopedia topic comparison server",
		Long:          "wikithat resolves topics across Wikipedia and Grokipedia, caches both articles and serves AI comparison verdicts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before configuration (ignored if missing)")

	serve := newServeCmd(opts)
	root.RunE = serve.RunE

	root.AddCommand(
		serve,
		newSyncCmd(opts),
		newBackfillCmd(opts),
		newResolveCmd(opts),
		newStatsCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads the dotenv file, the configuration and initializes logging.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", o.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wikithat %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
