// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/wikithat/internal/catalog"
	"github.com/tomtom215/wikithat/internal/logging"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one catalog sync and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()

			res, syncErr := a.manager.TriggerSync(cmd.Context())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if syncErr != nil {
				return fmt.Errorf("catalog sync failed: %w", syncErr)
			}
			return nil
		},
	}
}

func newBackfillCmd(opts *rootOptions) *cobra.Command {
	var pageSize int

	cmd := &cobra.Command{
		Use:   "backfill-keys",
		Short: "Compute normalized lookup keys for catalog rows that lack one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()

			n, err := catalog.BackfillNormalizedKeys(cmd.Context(), a.db, pageSize)
			logging.Info().Int("updated", n).Msg("Normalized key backfill finished")
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d rows\n", n)
			return err
		},
	}
	cmd.Flags().IntVar(&pageSize, "page-size", catalog.DefaultBackfillPageSize, "rows read per page")
	return cmd
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve TOPIC...",
		Short: "Print the catalog identifier a topic resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()

			topic := strings.Join(args, " ")
			fmt.Fprintln(cmd.OutOrStdout(), a.resolver.Resolve(cmd.Context(), topic))
			return nil
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print schema version and per-table row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()

			version, err := a.db.GetCurrentSchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			counts, err := a.db.TableCounts(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"schema_version": version,
				"tables":         counts,
			})
		},
	}
}
