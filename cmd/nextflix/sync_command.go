package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nextflix/internal/pipeline"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var csvPath string
	var retries int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the favorites CSV into the local database, enriching gaps from external catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if csvPath == "" {
				csvPath = cfg.CSV.Path
			}

			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			tc, err := ctx.tmdbClient()
			if err != nil {
				return err
			}
			oc, err := ctx.omdbClient()
			if err != nil {
				return err
			}

			p := pipeline.New(tc, oc, s, ctx.logger())
			var stats pipeline.SyncStats
			err = pipeline.Retry(cmd.Context(), retries, time.Second, func() error {
				var runErr error
				stats, runErr = p.Sync(cmd.Context(), csvPath)
				return runErr
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d movies: %d enriched, %d already complete, %d failed\n",
				stats.Total, stats.Enriched, stats.Skipped, stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Favorites CSV path (defaults to the configured one)")
	cmd.Flags().IntVar(&retries, "retries", 1, "Attempts for the whole run when providers are unavailable")
	return cmd
}
