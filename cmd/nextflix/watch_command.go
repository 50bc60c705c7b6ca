package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nextflix/internal/enrich"
	"nextflix/internal/resolve"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "watch <title> [year]",
		Short: "Show which streaming services carry a movie in your region",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if region == "" {
				region = cfg.Region
			}
			year := 0
			if len(args) == 2 {
				if year, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid year %q", args[1])
				}
			}

			tc, err := ctx.tmdbClient()
			if err != nil {
				return err
			}
			resolver := resolve.New(tc, ctx.logger())
			identity, err := resolver.Resolve(cmd.Context(), args[0], year)
			if err != nil {
				return err
			}

			avail, err := enrich.WhereToWatch(cmd.Context(), tc, identity.ID, region)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if avail.Status == enrich.StatusNotInRegion {
				fmt.Fprintf(out, "%s (%d) is not streaming in %s\n", identity.Title, identity.Year, region)
				return nil
			}
			fmt.Fprintf(out, "%s (%d) streams in %s on: %s\n",
				identity.Title, identity.Year, region, strings.Join(avail.Providers, ", "))
			if avail.Link != "" {
				fmt.Fprintf(out, "Details: %s\n", avail.Link)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "Two-letter region code (defaults to the configured one)")
	return cmd
}
