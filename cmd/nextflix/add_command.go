package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nextflix/internal/csvfile"
	"nextflix/internal/pipeline"
	"nextflix/internal/store"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		rating   float64
		mood     string
		genre    string
		keywords string
		skipCSV  bool
	)

	cmd := &cobra.Command{
		Use:   "add <title> <year>",
		Short: "Add one movie: enrich from external catalogs and store it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := args[0]
			year, err := strconv.Atoi(args[1])
			if err != nil || year <= 0 {
				return fmt.Errorf("invalid year %q", args[1])
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
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
			res, err := p.Enrich(cmd.Context(), pipeline.Input{
				Name:     title,
				Year:     year,
				Genre:    genre,
				Rating:   rating,
				Mood:     mood,
				Keywords: store.SplitKeywords(keywords),
			})
			if err != nil {
				return err
			}

			if !skipCSV {
				if err := csvfile.Append(cfg.CSV.Path, csvfile.Entry{
					Name:     title,
					Year:     year,
					Genre:    genre,
					Rating:   rating,
					Mood:     mood,
					Keywords: store.SplitKeywords(keywords),
				}); err != nil {
					return err
				}
			}

			if res.Enriched {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d) with external data\n", title, year)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d) without external data (no catalog match)\n", title, year)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&rating, "rating", 0, "Personal rating")
	cmd.Flags().StringVar(&mood, "mood", "", "Mood tag")
	cmd.Flags().StringVar(&genre, "genre", "", "Genre override (external genres used when empty)")
	cmd.Flags().StringVar(&keywords, "keywords", "", "Comma-separated keywords")
	cmd.Flags().BoolVar(&skipCSV, "no-csv", false, "Do not append the entry to the favorites CSV")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}
