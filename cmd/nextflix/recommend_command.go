package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nextflix/internal/recommend"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var opts recommend.Options

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest unwatched movies based on your highest rated ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			tc, err := ctx.tmdbClient()
			if err != nil {
				return err
			}

			engine := recommend.New(s, tc, ctx.logger())
			suggestions, err := engine.Suggest(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if len(suggestions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No suggestions; rate a few movies highly first")
				return nil
			}

			rows := make([][]string, 0, len(suggestions))
			for _, sug := range suggestions {
				rows = append(rows, []string{
					sug.Title,
					sug.Year,
					fmt.Sprintf("%.1f", sug.TMDBRating),
					strings.Join(sug.Genres, ", "),
					sug.BasedOn,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Title", "Year", "TMDB", "Genres", "Based On"}, rows, 2, 3))
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.MinRating, "min-rating", 0, "Personal rating a movie needs to seed suggestions (default 3.5)")
	cmd.Flags().StringVar(&opts.Genre, "genre", "", "Only seed from movies in this genre")
	cmd.Flags().IntVar(&opts.MinYear, "min-year", 0, "Only seed from movies released on or after this year")
	cmd.Flags().Float64Var(&opts.MinTMDBRating, "min-tmdb", 0, "Drop suggestions below this TMDB rating")
	cmd.Flags().IntVar(&opts.PerMovie, "per-movie", 0, "Suggestions fetched per seed movie (default 5)")
	return cmd
}
