package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nextflix/internal/store"
)

func movieRows(movies []store.Movie) [][]string {
	rows := make([][]string, 0, len(movies))
	for _, m := range movies {
		rows = append(rows, []string{
			m.Name,
			fmt.Sprintf("%d", m.Year),
			m.Genre,
			fmt.Sprintf("%.1f", m.Rating),
			fmtPtrFloat(m.IMDBRating),
			m.Mood,
			m.Director,
			strings.Join(m.Keywords, ", "),
		})
	}
	return rows
}

var movieHeaders = []string{"Name", "Year", "Genre", "Rating", "IMDb", "Mood", "Director", "Keywords"}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the whole collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			movies, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(movies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Collection is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(movieHeaders, movieRows(movies), 2, 4, 5))
			return nil
		},
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var f store.Filter

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the collection by name, year, genre, mood, people or keyword",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			movies, err := s.Search(cmd.Context(), f)
			if err != nil {
				return err
			}
			if len(movies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(movieHeaders, movieRows(movies), 2, 4, 5))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Name, "name", "", "Title substring")
	cmd.Flags().IntVar(&f.MinYear, "min-year", 0, "Earliest release year")
	cmd.Flags().IntVar(&f.MaxYear, "max-year", 0, "Latest release year")
	cmd.Flags().StringVar(&f.Genre, "genre", "", "Genre substring")
	cmd.Flags().StringVar(&f.Mood, "mood", "", "Mood substring")
	cmd.Flags().Float64Var(&f.MinRating, "min-rating", 0, "Minimum personal rating")
	cmd.Flags().StringVar(&f.Director, "director", "", "Director substring")
	cmd.Flags().StringVar(&f.Actor, "actor", "", "Actor substring")
	cmd.Flags().StringVar(&f.Keyword, "keyword", "", "Keyword substring")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "delete <title>",
		Short: "Remove a movie and its keywords from the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			if err := s.Delete(cmd.Context(), args[0], year); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%d)\n", args[0], year)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Release year")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}
