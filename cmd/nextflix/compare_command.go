package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare your ratings against IMDb, biggest disagreements first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			comparisons, err := s.CompareRatings(cmd.Context())
			if err != nil {
				return err
			}
			if len(comparisons) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No movies with external ratings yet; run sync first")
				return nil
			}

			rows := make([][]string, 0, len(comparisons))
			for _, c := range comparisons {
				rows = append(rows, []string{
					c.Name,
					fmt.Sprintf("%d", c.Year),
					fmt.Sprintf("%.1f", c.MyRating),
					fmt.Sprintf("%.1f", c.IMDBRating),
					fmtPtrString(c.RTRating),
					fmtPtrInt(c.Metacritic),
					fmt.Sprintf("%+.1f", c.DiffIMDB),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Year", "Mine", "IMDb", "RT", "MC", "Diff"}, rows, 2, 3, 4, 5, 6, 7))
			return nil
		},
	}
}
