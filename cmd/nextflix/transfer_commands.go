package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nextflix/internal/csvfile"
	"nextflix/internal/store"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection back out as a favorites CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.CSV.Path
			}
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			movies, err := s.List(cmd.Context())
			if err != nil {
				return err
			}

			entries := make([]csvfile.Entry, 0, len(movies))
			for _, m := range movies {
				entries = append(entries, csvfile.Entry{
					Name:     m.Name,
					Year:     m.Year,
					Genre:    m.Genre,
					Rating:   m.Rating,
					Producer: m.Producer,
					Mood:     m.Mood,
					Keywords: m.Keywords,
				})
			}
			if err := csvfile.WriteAll(out, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d movies to %s\n", len(entries), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination CSV path (defaults to the configured one)")
	return cmd
}

// import loads CSV rows into the store as-is. Unlike sync it never
// calls external catalogs; run sync afterwards to fill the gaps.
func newImportCommand(ctx *commandContext) *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a favorites CSV into the database without external enrichment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if in == "" {
				in = cfg.CSV.Path
			}
			s, err := ctx.openStore()
			if err != nil {
				return err
			}

			entries, err := csvfile.Read(in)
			if err != nil {
				return err
			}
			imported := 0
			for _, e := range entries {
				err := s.Upsert(cmd.Context(), store.UpsertParams{
					Name:     e.Name,
					Year:     e.Year,
					Genre:    e.Genre,
					Rating:   e.Rating,
					Mood:     e.Mood,
					Keywords: e.Keywords,
				})
				if err != nil {
					return err
				}
				imported++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d movies from %s\n", imported, in)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "Source CSV path (defaults to the configured one)")
	return cmd
}
