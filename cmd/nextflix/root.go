package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nextflix/internal/config"
	"nextflix/internal/omdb"
	"nextflix/internal/store"
	"nextflix/internal/tmdb"
	"nextflix/pkg/logger"
)

// commandContext shares lazily built dependencies across subcommands.
type commandContext struct {
	configFlag *string

	cfg    *config.Config
	log    *zerolog.Logger
	opened *store.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(*c.configFlag)
	if err != nil {
		return config.Config{}, err
	}
	c.cfg = &cfg
	return cfg, nil
}

func (c *commandContext) logger() zerolog.Logger {
	if c.log == nil {
		level := "info"
		if c.cfg != nil {
			level = c.cfg.LogLevel
		}
		log := logger.NewWithLevel(level)
		c.log = &log
	}
	return *c.log
}

func (c *commandContext) openStore() (*store.Store, error) {
	if c.opened != nil {
		return c.opened, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.Store.Path, c.logger())
	if err != nil {
		return nil, err
	}
	c.opened = s
	return s, nil
}

func (c *commandContext) closeStore() {
	if c.opened != nil {
		_ = c.opened.Close()
		c.opened = nil
	}
}

func (c *commandContext) tmdbClient() (*tmdb.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireProviderKeys(); err != nil {
		return nil, err
	}
	return tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, tmdb.WithTimeout(cfg.HTTPTimeout()))
}

func (c *commandContext) omdbClient() (*omdb.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return omdb.New(cfg.OMDB.APIKey, cfg.OMDB.BaseURL, omdb.WithTimeout(cfg.HTTPTimeout()))
}

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "nextflix",
		Short:         "Personal movie catalog with external enrichment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.closeStore()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newSyncCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newRecommendCommand(ctx))
	rootCmd.AddCommand(newCompareCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))

	return rootCmd
}

func fmtPtrFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

func fmtPtrInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func fmtPtrString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
