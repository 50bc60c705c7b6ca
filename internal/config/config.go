package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Example env overrides:
// NEXTFLIX_TMDB_API_KEY=...
// NEXTFLIX_OMDB_API_KEY=...
// NEXTFLIX_REGION=US
// NEXTFLIX_DB_PATH=movies.db
// NEXTFLIX_CSV_PATH=FavMovies.csv
// NEXTFLIX_HTTP_TIMEOUT_SECONDS=8
// NEXTFLIX_LOG_LEVEL=debug
type Config struct {
	Region   string `toml:"region"`
	LogLevel string `toml:"log_level"`

	TMDB  TMDBConfig  `toml:"tmdb"`
	OMDB  OMDBConfig  `toml:"omdb"`
	Store StoreConfig `toml:"store"`
	CSV   CSVConfig   `toml:"csv"`

	HTTPTimeoutSeconds int `toml:"http_timeout_seconds"`
}

type TMDBConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	WebURL  string `toml:"web_url"`
}

type OMDBConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type CSVConfig struct {
	Path string `toml:"path"`
}

func Default() Config {
	return Config{
		Region:             "US",
		LogLevel:           "info",
		HTTPTimeoutSeconds: 8,
		TMDB: TMDBConfig{
			BaseURL: "https://api.themoviedb.org/3",
			WebURL:  "https://www.themoviedb.org/movie/",
		},
		OMDB: OMDBConfig{
			BaseURL: "http://www.omdbapi.com/",
		},
		Store: StoreConfig{Path: "movies.db"},
		CSV:   CSVConfig{Path: "FavMovies.csv"},
	}
}

// Load reads a TOML config file if path is non-empty, then applies
// environment overrides. A missing file at the default path is not an
// error; an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return applyEnv(cfg).normalize(), nil
}

// FromEnv builds a config from defaults plus environment only.
func FromEnv() Config {
	return applyEnv(Default()).normalize()
}

func applyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv("NEXTFLIX_TMDB_API_KEY")); v != "" {
		cfg.TMDB.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("NEXTFLIX_TMDB_BASE_URL")); v != "" {
		cfg.TMDB.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("NEXTFLIX_OMDB_API_KEY")); v != "" {
		cfg.OMDB.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("NEXTFLIX_OMDB_BASE_URL")); v != "" {
		cfg.OMDB.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("NEXTFLIX_REGION")); v != "" {
		cfg.Region = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(os.Getenv("NEXTFLIX_DB_PATH")); v != "" {
		cfg.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("NEXTFLIX_CSV_PATH")); v != "" {
		cfg.CSV.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("NEXTFLIX_HTTP_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeoutSeconds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("NEXTFLIX_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

func (c Config) normalize() Config {
	if c.Region == "" {
		c.Region = "US"
	}
	c.Region = strings.ToUpper(strings.TrimSpace(c.Region))
	if c.HTTPTimeoutSeconds <= 0 {
		c.HTTPTimeoutSeconds = 8
	}
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = "https://api.themoviedb.org/3"
	}
	if c.OMDB.BaseURL == "" {
		c.OMDB.BaseURL = "http://www.omdbapi.com/"
	}
	if c.Store.Path == "" {
		c.Store.Path = "movies.db"
	}
	if c.CSV.Path == "" {
		c.CSV.Path = "FavMovies.csv"
	}
	return c
}

// RequireProviderKeys rejects configs that cannot reach the external
// catalogs. Commands that only touch the local store skip this check.
func (c Config) RequireProviderKeys() error {
	if c.TMDB.APIKey == "" {
		return errors.New("tmdb api key is required (NEXTFLIX_TMDB_API_KEY)")
	}
	return nil
}

// HTTPTimeout returns the per-call provider timeout.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
