// Package recommend suggests unwatched movies based on the highest
// rated entries in the local collection.
package recommend

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"nextflix/internal/enrich"
	"nextflix/internal/store"
	"nextflix/internal/tmdb"
)

const (
	defaultMinRating = 3.5
	defaultPerMovie  = 5
	maxSuggestions   = 15
)

// Options filter which collection entries seed the suggestions and
// which results survive.
type Options struct {
	MinRating     float64
	Genre         string
	MinYear       int
	MinTMDBRating float64
	PerMovie      int
}

// Suggestion is one recommended title with the collection entry that
// produced it.
type Suggestion struct {
	Title      string
	Year       string
	Overview   string
	TMDBRating float64
	Genres     []string
	BasedOn    string
}

// Engine derives suggestions from the store and the external catalog.
type Engine struct {
	store  *store.Store
	client *tmdb.Client
	log    zerolog.Logger
}

func New(s *store.Store, client *tmdb.Client, log zerolog.Logger) *Engine {
	return &Engine{store: s, client: client, log: log}
}

// Suggest collects recommendations seeded by liked movies. Already
// watched titles are excluded by case-insensitive title match, results
// are deduplicated by title keeping the first occurrence, and at most
// fifteen suggestions are returned. A seed that cannot be matched
// upstream is skipped, not fatal.
func (e *Engine) Suggest(ctx context.Context, opts Options) ([]Suggestion, error) {
	if opts.MinRating <= 0 {
		opts.MinRating = defaultMinRating
	}
	if opts.PerMovie <= 0 {
		opts.PerMovie = defaultPerMovie
	}

	all, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}

	watched := make(map[string]struct{}, len(all))
	var liked []store.Movie
	for _, m := range all {
		watched[strings.ToLower(m.Name)] = struct{}{}
		if m.Rating < opts.MinRating {
			continue
		}
		if opts.Genre != "" && !strings.Contains(strings.ToLower(m.Genre), strings.ToLower(opts.Genre)) {
			continue
		}
		if opts.MinYear > 0 && m.Year < opts.MinYear {
			continue
		}
		liked = append(liked, m)
	}
	if len(liked) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var out []Suggestion
	for _, seed := range liked {
		found, err := e.client.SearchMovie(ctx, seed.Name, seed.Year)
		if err != nil || len(found.Results) == 0 {
			e.log.Warn().Str("title", seed.Name).Int("year", seed.Year).Msg("seed not matched upstream, skipping")
			continue
		}
		resp, err := e.client.GetRecommendations(ctx, found.Results[0].ID)
		if err != nil {
			e.log.Warn().Str("title", seed.Name).Err(err).Msg("recommendations fetch failed, skipping seed")
			continue
		}
		recs := resp.Results
		if len(recs) > opts.PerMovie {
			recs = recs[:opts.PerMovie]
		}
		for _, rec := range recs {
			key := strings.ToLower(rec.Title)
			if _, ok := watched[key]; ok {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			if opts.MinTMDBRating > 0 && rec.VoteAverage < opts.MinTMDBRating {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, Suggestion{
				Title:      rec.Title,
				Year:       releaseYear(rec.ReleaseDate),
				Overview:   rec.Overview,
				TMDBRating: rec.VoteAverage,
				Genres:     enrich.GenreNames(rec.GenreIDs),
				BasedOn:    seed.Name,
			})
			if len(out) >= maxSuggestions {
				return out, nil
			}
		}
	}
	return out, nil
}

func releaseYear(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return "N/A"
}
