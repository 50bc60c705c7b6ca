// Package pipeline orchestrates the enrichment flow: identity
// resolution, field extraction, cross-source reconciliation, and the
// merge into the local store.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nextflix/internal/csvfile"
	"nextflix/internal/enrich"
	"nextflix/internal/omdb"
	"nextflix/internal/resolve"
	"nextflix/internal/store"
	"nextflix/internal/tmdb"
)

// Input is one user-authored record entering the pipeline.
type Input struct {
	Name     string
	Year     int
	Genre    string
	Rating   float64
	Mood     string
	Keywords []string
}

// Result reports what the pipeline did for one input.
type Result struct {
	Name     string
	Year     int
	Enriched bool
}

// Pipeline ties the enrichment stages to the store.
type Pipeline struct {
	resolver   *resolve.Resolver
	extractor  *enrich.Extractor
	reconciler *enrich.Reconciler
	store      *store.Store
	log        zerolog.Logger
}

func New(tc *tmdb.Client, oc *omdb.Client, s *store.Store, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		resolver:   resolve.New(tc, log),
		extractor:  enrich.NewExtractor(tc, log),
		reconciler: enrich.NewReconciler(oc, log),
		store:      s,
		log:        log,
	}
}

// Enrich runs the full flow for one input and upserts the outcome.
// When no external identity can be resolved the user-authored fields
// are still persisted; enrichment failure is never data loss.
func (p *Pipeline) Enrich(ctx context.Context, in Input) (Result, error) {
	res := Result{Name: in.Name, Year: in.Year}

	identity, err := p.resolver.Resolve(ctx, in.Name, in.Year)
	if err != nil {
		if errors.Is(err, resolve.ErrNotFound) {
			p.log.Warn().Str("title", in.Name).Int("year", in.Year).
				Msg("no external match, storing user fields only")
			return res, p.store.Upsert(ctx, userOnlyParams(in))
		}
		return res, err
	}

	raw := p.extractor.Extract(ctx, identity)
	canonical := p.reconciler.Reconcile(ctx, raw, in.Name, in.Year)

	if err := p.store.Upsert(ctx, mergeParams(in, canonical)); err != nil {
		return res, err
	}
	res.Enriched = true
	return res, nil
}

// SyncStats summarizes one favorites sync run.
type SyncStats struct {
	Total    int
	Enriched int
	Skipped  int
	Failed   int
}

// Sync pushes every favorites entry into the store. External providers
// are consulted only for entries whose stored record still has gaps in
// the fetched fields; complete records get a local-only upsert. One
// failing entry does not stop the run.
func (p *Pipeline) Sync(ctx context.Context, csvPath string) (SyncStats, error) {
	entries, err := csvfile.Read(csvPath)
	if err != nil {
		return SyncStats{}, err
	}

	var stats SyncStats
	for _, e := range entries {
		stats.Total++
		in := Input{
			Name:     e.Name,
			Year:     e.Year,
			Genre:    e.Genre,
			Rating:   e.Rating,
			Mood:     e.Mood,
			Keywords: e.Keywords,
		}

		existing, err := p.store.GetByKey(ctx, e.Name, e.Year)
		if err == nil && !hasGaps(existing) {
			if upErr := p.store.Upsert(ctx, userOnlyParams(in)); upErr != nil {
				p.log.Error().Str("title", e.Name).Int("year", e.Year).Err(upErr).Msg("sync upsert failed")
				stats.Failed++
				continue
			}
			stats.Skipped++
			continue
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			p.log.Error().Str("title", e.Name).Int("year", e.Year).Err(err).Msg("sync lookup failed")
			stats.Failed++
			continue
		}

		res, err := p.Enrich(ctx, in)
		if err != nil {
			p.log.Error().Str("title", e.Name).Int("year", e.Year).Err(err).Msg("sync enrichment failed")
			stats.Failed++
			continue
		}
		if res.Enriched {
			stats.Enriched++
		} else {
			stats.Skipped++
		}
	}

	p.log.Info().Int("total", stats.Total).Int("enriched", stats.Enriched).
		Int("skipped", stats.Skipped).Int("failed", stats.Failed).
		Msg("favorites sync finished")
	return stats, nil
}

// hasGaps reports whether any fetched field is still missing, matching
// the set of columns the sync considers worth a provider round trip.
func hasGaps(m *store.Movie) bool {
	return m.IMDBRating == nil ||
		m.Director == "" ||
		m.Composer == "" ||
		m.Producer == "" ||
		m.Studio == "" ||
		m.Plot == "" ||
		m.Duration == nil
}

func userOnlyParams(in Input) store.UpsertParams {
	return store.UpsertParams{
		Name:     in.Name,
		Year:     in.Year,
		Genre:    in.Genre,
		Rating:   in.Rating,
		Mood:     in.Mood,
		Keywords: in.Keywords,
	}
}

func mergeParams(in Input, c enrich.Canonical) store.UpsertParams {
	genre := in.Genre
	if genre == "" {
		genre = strings.Join(c.Genres, ", ")
	}
	return store.UpsertParams{
		Name:       in.Name,
		Year:       in.Year,
		Genre:      genre,
		Rating:     in.Rating,
		Mood:       in.Mood,
		IMDBRating: c.IMDBRating,
		RTRating:   c.RTRating,
		Metacritic: c.MetacriticRating,
		Director:   strings.Join(c.Director, ", "),
		Actors:     strings.Join(c.Cast, ", "),
		Composer:   strings.Join(c.Composer, ", "),
		Producer:   strings.Join(c.Producer, ", "),
		Studio:     strings.Join(c.Studio, ", "),
		Plot:       c.Plot,
		Duration:   c.Duration,
		Budget:     c.Budget,
		Revenue:    c.Revenue,
		Keywords:   in.Keywords,
	}
}

// Retry runs fn up to attempts times with exponential backoff, giving
// up early when the context is done.
func Retry(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	var err error
	delay := base
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
