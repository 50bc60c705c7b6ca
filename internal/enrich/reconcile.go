package enrich

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"nextflix/internal/omdb"
)

// Canonical is the reconciled, gap-filled field set ready for
// persistence.
type Canonical struct {
	RawFields

	IMDBRating       *float64 // 0-10
	RTRating         *string  // e.g. "87%"
	MetacriticRating *int     // 0-100
}

// Reconciler merges the secondary ratings source into extracted fields.
type Reconciler struct {
	client *omdb.Client
	log    zerolog.Logger
}

func NewReconciler(client *omdb.Client, log zerolog.Logger) *Reconciler {
	return &Reconciler{client: client, log: log}
}

// Reconcile queries the secondary source by exact title/year and fills
// the fields the primary catalog does not provide. On overlapping fields
// the primary catalog always wins; mismatches are logged, never fatal.
// Any secondary-source failure yields a canonical record with null
// ratings rather than an error.
func (r *Reconciler) Reconcile(ctx context.Context, raw RawFields, title string, year int) Canonical {
	canonical := Canonical{RawFields: raw}

	ratings, err := r.client.ByTitle(ctx, title, year)
	if err != nil {
		if errors.Is(err, omdb.ErrNoData) {
			r.log.Debug().Str("title", title).Int("year", year).Msg("secondary source has no record")
		} else {
			r.log.Warn().Err(err).Str("title", title).Msg("secondary source unavailable, ratings left null")
		}
		return canonical
	}

	canonical.IMDBRating = ratings.IMDB
	canonical.RTRating = ratings.RT
	canonical.MetacriticRating = ratings.Metacritic

	if len(raw.Director) > 0 && ratings.Director != "" {
		primary := strings.Join(raw.Director, ", ")
		if primary != ratings.Director {
			r.log.Warn().Str("title", title).
				Str("primary", primary).Str("secondary", ratings.Director).
				Msg("director mismatch between sources, keeping primary")
		}
	}
	// The secondary source may know the runtime when the catalog does not.
	if canonical.Duration == nil && ratings.Runtime != nil {
		canonical.Duration = ratings.Runtime
	}
	return canonical
}
