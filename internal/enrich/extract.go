package enrich

import (
	"context"

	"github.com/rs/zerolog"

	"nextflix/internal/resolve"
	"nextflix/internal/tmdb"
)

// Crew job titles used by the role mapping. The discovery writer set is
// deliberately broader than the sync one; both call sites exist in the
// product and depend on the distinction.
var (
	composerJobs       = map[string]bool{"Original Music Composer": true, "Music": true, "Composer": true}
	writerJobs         = map[string]bool{"Writer": true, "Screenplay": true}
	writerJobsExtended = map[string]bool{"Writer": true, "Screenplay": true, "Story": true, "Novel": true}
)

const (
	topCast      = 5
	topProducers = 3
)

// RawFields is the intermediate record pulled from the primary catalog
// for one resolved identity. Nil pointers mean "not available"; a
// provider-reported zero budget/revenue/runtime is not a real value.
type RawFields struct {
	Title    string
	Year     int
	Genres   []string
	Plot     string
	Director []string
	Cast     []string
	Composer []string
	Writer   []string
	Producer []string
	Studio   []string
	Duration *int
	Budget   *int64
	Revenue  *int64
}

// Extractor pulls structured fields out of provider responses.
type Extractor struct {
	client *tmdb.Client
	log    zerolog.Logger
}

func NewExtractor(client *tmdb.Client, log zerolog.Logger) *Extractor {
	return &Extractor{client: client, log: log}
}

// Extract fetches details and credits for the identity and maps them
// into a RawFields. A failing provider call degrades only its own field
// set; extraction never aborts the record.
func (e *Extractor) Extract(ctx context.Context, identity resolve.Identity) RawFields {
	raw := RawFields{Title: identity.Title, Year: identity.Year}

	details, err := e.client.GetMovieDetails(ctx, identity.ID)
	if err != nil {
		e.log.Warn().Err(err).Int64("tmdb_id", identity.ID).Msg("details fetch failed, leaving fields null")
	} else {
		applyDetails(&raw, details)
	}

	credits, err := e.client.GetMovieCredits(ctx, identity.ID)
	if err != nil {
		e.log.Warn().Err(err).Int64("tmdb_id", identity.ID).Msg("credits fetch failed, leaving fields null")
	} else {
		applyCredits(&raw, credits)
	}
	return raw
}

func applyDetails(raw *RawFields, details *tmdb.MovieDetails) {
	if details.Title != "" {
		raw.Title = details.Title
	}
	if len(details.ReleaseDate) >= 4 {
		if y := (tmdb.Result{ReleaseDate: details.ReleaseDate}).Year(); y > 0 {
			raw.Year = y
		}
	}
	raw.Plot = details.Overview

	ids := make([]int, 0, len(details.Genres))
	for _, g := range details.Genres {
		ids = append(ids, g.ID)
	}
	raw.Genres = GenreNames(ids)

	for _, c := range details.ProductionCompanies {
		raw.Studio = append(raw.Studio, c.Name)
	}
	// Zero means the catalog has no figure, not a real zero.
	if details.Runtime > 0 {
		d := details.Runtime
		raw.Duration = &d
	}
	if details.Budget > 0 {
		b := details.Budget
		raw.Budget = &b
	}
	if details.Revenue > 0 {
		r := details.Revenue
		raw.Revenue = &r
	}
}

func applyCredits(raw *RawFields, credits *tmdb.Credits) {
	raw.Director = crewByJob(credits.Crew, func(job string) bool { return job == "Director" }, 0)
	raw.Composer = crewByJob(credits.Crew, func(job string) bool { return composerJobs[job] }, 0)
	raw.Writer = crewByJob(credits.Crew, func(job string) bool { return writerJobs[job] }, 0)
	raw.Producer = crewByJob(credits.Crew, func(job string) bool { return job == "Producer" }, topProducers)

	// Cast arrives pre-sorted by billing order; take the top entries as is.
	for i, c := range credits.Cast {
		if i >= topCast {
			break
		}
		raw.Cast = append(raw.Cast, c.Name)
	}
}

// WritersExtended applies the broader discovery-search writer set.
func WritersExtended(credits *tmdb.Credits) []string {
	if credits == nil {
		return nil
	}
	return crewByJob(credits.Crew, func(job string) bool { return writerJobsExtended[job] }, 0)
}

// crewByJob collects crew names matching the job predicate in encounter
// order, capped at limit when limit is positive.
func crewByJob(crew []tmdb.CrewMember, match func(string) bool, limit int) []string {
	var out []string
	for _, m := range crew {
		if !match(m.Job) {
			continue
		}
		out = append(out, m.Name)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
