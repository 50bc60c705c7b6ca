package resolve

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"nextflix/internal/tmdb"
)

// ErrNotFound means no provider call yielded any usable candidate.
// Callers treat this as "skip enrichment" and proceed with known data.
var ErrNotFound = errors.New("resolve: not found")

// ErrEmptyQuery rejects blank titles before any network call.
var ErrEmptyQuery = errors.New("resolve: empty query")

// Identity is a resolved provider identifier for a title/year pair. It
// is valid for one enrichment operation only and is never persisted.
type Identity struct {
	ID    int64
	Title string
	Year  int
}

// Resolver finds the best-matching catalog identifier for free text.
type Resolver struct {
	client *tmdb.Client
	log    zerolog.Logger
}

func New(client *tmdb.Client, log zerolog.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

// Resolve maps a title plus optional year to a catalog identity.
// Exact search runs first; the year filter is advisory, so a fruitless
// year-constrained search is retried without the year before the fuzzy
// fallback kicks in.
func (r *Resolver) Resolve(ctx context.Context, title string, year int) (Identity, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Identity{}, ErrEmptyQuery
	}

	if resp, err := r.client.SearchMovie(ctx, title, year); err == nil && len(resp.Results) > 0 {
		return identityOf(resp.Results[0]), nil
	} else if err != nil {
		r.log.Debug().Err(err).Str("title", title).Msg("exact search failed")
	}

	if year > 0 {
		if resp, err := r.client.SearchMovie(ctx, title, 0); err == nil && len(resp.Results) > 0 {
			return identityOf(resp.Results[0]), nil
		}
	}

	return r.fuzzy(ctx, title)
}

// fuzzy decomposes the query into sub-terms, searches each, and scores
// the union of candidates against the normalized query.
func (r *Resolver) fuzzy(ctx context.Context, title string) (Identity, error) {
	terms := subTerms(title)
	queryWords := normalizeWords(title)
	normQuery := strings.Join(queryWords, " ")

	seen := make(map[int64]tmdb.Result)
	var order []int64
	var firstRaw *tmdb.Result

	for _, term := range terms {
		resp, err := r.client.SearchMovie(ctx, term, 0)
		if err != nil {
			r.log.Debug().Err(err).Str("term", term).Msg("fuzzy sub-term search failed")
			continue
		}
		if len(resp.Results) > 0 && firstRaw == nil {
			first := resp.Results[0]
			firstRaw = &first
		}
		for _, res := range resp.Results {
			if _, ok := seen[res.ID]; ok {
				continue
			}
			seen[res.ID] = res
			order = append(order, res.ID)
		}
	}
	if len(order) == 0 {
		return Identity{}, ErrNotFound
	}

	best := tmdb.Result{}
	bestScore := 0
	for _, id := range order {
		res := seen[id]
		if score := scoreCandidate(queryWords, normQuery, res.Title, res.Overview); score > bestScore {
			best = res
			bestScore = score
		}
	}
	if bestScore == 0 {
		// Nothing overlapped; trust the provider's own relevance order.
		best = *firstRaw
	}
	r.log.Debug().Str("title", title).Str("matched", best.Title).Int("score", bestScore).
		Msg("fuzzy resolution")
	return identityOf(best), nil
}

// ResolvePerson maps a free-text name to a person identifier using the
// same scoring, parameterized by the candidate's name field.
func (r *Resolver) ResolvePerson(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyQuery
	}
	resp, err := r.client.SearchPerson(ctx, name)
	if err != nil || len(resp.Results) == 0 {
		return 0, ErrNotFound
	}
	queryWords := normalizeWords(name)
	normQuery := strings.Join(queryWords, " ")
	best := resp.Results[0]
	bestScore := 0
	for _, p := range resp.Results {
		if score := scoreCandidate(queryWords, normQuery, p.Name, ""); score > bestScore {
			best = p
			bestScore = score
		}
	}
	return best.ID, nil
}

func identityOf(res tmdb.Result) Identity {
	return Identity{ID: res.ID, Title: res.Title, Year: res.Year()}
}

// subTerms decomposes a query into individual words, 2-4 word windows,
// and word-prefix truncations of length >= 3, deduplicated in encounter
// order. The full query is not repeated; it already failed exact search.
func subTerms(query string) []string {
	words := strings.Fields(strings.TrimSpace(query))
	seen := make(map[string]bool)
	var terms []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || key == strings.ToLower(query) || seen[key] {
			return
		}
		seen[key] = true
		terms = append(terms, t)
	}

	for _, w := range words {
		if len([]rune(w)) >= 3 {
			add(w)
		}
	}
	for size := 2; size <= 4 && size <= len(words); size++ {
		for i := 0; i+size <= len(words); i++ {
			add(strings.Join(words[i:i+size], " "))
		}
	}
	for _, w := range words {
		runes := []rune(w)
		for n := len(runes) - 1; n >= 3; n-- {
			add(string(runes[:n]))
		}
	}
	return terms
}

// scoreCandidate counts overlapping normalized words between the query
// and the candidate name, with a bonus when the whole query is contained
// in the candidate's name or overview.
func scoreCandidate(queryWords []string, normQuery, name, overview string) int {
	nameWords := normalizeWords(name)
	nameSet := make(map[string]bool, len(nameWords))
	for _, w := range nameWords {
		nameSet[w] = true
	}
	score := 0
	for _, w := range queryWords {
		if nameSet[w] {
			score++
		}
	}
	if normQuery != "" {
		if strings.Contains(strings.Join(nameWords, " "), normQuery) {
			score += len(queryWords)
		} else if overview != "" && strings.Contains(normalize(overview), normQuery) {
			score += len(queryWords)
		}
	}
	return score
}

func normalize(s string) string {
	return strings.Join(normalizeWords(s), " ")
}

func normalizeWords(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,:;!?'\"()[]{}-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
