package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextflix/internal/csvfile"
	"nextflix/internal/omdb"
	"nextflix/internal/store"
	"nextflix/internal/tmdb"
)

type fakeProviders struct {
	tmdb        *httptest.Server
	omdb        *httptest.Server
	detailHits  atomic.Int64
	searchHits  atomic.Int64
	ratingsHits atomic.Int64
}

func newFakeProviders(t *testing.T) *fakeProviders {
	t.Helper()
	f := &fakeProviders{}

	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		f.searchHits.Add(1)
		if r.URL.Query().Get("query") == "Inception" {
			fmt.Fprint(w, `{"results":[{"id":27205,"title":"Inception","release_date":"2010-07-15","overview":"A thief who steals corporate secrets.","genre_ids":[28,878]}]}`)
			return
		}
		fmt.Fprint(w, `{"results":[]}`)
	})
	mux.HandleFunc("/movie/27205", func(w http.ResponseWriter, r *http.Request) {
		f.detailHits.Add(1)
		fmt.Fprint(w, `{
			"id":27205,"title":"Inception","runtime":148,"budget":160000000,"revenue":836836967,
			"overview":"A thief who steals corporate secrets.",
			"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}],
			"production_companies":[{"id":923,"name":"Legendary Pictures"}],
			"production_countries":[{"iso_3166_1":"US","name":"United States of America"}]
		}`)
	})
	mux.HandleFunc("/movie/27205/credits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"cast":[
				{"name":"Leonardo DiCaprio","order":0},
				{"name":"Joseph Gordon-Levitt","order":1}
			],
			"crew":[
				{"name":"Christopher Nolan","job":"Director"},
				{"name":"Hans Zimmer","job":"Original Music Composer"},
				{"name":"Christopher Nolan","job":"Writer"},
				{"name":"Emma Thomas","job":"Producer"}
			]
		}`)
	})
	f.tmdb = httptest.NewServer(mux)
	t.Cleanup(f.tmdb.Close)

	f.omdb = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.ratingsHits.Add(1)
		if r.URL.Query().Get("t") == "Inception" {
			fmt.Fprint(w, `{
				"Response":"True","imdbRating":"8.8","Director":"Christopher Nolan","Runtime":"148 min",
				"Ratings":[
					{"Source":"Internet Movie Database","Value":"8.8/10"},
					{"Source":"Rotten Tomatoes","Value":"87%"},
					{"Source":"Metacritic","Value":"74/100"}
				]
			}`)
			return
		}
		fmt.Fprint(w, `{"Response":"False","Error":"Movie not found!"}`)
	}))
	t.Cleanup(f.omdb.Close)
	return f
}

func newPipeline(t *testing.T, f *fakeProviders) (*Pipeline, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tc, err := tmdb.New("test-key", f.tmdb.URL)
	require.NoError(t, err)
	oc, err := omdb.New("test-key", f.omdb.URL)
	require.NoError(t, err)
	return New(tc, oc, s, zerolog.Nop()), s
}

func TestEnrichFullFlow(t *testing.T) {
	f := newFakeProviders(t)
	p, s := newPipeline(t, f)
	ctx := context.Background()

	res, err := p.Enrich(ctx, Input{
		Name: "Inception", Year: 2010, Rating: 9.0, Mood: "mind-bending",
		Keywords: []string{"dream", "heist"},
	})
	require.NoError(t, err)
	assert.True(t, res.Enriched)

	m, err := s.GetByKey(ctx, "Inception", 2010)
	require.NoError(t, err)
	assert.Equal(t, "Action, Science Fiction", m.Genre)
	assert.Equal(t, "Christopher Nolan", m.Director)
	assert.Equal(t, "Leonardo DiCaprio, Joseph Gordon-Levitt", m.Actors)
	assert.Equal(t, "Hans Zimmer", m.Composer)
	assert.Equal(t, "Emma Thomas", m.Producer)
	assert.Equal(t, "Legendary Pictures", m.Studio)
	require.NotNil(t, m.IMDBRating)
	assert.Equal(t, 8.8, *m.IMDBRating)
	require.NotNil(t, m.RTRating)
	assert.Equal(t, "87%", *m.RTRating)
	require.NotNil(t, m.Metacritic)
	assert.Equal(t, 74, *m.Metacritic)
	require.NotNil(t, m.Duration)
	assert.Equal(t, 148, *m.Duration)
	require.NotNil(t, m.Budget)
	assert.Equal(t, int64(160000000), *m.Budget)
	assert.Equal(t, []string{"dream", "heist"}, m.Keywords)
}

func TestEnrichUserGenreWins(t *testing.T) {
	f := newFakeProviders(t)
	p, s := newPipeline(t, f)
	ctx := context.Background()

	_, err := p.Enrich(ctx, Input{
		Name: "Inception", Year: 2010, Genre: "Sci-Fi Heist", Rating: 9.0, Mood: "mind-bending",
	})
	require.NoError(t, err)

	m, err := s.GetByKey(ctx, "Inception", 2010)
	require.NoError(t, err)
	assert.Equal(t, "Sci-Fi Heist", m.Genre)
}

func TestEnrichUnresolvedStoresUserFields(t *testing.T) {
	f := newFakeProviders(t)
	p, s := newPipeline(t, f)
	ctx := context.Background()

	res, err := p.Enrich(ctx, Input{
		Name: "Backyard Premiere", Year: 2023, Genre: "Home Video", Rating: 10.0, Mood: "personal",
		Keywords: []string{"family"},
	})
	require.NoError(t, err)
	assert.False(t, res.Enriched)

	m, err := s.GetByKey(ctx, "Backyard Premiere", 2023)
	require.NoError(t, err)
	assert.Equal(t, 10.0, m.Rating)
	assert.Equal(t, "Home Video", m.Genre)
	assert.Nil(t, m.IMDBRating)
	assert.Empty(t, m.Director)
	assert.Equal(t, []string{"family"}, m.Keywords)
}

func TestSyncSkipsCompleteRecords(t *testing.T) {
	f := newFakeProviders(t)
	p, s := newPipeline(t, f)
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "FavMovies.csv")
	require.NoError(t, csvfile.WriteAll(csvPath, []csvfile.Entry{
		{Name: "Inception", Year: 2010, Genre: "Science Fiction", Rating: 9, Mood: "mind-bending",
			Keywords: []string{"dream"}},
	}))

	stats, err := p.Sync(ctx, csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Enriched)
	assert.Equal(t, 0, stats.Skipped)
	firstDetailHits := f.detailHits.Load()
	assert.Positive(t, firstDetailHits)

	// Second run: the stored record is complete, no provider calls.
	stats, err = p.Sync(ctx, csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Enriched)
	assert.Equal(t, firstDetailHits, f.detailHits.Load())

	// User fields still refresh on the skipped path.
	require.NoError(t, csvfile.UpdateInPlace(csvPath, "Inception", 2010, csvfile.Entry{
		Name: "Inception", Year: 2010, Genre: "Science Fiction", Rating: 9.5, Mood: "rewatched",
	}))
	_, err = p.Sync(ctx, csvPath)
	require.NoError(t, err)
	m, err := s.GetByKey(ctx, "Inception", 2010)
	require.NoError(t, err)
	assert.Equal(t, 9.5, m.Rating)
	assert.Equal(t, "rewatched", m.Mood)
	assert.Equal(t, "Christopher Nolan", m.Director)
}

func TestSyncContinuesPastUnresolvableEntries(t *testing.T) {
	f := newFakeProviders(t)
	p, s := newPipeline(t, f)
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "FavMovies.csv")
	require.NoError(t, csvfile.WriteAll(csvPath, []csvfile.Entry{
		{Name: "Backyard Premiere", Year: 2023, Rating: 10, Mood: "personal"},
		{Name: "Inception", Year: 2010, Rating: 9, Mood: "mind-bending"},
	}))

	stats, err := p.Sync(ctx, csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 1, stats.Enriched)
	assert.Equal(t, 1, stats.Skipped)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = Retry(ctx, 2, time.Millisecond, func() error {
		calls++
		return errors.New("permanent")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = Retry(cancelled, 5, time.Minute, func() error { return errors.New("nope") })
	assert.ErrorIs(t, err, context.Canceled)
}
