package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextflix/internal/config"
	"nextflix/internal/omdb"
	"nextflix/internal/pipeline"
	"nextflix/internal/recommend"
	"nextflix/internal/store"
	"nextflix/internal/tmdb"
)

func newTestRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Query().Get("query"), "Inception") {
			fmt.Fprint(w, `{"results":[{"id":27205,"title":"Inception","release_date":"2010-07-15"}]}`)
			return
		}
		fmt.Fprint(w, `{"results":[]}`)
	})
	mux.HandleFunc("/movie/27205", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":27205,"title":"Inception","runtime":148,"genres":[{"id":878,"name":"Science Fiction"}]}`)
	})
	mux.HandleFunc("/movie/27205/credits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"cast":[{"name":"Leonardo DiCaprio","order":0}],"crew":[{"name":"Christopher Nolan","job":"Director"}]}`)
	})
	mux.HandleFunc("/movie/27205/watch/providers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":{"US":{"link":"https://example.com/us","flatrate":[{"provider_id":8,"provider_name":"Netflix"}]}}}`)
	})
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "18", r.URL.Query().Get("with_genres"))
		fmt.Fprint(w, `{"results":[{"id":77,"title":"Discovered Drama"}]}`)
	})
	tmdbSrv := httptest.NewServer(mux)
	t.Cleanup(tmdbSrv.Close)

	omdbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Response":"True","imdbRating":"8.8","Director":"Christopher Nolan","Runtime":"148 min","Ratings":[]}`)
	}))
	t.Cleanup(omdbSrv.Close)

	log := zerolog.Nop()
	s, err := store.Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tc, err := tmdb.New("test-key", tmdbSrv.URL)
	require.NoError(t, err)
	oc, err := omdb.New("test-key", omdbSrv.URL)
	require.NoError(t, err)

	cfg := config.Default()
	p := pipeline.New(tc, oc, s, log)
	engine := recommend.New(s, tc, log)
	return newRouter(cfg, log, s, tc, p, engine), s
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAddAndListMovies(t *testing.T) {
	r, _ := newTestRouter(t)

	body := strings.NewReader(`{"name":"Inception","year":2010,"rating":9,"mood":"mind-bending","keywords":["dream"]}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/movies", body))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Enriched bool `json:"enriched"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Enriched)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var movies []store.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movies))
	require.Len(t, movies, 1)
	assert.Equal(t, "Inception", movies[0].Name)
	assert.Equal(t, "Christopher Nolan", movies[0].Director)
}

func TestAddMovieRejectsBadBody(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/movies", strings.NewReader(`{"name":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchMoviesEndpoint(t *testing.T) {
	r, s := newTestRouter(t)
	require.NoError(t, s.Upsert(context.Background(), store.UpsertParams{
		Name: "Heat", Year: 1995, Genre: "Crime", Rating: 8.5, Mood: "tense", Director: "Michael Mann",
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies/search?director=mann&min_year=1990", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var movies []store.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movies))
	require.Len(t, movies, 1)
	assert.Equal(t, "Heat", movies[0].Name)
}

func TestAvailabilityEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies/Inception/availability?year=2010", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Streaming bool     `json:"streaming"`
		Providers []string `json:"providers"`
		Region    string   `json:"region"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Streaming)
	assert.Equal(t, []string{"Netflix"}, resp.Providers)
	assert.Equal(t, "US", resp.Region)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies/Unknown%20Title/availability", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDiscoverEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/discover?genre=Drama", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var results []tmdb.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Discovered Drama", results[0].Title)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/discover?genre=NotAGenre", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
