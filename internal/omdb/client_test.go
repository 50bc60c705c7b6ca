package omdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("key", " ")
	require.Error(t, err)

	// An empty key is fine; lookups just fail later.
	_, err = New("", "http://example.com/")
	require.NoError(t, err)
}

func TestByTitleParsesRatings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("apikey"))
		assert.Equal(t, "Inception", q.Get("t"))
		assert.Equal(t, "2010", q.Get("y"))
		assert.Equal(t, "short", q.Get("plot"))
		fmt.Fprint(w, `{
			"Response":"True","imdbRating":"8.8","Director":"Christopher Nolan","Runtime":"148 min",
			"Ratings":[
				{"Source":"Internet Movie Database","Value":"8.8/10"},
				{"Source":"Rotten Tomatoes","Value":"87%"},
				{"Source":"Metacritic","Value":"74/100"}
			]
		}`)
	}))
	defer srv.Close()

	c, err := New("test-key", srv.URL)
	require.NoError(t, err)

	ratings, err := c.ByTitle(context.Background(), "Inception", 2010)
	require.NoError(t, err)
	require.NotNil(t, ratings.IMDB)
	assert.Equal(t, 8.8, *ratings.IMDB)
	require.NotNil(t, ratings.RT)
	assert.Equal(t, "87%", *ratings.RT)
	require.NotNil(t, ratings.Metacritic)
	assert.Equal(t, 74, *ratings.Metacritic)
	assert.Equal(t, "Christopher Nolan", ratings.Director)
	require.NotNil(t, ratings.Runtime)
	assert.Equal(t, 148, *ratings.Runtime)
}

func TestByTitleNotAvailableBecomesNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"Response":"True","imdbRating":"N/A","Director":"N/A","Runtime":"N/A",
			"Ratings":[
				{"Source":"Rotten Tomatoes","Value":"N/A"},
				{"Source":"Metacritic","Value":"N/A"}
			]
		}`)
	}))
	defer srv.Close()

	c, err := New("test-key", srv.URL)
	require.NoError(t, err)

	ratings, err := c.ByTitle(context.Background(), "Obscure Gem", 1971)
	require.NoError(t, err)
	assert.Nil(t, ratings.IMDB)
	assert.Nil(t, ratings.RT)
	assert.Nil(t, ratings.Metacritic)
	assert.Empty(t, ratings.Director)
	assert.Nil(t, ratings.Runtime)
}

func TestByTitleNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Response":"False","Error":"Movie not found!"}`)
	}))
	defer srv.Close()

	c, err := New("test-key", srv.URL)
	require.NoError(t, err)

	_, err = c.ByTitle(context.Background(), "Nope", 1999)
	require.ErrorIs(t, err, ErrNoData)
	assert.Contains(t, err.Error(), "Movie not found!")
}

func TestByTitleServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New("bad-key", srv.URL)
	require.NoError(t, err)

	_, err = c.ByTitle(context.Background(), "Inception", 2010)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
	assert.Contains(t, err.Error(), "401")
}
