package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"nextflix/internal/config"
	"nextflix/internal/enrich"
	"nextflix/internal/omdb"
	"nextflix/internal/pipeline"
	"nextflix/internal/recommend"
	"nextflix/internal/resolve"
	"nextflix/internal/store"
	"nextflix/internal/tmdb"
	"nextflix/pkg/logger"
)

func main() {
	cfg := config.FromEnv()
	log := logger.NewWithLevel(cfg.LogLevel)

	if err := cfg.RequireProviderKeys(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	s, err := store.Open(cfg.Store.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer s.Close()

	tc, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, tmdb.WithTimeout(cfg.HTTPTimeout()))
	if err != nil {
		log.Fatal().Err(err).Msg("tmdb client")
	}
	oc, err := omdb.New(cfg.OMDB.APIKey, cfg.OMDB.BaseURL, omdb.WithTimeout(cfg.HTTPTimeout()))
	if err != nil {
		log.Fatal().Err(err).Msg("omdb client")
	}

	p := pipeline.New(tc, oc, s, log)
	engine := recommend.New(s, tc, log)

	r := newRouter(cfg, log, s, tc, p, engine)

	addr := ":" + envDefault("NEXTFLIX_PORT", "8080")
	log.Info().Str("addr", addr).Msg("server listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newRouter(cfg config.Config, log zerolog.Logger, s *store.Store, tc *tmdb.Client, p *pipeline.Pipeline, engine *recommend.Engine) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/movies", func(r chi.Router) {
		r.Get("/", handleListMovies(s))
		r.Get("/search", handleSearchMovies(s))
		r.Post("/", handleAddMovie(p))
		r.Get("/compare", handleCompareRatings(s))
		r.Get("/{name}/availability", handleAvailability(cfg, tc, log))
	})

	r.Get("/discover", handleDiscover(cfg, tc, log))
	r.Get("/recommendations", handleRecommendations(engine))

	return r
}

func envDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func handleListMovies(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movies, err := s.List(r.Context())
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, movies)
	}
}

func handleSearchMovies(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := store.Filter{
			Name:     q.Get("name"),
			Genre:    q.Get("genre"),
			Mood:     q.Get("mood"),
			Director: q.Get("director"),
			Actor:    q.Get("actor"),
			Keyword:  q.Get("keyword"),
		}
		f.MinYear, _ = strconv.Atoi(q.Get("min_year"))
		f.MaxYear, _ = strconv.Atoi(q.Get("max_year"))
		f.MinRating, _ = strconv.ParseFloat(q.Get("min_rating"), 64)

		movies, err := s.Search(r.Context(), f)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, movies)
	}
}

func handleAddMovie(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string   `json:"name"`
			Year     int      `json:"year"`
			Genre    string   `json:"genre"`
			Rating   float64  `json:"rating"`
			Mood     string   `json:"mood"`
			Keywords []string `json:"keywords"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid body")
			return
		}
		if strings.TrimSpace(req.Name) == "" || req.Year <= 0 {
			errorJSON(w, http.StatusBadRequest, "name and year required")
			return
		}
		res, err := p.Enrich(r.Context(), pipeline.Input{
			Name:     req.Name,
			Year:     req.Year,
			Genre:    req.Genre,
			Rating:   req.Rating,
			Mood:     req.Mood,
			Keywords: req.Keywords,
		})
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"name":     res.Name,
			"year":     res.Year,
			"enriched": res.Enriched,
		})
	}
}

func handleCompareRatings(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comparisons, err := s.CompareRatings(r.Context())
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, comparisons)
	}
}

func handleAvailability(cfg config.Config, tc *tmdb.Client, log zerolog.Logger) http.HandlerFunc {
	resolver := resolve.New(tc, log)
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))
		region := strings.ToUpper(r.URL.Query().Get("region"))
		if region == "" {
			region = cfg.Region
		}

		identity, err := resolver.Resolve(r.Context(), name, year)
		if errors.Is(err, resolve.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "no catalog match")
			return
		}
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		avail, err := enrich.WhereToWatch(r.Context(), tc, identity.ID, region)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"title":     identity.Title,
			"year":      identity.Year,
			"region":    region,
			"streaming": avail.Status == enrich.StatusAvailable,
			"providers": avail.Providers,
			"link":      avail.Link,
		})
	}
}

func handleDiscover(cfg config.Config, tc *tmdb.Client, log zerolog.Logger) http.HandlerFunc {
	resolver := resolve.New(tc, log)
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := tmdb.DiscoverOptions{CountryCode: strings.ToUpper(q.Get("country"))}
		opts.MinYear, _ = strconv.Atoi(q.Get("min_year"))
		opts.MaxYear, _ = strconv.Atoi(q.Get("max_year"))

		if genre := q.Get("genre"); genre != "" {
			id := enrich.GenreID(genre)
			if id == 0 {
				errorJSON(w, http.StatusBadRequest, "unknown genre "+genre)
				return
			}
			opts.GenreID = id
		}
		if actor := q.Get("actor"); actor != "" {
			personID, err := resolver.ResolvePerson(r.Context(), actor)
			if err != nil {
				errorJSON(w, http.StatusNotFound, "actor not found: "+actor)
				return
			}
			opts.CastPersonID = personID
		}
		if director := q.Get("director"); director != "" {
			personID, err := resolver.ResolvePerson(r.Context(), director)
			if err != nil {
				errorJSON(w, http.StatusNotFound, "director not found: "+director)
				return
			}
			opts.CrewPersonIDs = append(opts.CrewPersonIDs, personID)
		}
		if provider := q.Get("provider"); provider != "" {
			region := strings.ToUpper(q.Get("region"))
			if region == "" {
				region = cfg.Region
			}
			providers, err := tc.ListProviders(r.Context(), region)
			if err != nil {
				errorJSON(w, http.StatusInternalServerError, err.Error())
				return
			}
			var id int64
			for pid, name := range providers {
				if strings.EqualFold(name, provider) {
					id = pid
					break
				}
			}
			if id == 0 {
				errorJSON(w, http.StatusNotFound, "provider not available in "+region+": "+provider)
				return
			}
			opts.WatchProviderID = id
			opts.WatchRegion = region
		}

		resp, err := tc.DiscoverMovies(r.Context(), opts)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp.Results)
	}
}

func handleRecommendations(engine *recommend.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := recommend.Options{Genre: q.Get("genre")}
		opts.MinRating, _ = strconv.ParseFloat(q.Get("min_rating"), 64)
		opts.MinYear, _ = strconv.Atoi(q.Get("min_year"))
		opts.MinTMDBRating, _ = strconv.ParseFloat(q.Get("min_tmdb"), 64)

		suggestions, err := engine.Suggest(r.Context(), opts)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, suggestions)
	}
}
