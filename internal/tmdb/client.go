package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Result represents a single TMDB movie search match.
type Result struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int   `json:"genre_ids"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
}

// Year returns the release year of the result, or 0 when unknown.
func (r Result) Year() int {
	if len(r.ReleaseDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(r.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Person is a single TMDB person search match.
type Person struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Popularity float64 `json:"popularity"`
}

// PersonResponse models the person search payload.
type PersonResponse struct {
	Results []Person `json:"results"`
}

// MovieDetails is the flat details object for one movie.
type MovieDetails struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
	Runtime     int    `json:"runtime"`
	Budget      int64  `json:"budget"`
	Revenue     int64  `json:"revenue"`
	Genres      []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	ProductionCompanies []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"production_companies"`
	ProductionCountries []struct {
		ISO  string `json:"iso_3166_1"`
		Name string `json:"name"`
	} `json:"production_countries"`
}

// Credits holds cast and crew for one movie. Cast arrives pre-sorted by
// billing order and must not be re-sorted.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type CastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// RegionProviders is the watch-provider listing for one region.
type RegionProviders struct {
	Link     string `json:"link"`
	Flatrate []struct {
		ProviderID   int64  `json:"provider_id"`
		ProviderName string `json:"provider_name"`
	} `json:"flatrate"`
}

type watchResponse struct {
	Results map[string]RegionProviders `json:"results"`
}

// ProviderListEntry is one entry of the region-wide provider catalog.
type ProviderListEntry struct {
	ProviderID        int64          `json:"provider_id"`
	ProviderName      string         `json:"provider_name"`
	DisplayPriorities map[string]int `json:"display_priorities"`
}

type providerListResponse struct {
	Results []ProviderListEntry `json:"results"`
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	providerCache *regionCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-call timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:        apiKey,
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: 8 * time.Second},
		providerCache: newRegionCache(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchMovie searches by title. A positive year is passed as an advisory
// filter; callers retry without it when nothing matches.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	var payload Response
	if err := c.get(ctx, "/search/movie", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SearchPerson searches the people catalog by name.
func (c *Client) SearchPerson(ctx context.Context, name string) (*PersonResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name must not be empty")
	}
	params := url.Values{}
	params.Set("query", name)
	var payload PersonResponse
	if err := c.get(ctx, "/search/person", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetMovieDetails fetches the flat details object by TMDB id.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	var payload MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), url.Values{}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetMovieCredits fetches cast and crew by TMDB id.
func (c *Client) GetMovieCredits(ctx context.Context, movieID int64) (*Credits, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	var payload Credits
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", movieID), url.Values{}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetRecommendations fetches the catalog's recommendations for a movie.
func (c *Client) GetRecommendations(ctx context.Context, movieID int64) (*Response, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("page", "1")
	var payload Response
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/recommendations", movieID), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetWatchProviders fetches the per-region streaming availability for a
// movie. The result maps region codes to provider listings; a region
// absent from the map means the title is not carried there.
func (c *Client) GetWatchProviders(ctx context.Context, movieID int64) (map[string]RegionProviders, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	var payload watchResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/watch/providers", movieID), url.Values{}, &payload); err != nil {
		return nil, err
	}
	if payload.Results == nil {
		payload.Results = map[string]RegionProviders{}
	}
	return payload.Results, nil
}

// ListProviders returns the id-to-name map of subscription providers
// serving the region. Results are cached per region for the lifetime of
// the client; provider catalogs change slowly relative to a session.
func (c *Client) ListProviders(ctx context.Context, region string) (map[int64]string, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return nil, errors.New("region must not be empty")
	}
	if cached, ok := c.providerCache.Get(region); ok {
		return cached, nil
	}
	var payload providerListResponse
	if err := c.get(ctx, "/watch/providers/movie", url.Values{}, &payload); err != nil {
		return nil, err
	}
	providers := make(map[int64]string)
	for _, p := range payload.Results {
		if _, ok := p.DisplayPriorities[region]; ok {
			providers[p.ProviderID] = p.ProviderName
		}
	}
	c.providerCache.Set(region, providers)
	return providers, nil
}

// DiscoverOptions restricts a discover query. Zero values are omitted.
type DiscoverOptions struct {
	MinYear         int
	MaxYear         int
	GenreID         int
	CastPersonID    int64
	CrewPersonIDs   []int64
	WatchProviderID int64
	WatchRegion     string
	CountryCode     string
}

// DiscoverMovies runs an advanced filter query, sorted by popularity.
func (c *Client) DiscoverMovies(ctx context.Context, opts DiscoverOptions) (*Response, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("page", "1")
	if opts.MinYear > 0 {
		params.Set("primary_release_date.gte", fmt.Sprintf("%d-01-01", opts.MinYear))
	}
	if opts.MaxYear > 0 {
		params.Set("primary_release_date.lte", fmt.Sprintf("%d-12-31", opts.MaxYear))
	}
	if opts.GenreID > 0 {
		params.Set("with_genres", strconv.Itoa(opts.GenreID))
	}
	if opts.WatchProviderID > 0 {
		params.Set("with_watch_providers", strconv.FormatInt(opts.WatchProviderID, 10))
		if opts.WatchRegion != "" {
			params.Set("watch_region", strings.ToUpper(opts.WatchRegion))
		}
	}
	if opts.CountryCode != "" {
		params.Set("with_origin_country", strings.ToUpper(opts.CountryCode))
	}
	if len(opts.CrewPersonIDs) > 0 {
		ids := make([]string, 0, len(opts.CrewPersonIDs))
		for _, id := range opts.CrewPersonIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		params.Set("with_crew", strings.Join(ids, ","))
	}
	if opts.CastPersonID > 0 {
		params.Set("with_cast", strconv.FormatInt(opts.CastPersonID, 10))
	}
	var payload Response
	if err := c.get(ctx, "/discover/movie", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
