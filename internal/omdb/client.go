package omdb

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

// ErrNoData is returned when the API answers but has no record for the
// requested title/year. This source has no fuzzy search; a mismatched
// title simply yields no data.
var ErrNoData = errors.New("omdb: no data for title")

// Ratings is the parsed rating set for one title. Nil means the source
// did not report a value; a literal "N/A" never becomes zero.
type Ratings struct {
	IMDB       *float64 // 0-10
	RT         *string  // kept verbatim, e.g. "87%"
	Metacritic *int     // 0-100, parsed from "NN/100"

	// Cross-check fields: the primary catalog wins on overlaps, these
	// are used only for mismatch logging and runtime gap-filling.
	Director string
	Runtime  *int // minutes, parsed from "NNN min"
}

type payload struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	IMDBRating string `json:"imdbRating"`
	Director   string `json:"Director"`
	Runtime    string `json:"Runtime"`
	Ratings    []struct {
		Source string `json:"Source"`
		Value  string `json:"Value"`
	} `json:"Ratings"`
}

// Client provides access to the OMDB ratings API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
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

// New creates an OMDB client. An empty API key is allowed; lookups then
// fail and callers degrade to null ratings.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ByTitle fetches ratings by exact title and year.
func (c *Client) ByTitle(ctx context.Context, title string, year int) (*Ratings, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", title)
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}
	params.Set("plot", "short")
	params.Set("r", "json")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb returned %d", resp.StatusCode)
	}
	var data payload
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	if data.Response != "True" {
		return nil, fmt.Errorf("%w: %s", ErrNoData, data.Error)
	}
	return parseRatings(data), nil
}

func parseRatings(data payload) *Ratings {
	out := &Ratings{}
	if v := strings.TrimSpace(data.Director); v != "" && v != "N/A" {
		out.Director = v
	}

	if v := strings.TrimSpace(data.IMDBRating); v != "" && v != "N/A" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out.IMDB = &f
		}
	}
	for _, r := range data.Ratings {
		switch r.Source {
		case "Rotten Tomatoes":
			if v := strings.TrimSpace(r.Value); v != "" && v != "N/A" {
				out.RT = &v
			}
		case "Metacritic":
			v := strings.TrimSpace(r.Value)
			if v == "" || v == "N/A" {
				continue
			}
			if n, err := strconv.Atoi(strings.TrimSuffix(v, "/100")); err == nil {
				out.Metacritic = &n
			}
		}
	}
	if v := strings.TrimSpace(data.Runtime); v != "" && v != "N/A" {
		if n, err := strconv.Atoi(strings.TrimSuffix(v, " min")); err == nil {
			out.Runtime = &n
		}
	}
	return out
}
