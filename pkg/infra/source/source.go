// Package source implements signal collectors for the external data feeds
// monitored by the probability engine: CISA KEV, USGS earthquakes,
// OpenWeather, GDELT and Google News.
package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const maxBodySize = 10 * 1024 * 1024

type config struct {
	httpClient *http.Client
	baseURL    string
	city       string
	query      string
	geography  string
}

// Option configures a collector
type Option func(*config)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithBaseURL overrides the feed endpoint, mainly for tests
func WithBaseURL(u string) Option {
	return func(cfg *config) {
		cfg.baseURL = u
	}
}

// WithCity sets the location queried by the weather collector
func WithCity(city string) Option {
	return func(cfg *config) {
		cfg.city = city
	}
}

// WithQuery overrides the search query of the news collector
func WithQuery(q string) Option {
	return func(cfg *config) {
		cfg.query = q
	}
}

// WithGeography sets the geography label on news signals
func WithGeography(geography string) Option {
	return func(cfg *config) {
		cfg.geography = geography
	}
}

func newConfig(defaultBaseURL string, opts ...Option) config {
	cfg := config{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", url))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch feed", goerr.V("url", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status from feed",
			goerr.V("url", url), goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read feed body", goerr.V("url", url))
	}
	return body, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, v any) error {
	body, err := fetch(ctx, client, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return goerr.Wrap(err, "failed to parse feed response", goerr.V("url", url))
	}
	return nil
}
