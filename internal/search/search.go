// Package search provides the web search clients the researcher stage uses.
package search

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jorge-barreto/augmentor/internal/config"
)

// MaxResults caps the results returned for a single query.
const MaxResults = config.MaxSearchResults

// Result is one search hit.
type Result struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Client runs a web search. Results keep the provider's ranking order.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// New builds the configured search client, wrapped in a cache when a TTL is set.
func New(cfg *config.Config) (Client, error) {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	limit := cfg.Search.MaxResults
	var c Client
	switch cfg.Search.Provider {
	case "tavily":
		c = NewTavily(cfg.Keys.Tavily, cfg.Search.Depth, WithHTTPClient(httpClient), WithLimit(limit))
	case "brave":
		c = NewBrave(cfg.Keys.Brave, WithHTTPClient(httpClient), WithLimit(limit))
	default:
		return nil, fmt.Errorf("search: unknown provider %q", cfg.Search.Provider)
	}
	if ttl := cfg.SearchCacheTTL(); ttl > 0 {
		c = NewCached(c, ttl)
	}
	return c, nil
}

// DefaultAttempts bounds the requests made for one query while rate limited.
const DefaultAttempts = 5

// Option configures a search client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	endpoint   string
	limit      int
	attempts   int // requests per query, including 429 retries
	retryDelay time.Duration
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithEndpoint overrides the API endpoint.
func WithEndpoint(u string) Option {
	return func(o *options) { o.endpoint = u }
}

// WithLimit lowers the per-query result cap. Values outside 1..MaxResults are ignored.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 && n <= MaxResults {
			o.limit = n
		}
	}
}

// WithRetry sets how many times a rate-limited query is attempted and the
// first backoff delay. Non-positive values keep the defaults.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *options) {
		if attempts > 0 {
			o.attempts = attempts
		}
		if delay > 0 {
			o.retryDelay = delay
		}
	}
}

func buildOptions(endpoint string, opts []Option) options {
	o := options{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   endpoint,
		limit:      MaxResults,
		attempts:   DefaultAttempts,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// backoff waits before retrying a rate-limited request, doubling delay up to 30s.
func backoff(ctx context.Context, delay *time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(*delay):
	}
	if *delay < 30*time.Second {
		*delay *= 2
	}
	return nil
}
