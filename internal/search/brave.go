package search

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

	"github.com/jorge-barreto/augmentor/internal/failure"
)

// Brave uses the Brave Search API. The key goes in X-Subscription-Token.
type Brave struct {
	APIKey string
	opts   options
}

func NewBrave(apiKey string, opts ...Option) *Brave {
	return &Brave{APIKey: apiKey, opts: buildOptions("https://api.search.brave.com/res/v1/web/search", opts)}
}

// Search executes a Brave query, honouring Retry-After on 429.
func (b *Brave) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(b.APIKey) == "" {
		return nil, failure.External("brave", errors.New("API key is missing"))
	}
	endpoint := fmt.Sprintf("%s?q=%s&count=%d", b.opts.endpoint, url.QueryEscape(query), b.opts.limit)

	var resp *http.Response
	delay := b.opts.retryDelay
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", b.APIKey)

		resp, err = b.opts.httpClient.Do(req)
		if err != nil {
			return nil, failure.External("brave", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		if attempt >= b.opts.attempts {
			resp.Body.Close()
			return nil, failure.External("brave", fmt.Errorf("rate limited after %d attempts", attempt))
		}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			delay = time.Duration(secs) * time.Second
		}
		resp.Body.Close()
		if err := backoff(ctx, &delay); err != nil {
			return nil, failure.External("brave", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, failure.External("brave", fmt.Errorf("http %d", resp.StatusCode))
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, failure.External("brave", err)
	}

	results := make([]Result, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Content: r.Description})
		if len(results) >= b.opts.limit {
			break
		}
	}
	return results, nil
}
