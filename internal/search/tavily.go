package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jorge-barreto/augmentor/internal/failure"
)

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey string
	// Depth is Tavily's search_depth (basic or advanced).
	Depth string
	opts  options
}

func NewTavily(apiKey, depth string, opts ...Option) *Tavily {
	if depth == "" {
		depth = "basic"
	}
	return &Tavily{APIKey: apiKey, Depth: depth, opts: buildOptions("https://api.tavily.com/search", opts)}
}

// Search posts a query to Tavily, retrying on 429.
func (t *Tavily) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, failure.External("tavily", errors.New("API key is missing"))
	}

	payload, err := json.Marshal(map[string]any{
		"query":        query,
		"api_key":      t.APIKey,
		"search_depth": t.Depth,
		"max_results":  t.opts.limit,
	})
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	delay := t.opts.retryDelay
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.opts.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = t.opts.httpClient.Do(req)
		if err != nil {
			return nil, failure.External("tavily", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		if attempt >= t.opts.attempts {
			resp.Body.Close()
			return nil, failure.External("tavily", fmt.Errorf("rate limited after %d attempts", attempt))
		}
		resp.Body.Close()
		if err := backoff(ctx, &delay); err != nil {
			return nil, failure.External("tavily", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, failure.External("tavily", fmt.Errorf("http %d", resp.StatusCode))
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, failure.External("tavily", err)
	}

	results := make([]Result, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Content: r.Content})
		if len(results) >= t.opts.limit {
			break
		}
	}
	return results, nil
}
