// Package llm is the provider-agnostic text generation client used by the
// planner, augmentor and generator stages.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jorge-barreto/augmentor/internal/config"
	"github.com/jorge-barreto/augmentor/internal/failure"
)

// Request is one generation call.
type Request struct {
	Model       string
	Prompt      string
	JSON        bool // ask the provider for a JSON object
	Temperature float64
}

// Response holds the raw text a model produced.
type Response struct {
	Text  string
	Model string
}

// Decode parses the response as JSON into v. Markdown code fences around
// the object are tolerated. Malformed output fails with a ParseError.
func (r Response) Decode(v any) error {
	body := StripFences(r.Text)
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return &failure.ParseError{Err: err}
	}
	return nil
}

// Client generates text from a prompt.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// StripFences removes a surrounding ```json ... ``` block, if present.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// New builds the client for the configured provider.
func New(cfg *config.Config) (Client, error) {
	httpClient := &http.Client{Timeout: cfg.CallTimeout()}
	if cfg.LLM.Timeout == 0 {
		httpClient.Timeout = 2 * time.Minute
	}
	switch cfg.LLM.Provider {
	case "gemini":
		return NewGemini(cfg.Keys.Google, WithHTTPClient(httpClient), WithBaseURL(cfg.LLM.BaseURL)), nil
	case "ollama":
		return NewOllama(cfg.LLM.BaseURL, WithHTTPClient(httpClient)), nil
	case "openai":
		return NewOpenAI(cfg.Keys.OpenAI, WithHTTPClient(httpClient), WithBaseURL(cfg.LLM.BaseURL)), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.LLM.Provider)
	}
}

// Option configures a provider.
type Option func(*options)

type options struct {
	httpClient *http.Client
	baseURL    string
}

// WithHTTPClient overrides the HTTP client, e.g. to change the timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithBaseURL points the provider at a different endpoint. Empty keeps the default.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func buildOptions(defaultBase string, opts []Option) options {
	o := options{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		baseURL:    defaultBase,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
