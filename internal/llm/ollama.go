package llm

import (
	"context"
)

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

// Ollama calls a local Ollama server's chat endpoint.
type Ollama struct {
	opts options
}

func NewOllama(baseURL string, opts ...Option) *Ollama {
	return &Ollama{opts: buildOptions("http://localhost:11434", append([]Option{WithBaseURL(baseURL)}, opts...))}
}

func (o *Ollama) Generate(ctx context.Context, req Request) (Response, error) {
	payload := ollamaChatRequest{
		Model:    req.Model,
		Messages: []ollamaMessage{{Role: "user", Content: req.Prompt}},
		Options:  map[string]any{"temperature": req.Temperature},
	}
	if req.JSON {
		payload.Format = "json"
	}
	var res ollamaChatResponse
	if err := postJSON(ctx, o.opts.httpClient, "ollama", o.opts.baseURL+"/api/chat", nil, payload, &res); err != nil {
		return Response{}, err
	}
	return Response{Text: res.Message.Content, Model: req.Model}, nil
}
