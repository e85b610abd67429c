package llm

import (
	"context"
	"errors"

	"github.com/jorge-barreto/augmentor/internal/failure"
)

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	Temperature    float64               `json:"temperature"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// OpenAI calls any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	apiKey string
	opts   options
}

func NewOpenAI(apiKey string, opts ...Option) *OpenAI {
	return &OpenAI{apiKey: apiKey, opts: buildOptions("https://api.openai.com", opts)}
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (Response, error) {
	payload := openAIRequest{
		Model:       req.Model,
		Messages:    []openAIMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	}
	if req.JSON {
		payload.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}
	headers := map[string]string{}
	if o.apiKey != "" {
		headers["Authorization"] = "Bearer " + o.apiKey
	}
	var res openAIResponse
	if err := postJSON(ctx, o.opts.httpClient, "openai", o.opts.baseURL+"/v1/chat/completions", headers, payload, &res); err != nil {
		return Response{}, err
	}
	if len(res.Choices) == 0 {
		return Response{}, failure.External("openai", errors.New("no choices returned"))
	}
	return Response{Text: res.Choices[0].Message.Content, Model: req.Model}, nil
}
