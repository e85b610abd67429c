package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jorge-barreto/augmentor/internal/failure"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Gemini calls the Google Generative Language REST API.
type Gemini struct {
	apiKey string
	opts   options
}

func NewGemini(apiKey string, opts ...Option) *Gemini {
	return &Gemini{apiKey: apiKey, opts: buildOptions(geminiBaseURL, opts)}
}

func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(g.apiKey) == "" {
		return Response{}, failure.External("gemini", errors.New("API key is missing"))
	}
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{Temperature: req.Temperature},
	}
	if req.JSON {
		payload.GenerationConfig.ResponseMimeType = "application/json"
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.opts.baseURL, req.Model)
	var res geminiResponse
	if err := postJSON(ctx, g.opts.httpClient, "gemini", url, map[string]string{"x-goog-api-key": g.apiKey}, payload, &res); err != nil {
		return Response{}, err
	}

	if len(res.Candidates) == 0 {
		reason := "no candidates returned"
		if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
			reason = "prompt blocked: " + res.PromptFeedback.BlockReason
		}
		return Response{}, failure.External("gemini", errors.New(reason))
	}
	var sb strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return Response{Text: sb.String(), Model: req.Model}, nil
}
