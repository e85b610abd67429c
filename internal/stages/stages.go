// Package stages holds the four pipeline steps: planner, researcher,
// augmentor and generator.
package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/jorge-barreto/augmentor/internal/dispatch"
	"github.com/jorge-barreto/augmentor/internal/failure"
	"github.com/jorge-barreto/augmentor/internal/llm"
	"github.com/jorge-barreto/augmentor/internal/search"
	"github.com/jorge-barreto/augmentor/internal/state"
)

// Stage names, also used in snapshot file names and failure messages.
const (
	Planner    = "planner"
	Researcher = "researcher"
	Augmentor  = "augmentor"
	Generator  = "generator"
)

// DocumentLoader extracts a file and returns its text chunks.
type DocumentLoader interface {
	Load(ctx context.Context, path string) ([]string, error)
}

// Set binds the stages to their collaborators.
type Set struct {
	LLM         llm.Client
	Search      search.Client
	Loader      DocumentLoader
	Temperature float64
}

// Pipeline returns the stages in execution order.
func (s *Set) Pipeline() []dispatch.Stage {
	return []dispatch.Stage{
		{Index: 1, Name: Planner, Owns: state.FieldResearchPlan, Run: s.Plan},
		{Index: 2, Name: Researcher, Owns: state.FieldContextDocuments, Run: s.Research},
		{Index: 3, Name: Augmentor, Owns: state.FieldRefinedPrompt | state.FieldQuestions, Run: s.Augment},
		{Index: 4, Name: Generator, Owns: state.FieldFinalOutput, Run: s.Generate},
	}
}

// Plan asks the model to break the request into search queries.
func (s *Set) Plan(ctx context.Context, st state.RunState, model string) (state.Delta, error) {
	prompt := dispatch.ExpandVars(plannerPrompt, map[string]string{"REQUEST": st.OriginalPrompt})
	resp, err := s.LLM.Generate(ctx, llm.Request{Model: model, Prompt: prompt, JSON: true, Temperature: s.Temperature})
	if err != nil {
		return state.Delta{}, err
	}
	var body struct {
		Plan []string `json:"plan"`
	}
	if err := resp.Decode(&body); err != nil {
		return state.Delta{}, err
	}
	if body.Plan == nil {
		body.Plan = []string{}
	}
	return state.Plan(body.Plan), nil
}

// Research runs every planned query, then loads the user's files. Web
// results come first in plan order, followed by file chunks in file order.
func (s *Set) Research(ctx context.Context, st state.RunState, _ string) (state.Delta, error) {
	if len(st.ResearchPlan) == 0 {
		return state.Delta{}, failure.Precondition("research plan empty")
	}
	docs := []state.Document{}
	for _, query := range st.ResearchPlan {
		results, err := s.Search.Search(ctx, query)
		if err != nil {
			return state.Delta{}, err
		}
		for _, r := range results {
			docs = append(docs, state.Document{Source: r.URL, Content: r.Content})
		}
	}
	for _, path := range st.UserFilePaths {
		if s.Loader == nil {
			return state.Delta{}, fmt.Errorf("no document loader configured for %s", path)
		}
		chunks, err := s.Loader.Load(ctx, path)
		if err != nil {
			return state.Delta{}, err
		}
		for _, c := range chunks {
			docs = append(docs, state.Document{Source: path, Content: c})
		}
	}
	return state.Context(docs), nil
}

// Augment rewrites the request using the gathered context, or collects the
// model's questions when the context is not enough.
func (s *Set) Augment(ctx context.Context, st state.RunState, model string) (state.Delta, error) {
	prompt := dispatch.ExpandVars(augmentorPrompt, map[string]string{
		"REQUEST": st.OriginalPrompt,
		"CONTEXT": FormatContext(st.ContextDocuments),
	})
	resp, err := s.LLM.Generate(ctx, llm.Request{Model: model, Prompt: prompt, Temperature: s.Temperature})
	if err != nil {
		return state.Delta{}, err
	}
	aug, err := ParseAugmentation(resp.Text)
	if err != nil {
		return state.Delta{}, err
	}
	return aug.Delta(), nil
}

// Generate sends the refined prompt to the model as-is.
func (s *Set) Generate(ctx context.Context, st state.RunState, model string) (state.Delta, error) {
	if st.RefinedPrompt == nil || *st.RefinedPrompt == "" {
		return state.Delta{}, failure.Precondition("refined prompt missing")
	}
	resp, err := s.LLM.Generate(ctx, llm.Request{Model: model, Prompt: *st.RefinedPrompt, Temperature: s.Temperature})
	if err != nil {
		return state.Delta{}, err
	}
	return state.Output(resp.Text), nil
}

// FormatContext renders documents as "Source: ...\nContent: ..." blocks
// separated by a blank line.
func FormatContext(docs []state.Document) string {
	blocks := make([]string, len(docs))
	for i, d := range docs {
		blocks[i] = "Source: " + d.Source + "\nContent: " + d.Content
	}
	return strings.Join(blocks, "\n\n")
}
