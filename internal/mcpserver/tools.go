package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jorge-barreto/augmentor/internal/bootstrap"
	"github.com/jorge-barreto/augmentor/internal/state"
)

// AugmentTool handles the augment_prompt MCP tool.
type AugmentTool struct {
	runs Runs
}

func NewAugmentTool(runs Runs) *AugmentTool {
	return &AugmentTool{runs: runs}
}

func (t *AugmentTool) Definition() mcp.Tool {
	return mcp.NewTool("augment_prompt",
		mcp.WithDescription(
			"Research a request on the web, rewrite it into a detailed prompt and generate the result. "+
				"Returns the generated text, or clarifying questions identified by a run id.",
		),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The request to fulfil"),
		),
		mcp.WithArray("files",
			mcp.WithStringItems(),
			mcp.Description("Optional local files (.txt, .md, source code, .pdf) to use as context"),
		),
		mcp.WithString("planner_model", mcp.Description("Model for the planner stage")),
		mcp.WithString("augmentor_model", mcp.Description("Model for the augmentor stage")),
		mcp.WithString("generator_model", mcp.Description("Model for the generator stage")),
	)
}

func (t *AugmentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := strings.TrimSpace(req.GetString("prompt", ""))
	if prompt == "" {
		return mcp.NewToolResultError("'prompt' is required"), nil
	}
	files := req.GetStringSlice("files", nil)

	models := t.runs.Models()
	if m := req.GetString("planner_model", ""); m != "" {
		models.Planner = m
	}
	if m := req.GetString("augmentor_model", ""); m != "" {
		models.Augmentor = m
	}
	if m := req.GetString("generator_model", ""); m != "" {
		models.Generator = m
	}

	runID := bootstrap.NewRunID()
	st := t.runs.NewRunner(runID, models).Run(ctx, state.New(prompt, files))
	return result(runID, st), nil
}

// ClarifyTool handles the clarify_run MCP tool.
type ClarifyTool struct {
	runs Runs
}

func NewClarifyTool(runs Runs) *ClarifyTool {
	return &ClarifyTool{runs: runs}
}

func (t *ClarifyTool) Definition() mcp.Tool {
	return mcp.NewTool("clarify_run",
		mcp.WithDescription("Answer the questions of a run started with augment_prompt and continue it."),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run id returned with the questions"),
		),
		mcp.WithString("answer",
			mcp.Required(),
			mcp.Description("Answer to the questions, in free text"),
		),
	)
}

func (t *ClarifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := req.GetString("run_id", "")
	answer := strings.TrimSpace(req.GetString("answer", ""))
	if runID == "" || answer == "" {
		return mcp.NewToolResultError("'run_id' and 'answer' are required"), nil
	}

	st, err := state.LoadRun(t.runs.RunDir(runID))
	if errors.Is(err, os.ErrNotExist) {
		return mcp.NewToolResultError(fmt.Sprintf("run %s not found", runID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading run %s: %v", runID, err)), nil
	}
	if !st.NeedsInput() {
		return mcp.NewToolResultError(fmt.Sprintf("run %s is not awaiting clarification", runID)), nil
	}

	rec, err := state.Load(t.runs.RunDir(runID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading run %s: %v", runID, err)), nil
	}
	st = t.runs.NewRunner(runID, rec.Models).Resume(ctx, st, answer)
	return result(runID, st), nil
}

func result(runID string, st state.RunState) *mcp.CallToolResult {
	switch {
	case st.Failed():
		return mcp.NewToolResultError(st.ErrorText())
	case st.NeedsInput():
		var b strings.Builder
		fmt.Fprintf(&b, "Run %s needs clarification before it can continue:\n\n", runID)
		for i, q := range st.QuestionsForUser {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
		fmt.Fprintf(&b, "\nCall clarify_run with run_id %q and your answer.", runID)
		return mcp.NewToolResultText(b.String())
	default:
		return mcp.NewToolResultText(st.Output())
	}
}
