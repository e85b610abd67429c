package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jorge-barreto/augmentor/internal/llm"
	"github.com/jorge-barreto/augmentor/internal/state"
	"github.com/jorge-barreto/augmentor/internal/ux"
)

const maxSnapshotChars = 4000

const diagPrompt = `You are diagnosing a failed augmentor pipeline run. The pipeline plans web search queries, researches them, rewrites the request into a detailed prompt and generates a result. Analyze the context below and provide a concise diagnosis.

## Run
%s

## Error
%s

## Stage Snapshots
%s
%s
Instructions:
1. Identify which stage failed and why.
2. Classify this as a CONFIGURATION problem (missing API key, unknown model, unreachable provider), an INPUT problem (unsupported file, empty request) or a MODEL problem (malformed or unhelpful output).
3. Suggest specific fixes.
4. Recommend the next command to run, for example:
   - augmentor run "<request>" --planner-model <model>
   - augmentor init (to regenerate the config)

Be direct and concise. Focus on actionable advice.`

// Run gathers failure context from a run directory and asks the model for
// a diagnosis, written to out.
func Run(ctx context.Context, client llm.Client, model, runDir string, out io.Writer) error {
	rec, err := state.Load(runDir)
	if err != nil {
		return fmt.Errorf("loading run record: %w", err)
	}
	if rec.Status != state.StatusFailed && rec.Status != state.StatusInterrupted {
		fmt.Fprintln(out, "No failed run to diagnose.")
		return nil
	}

	st, _ := state.LoadRun(runDir)
	diagText := buildPrompt(gatherRun(rec, st), gatherError(st), gatherSnapshots(runDir), gatherTiming(runDir))

	fmt.Fprintf(out, "\n%s%s══ Doctor: diagnosing run %s (stage %s) ══%s\n\n",
		ux.Bold, ux.Cyan, rec.RunID, rec.Stage, ux.Reset)

	resp, err := client.Generate(ctx, llm.Request{Model: model, Prompt: diagText})
	if err != nil {
		return fmt.Errorf("asking for a diagnosis: %w", err)
	}
	fmt.Fprintln(out, strings.TrimSpace(resp.Text))
	return nil
}

func buildPrompt(run, errText, snapshots, timing string) string {
	var timingSection string
	if timing != "" {
		timingSection = fmt.Sprintf("\n## Execution Context\nTiming: %s\n", timing)
	}
	return fmt.Sprintf(diagPrompt, run, errText, snapshots, timingSection)
}

func gatherRun(rec *state.Record, st state.RunState) string {
	parts := []string{
		fmt.Sprintf("Run id: %s", rec.RunID),
		fmt.Sprintf("Status: %s", rec.Status),
		fmt.Sprintf("Passes: %d", rec.Passes),
	}
	if rec.Stage != "" {
		parts = append(parts, fmt.Sprintf("Last stage: %s", rec.Stage))
	}
	parts = append(parts, fmt.Sprintf("Models: planner=%s augmentor=%s generator=%s",
		rec.Models.Planner, rec.Models.Augmentor, rec.Models.Generator))
	if st.OriginalPrompt != "" {
		parts = append(parts, fmt.Sprintf("Request: %s", st.OriginalPrompt))
	}
	if len(st.UserFilePaths) > 0 {
		parts = append(parts, fmt.Sprintf("Files: %s", strings.Join(st.UserFilePaths, ", ")))
	}
	return strings.Join(parts, "\n")
}

func gatherError(st state.RunState) string {
	if !st.Failed() {
		return "(no error recorded)"
	}
	return st.ErrorText()
}

func gatherSnapshots(runDir string) string {
	snaps, err := state.ReadSnapshots(runDir)
	if err != nil || len(snaps) == 0 {
		return "(no snapshots found)"
	}
	var parts []string
	for _, s := range snaps {
		data, err := json.MarshalIndent(s.Data, "", "  ")
		if err != nil {
			continue
		}
		text := truncateRunes(string(data), maxSnapshotChars)
		parts = append(parts, fmt.Sprintf("--- %s ---\n%s", s.Name, text))
	}
	return strings.Join(parts, "\n")
}

func gatherTiming(runDir string) string {
	timing, err := state.LoadTiming(runDir)
	if err != nil {
		return ""
	}
	var parts []string
	for _, e := range timing.Entries {
		if e.Duration != "" {
			parts = append(parts, fmt.Sprintf("%s (pass %d) started %s, duration %s",
				e.Stage, e.Pass, e.Start.Format("15:04:05"), e.Duration))
		} else {
			parts = append(parts, fmt.Sprintf("%s (pass %d) started %s (did not complete)",
				e.Stage, e.Pass, e.Start.Format("15:04:05")))
		}
	}
	return strings.Join(parts, "; ")
}

// truncateRunes cuts s to at most n runes, marking the cut.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + fmt.Sprintf("\n... (truncated to %d characters)", n)
}
