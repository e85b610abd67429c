package ux

import (
	"fmt"
	"path/filepath"

	"github.com/jorge-barreto/augmentor/internal/state"
)

// RenderStatus prints the full status display for a run directory.
func RenderStatus(runDir string) error {
	rec, err := state.Load(runDir)
	if err != nil {
		return fmt.Errorf("loading run record: %w", err)
	}
	timing, _ := state.LoadTiming(runDir)

	fmt.Fprintf(Out, "%sRun:%s     %s\n", Bold, Reset, rec.RunID)
	fmt.Fprintf(Out, "%sStatus:%s  %s%s%s\n", Bold, Reset, StatusColor(rec.Status), rec.Status, Reset)
	fmt.Fprintf(Out, "%sPasses:%s  %d\n", Bold, Reset, rec.Passes)
	if rec.Stage != "" {
		fmt.Fprintf(Out, "%sStage:%s   %s\n", Bold, Reset, rec.Stage)
	}
	fmt.Fprintf(Out, "%sModels:%s  planner=%s augmentor=%s generator=%s\n",
		Bold, Reset, rec.Models.Planner, rec.Models.Augmentor, rec.Models.Generator)

	if timing != nil && len(timing.Entries) > 0 {
		fmt.Fprintf(Out, "\n%sStages:%s\n", Bold, Reset)
		for _, e := range timing.Entries {
			dur := e.Duration
			if dur == "" {
				dur = "running"
			}
			fmt.Fprintf(Out, "  %spass %d%s  %-12s %s\n", Dim, e.Pass, Reset, e.Stage, dur)
		}
	}

	if st, err := state.LoadRun(runDir); err == nil {
		switch {
		case st.Failed():
			fmt.Fprintf(Out, "\n%sError:%s %s\n", Red, Reset, st.ErrorText())
		case st.NeedsInput():
			Questions(st.QuestionsForUser)
		}
	}

	fmt.Fprintf(Out, "\n%sArtifacts:%s\n", Bold, Reset)
	snaps, err := state.ReadSnapshots(runDir)
	if err != nil || len(snaps) == 0 {
		fmt.Fprintf(Out, "  %s(none)%s\n", Dim, Reset)
	}
	for _, s := range snaps {
		fmt.Fprintf(Out, "  %s\n", state.SnapshotPath(runDir, s.Name))
	}
	for _, name := range []string{"state.json", "run.json", "timing.json"} {
		fmt.Fprintf(Out, "  %s\n", filepath.Join(runDir, name))
	}
	fmt.Fprintln(Out)
	return nil
}

// StatusColor returns the ANSI color for a run status.
func StatusColor(status string) string {
	switch status {
	case state.StatusCompleted:
		return Green
	case state.StatusFailed, state.StatusInterrupted:
		return Red
	case state.StatusNeedsInput:
		return Yellow
	}
	return ""
}
