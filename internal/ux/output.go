package ux

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jorge-barreto/augmentor/internal/events"
	"github.com/jorge-barreto/augmentor/internal/state"
)

// ANSI color helpers
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

// Out receives all console output. The CLI points it at stderr when stdout
// carries JSON.
var Out io.Writer = os.Stdout

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// StageHeader prints a timestamped stage header.
func StageHeader(index, total int, stage, model string) {
	fmt.Fprintf(Out, "\n%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
	via := ""
	if model != "" {
		via = fmt.Sprintf(" via %s", model)
	}
	fmt.Fprintf(Out, "%s[%s]%s  %sStage %d/%d: %s%s%s\n",
		Dim, timestamp(), Reset, Bold, index, total, stage, via, Reset)
	fmt.Fprintf(Out, "%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
}

// StageComplete prints a stage completion message.
func StageComplete(index int, stage string, duration time.Duration) {
	fmt.Fprintf(Out, "%s[%s]%s  %s✓ Stage %d (%s) complete (%s)%s\n",
		Dim, timestamp(), Reset, Green, index, stage, state.FormatDuration(duration), Reset)
}

// StageFail prints a stage failure message.
func StageFail(index int, stage, errMsg string) {
	fmt.Fprintf(Out, "%s[%s]%s  %s✗ Stage %d (%s) failed: %s%s\n",
		Dim, timestamp(), Reset, Red, index, stage, errMsg, Reset)
}

// LoopBack prints the return to planning after a clarification.
func LoopBack(pass int) {
	fmt.Fprintf(Out, "%s[%s]%s  %s↺ Clarification received. Replanning (pass %d)%s\n",
		Dim, timestamp(), Reset, Yellow, pass, Reset)
}

// Questions lists the augmentor's questions.
func Questions(qs []string) {
	fmt.Fprintf(Out, "\n  %s? More detail is needed:%s\n", Yellow, Reset)
	for i, q := range qs {
		fmt.Fprintf(Out, "    %s%d.%s %s\n", Cyan, i+1, Reset, q)
	}
}

// FinalOutput prints the generated artifact.
func FinalOutput(text string) {
	fmt.Fprintf(Out, "\n%s%s══ Output ══%s\n\n%s\n", Bold, Green, Reset, strings.TrimRight(text, "\n"))
}

// Success prints a final success message.
func Success(passes int) {
	noun := "passes"
	if passes == 1 {
		noun = "pass"
	}
	fmt.Fprintf(Out, "\n%s[%s]%s  %s%s══ Run complete after %d %s ══%s\n\n",
		Dim, timestamp(), Reset, Bold, Green, passes, noun, Reset)
}

// ResumeHint prints how to inspect or diagnose a run.
func ResumeHint(runID string) {
	fmt.Fprintf(Out, "\n%sInspect:%s augmentor status %s\n", Yellow, Reset, runID)
	fmt.Fprintf(Out, "%sDiagnose:%s augmentor doctor %s\n", Yellow, Reset, runID)
}

// Render prints pipeline events as they arrive. It is subscribed to the
// event bus by the console drivers.
func Render(e events.Event) {
	switch e.Kind {
	case events.StageStarted:
		StageHeader(e.Index, e.Total, e.Stage, e.Model)
	case events.StageFinished:
		StageComplete(e.Index, e.Stage, e.Duration)
	case events.StageFailed:
		StageFail(e.Index, e.Stage, e.Message)
	case events.RunResumed:
		LoopBack(e.Pass + 1)
	}
}
