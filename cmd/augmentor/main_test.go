package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jorge-barreto/augmentor/internal/config"
	"github.com/jorge-barreto/augmentor/internal/state"
	"github.com/jorge-barreto/augmentor/internal/ux"
)

func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := ux.Out
	ux.Out = &buf
	t.Cleanup(func() { ux.Out = old })
	return &buf
}

func TestOneLine(t *testing.T) {
	if got := oneLine("a\n  b\tc", 60); got != "a b c" {
		t.Fatalf("got %q", got)
	}
	got := oneLine(strings.Repeat("x", 80), 20)
	if len(got) != 20 || !strings.HasSuffix(got, "...") {
		t.Fatalf("got %q", got)
	}
}

func TestRunDirFor(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Pipeline.ArtifactsDir = dir

	got, err := runDirFor(cfg, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "abc") {
		t.Fatalf("got %q", got)
	}

	if _, err := runDirFor(cfg, ""); err == nil {
		t.Fatal("expected error with no runs")
	}

	runDir := filepath.Join(dir, "latest")
	if err := state.EnsureDir(runDir); err != nil {
		t.Fatal(err)
	}
	rec := &state.Record{RunID: "latest", Status: state.StatusCompleted}
	if err := rec.Save(runDir); err != nil {
		t.Fatal(err)
	}
	got, err = runDirFor(cfg, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "latest") {
		t.Fatalf("got %q", got)
	}
}

func TestReport(t *testing.T) {
	base := state.New("req", nil)

	out := captureOut(t)
	err := report("r1", 1, base.Apply(state.Failure("planner Agent failed: boom")), true)
	if err == nil || err.Error() != "planner Agent failed: boom" {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out.String(), "augmentor doctor r1") {
		t.Errorf("missing doctor hint: %q", out.String())
	}

	out.Reset()
	if err := report("r2", 1, base.Apply(state.Questions([]string{"Which version?"})), true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Which version?") || !strings.Contains(out.String(), "augmentor clarify r2") {
		t.Errorf("questions not reported: %q", out.String())
	}

	out.Reset()
	if err := report("r3", 2, base.Apply(state.Output("done text")), true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "done text") || !strings.Contains(out.String(), "2 passes") {
		t.Errorf("output not reported: %q", out.String())
	}

	out.Reset()
	if err := report("r4", 1, base.Apply(state.Output("hidden")), false); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "hidden") {
		t.Errorf("output printed with console=false")
	}
}
