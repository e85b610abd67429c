package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jorge-barreto/augmentor/internal/config"
	"github.com/jorge-barreto/augmentor/internal/ux"
)

func quiet(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := ux.Out
	ux.Out = &buf
	t.Cleanup(func() { ux.Out = old })
	return &buf
}

func TestInit_CreatesFiles(t *testing.T) {
	out := quiet(t)
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, path := range []string{config.FileName, ".env.example", ".gitignore"} {
		info, err := os.Stat(filepath.Join(dir, path))
		if err != nil {
			t.Fatalf("%s not created: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
	if !strings.Contains(out.String(), "Initialized augmentor") {
		t.Fatalf("missing success banner: %q", out.String())
	}
}

func TestInit_GeneratedConfigIsValid(t *testing.T) {
	quiet(t)
	for _, key := range []string{"AUGMENTOR_MAX_PASSES", "AUGMENTOR_ADDR", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		t.Fatalf("config.Load failed on generated config: %v", err)
	}
	if cfg.LLM.Provider != "gemini" || cfg.Search.Provider != "tavily" {
		t.Fatalf("providers = %q/%q", cfg.LLM.Provider, cfg.Search.Provider)
	}
	if cfg.Documents.ChunkSize != 1000 || cfg.Documents.ChunkOverlap != 100 {
		t.Fatalf("chunking = %d/%d", cfg.Documents.ChunkSize, cfg.Documents.ChunkOverlap)
	}
	if cfg.Pipeline.MaxPasses != 25 {
		t.Fatalf("max passes = %d", cfg.Pipeline.MaxPasses)
	}
	if cfg.Models.Planner != config.DefaultModel {
		t.Fatalf("planner model = %q", cfg.Models.Planner)
	}
}

func TestInit_FailsIfConfigExists(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("llm: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := Init(dir)
	if err == nil {
		t.Fatal("expected error when augmentor.yaml already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected error containing 'already exists', got: %s", err)
	}
}

func TestInit_KeepsExistingGitignore(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	gi := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(gi, []byte("node_modules/\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Init(dir); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(gi)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "node_modules/\n" {
		t.Fatalf(".gitignore overwritten: %q", data)
	}
}
