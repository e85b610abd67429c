package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/augmentor/internal/config"
	"github.com/jorge-barreto/augmentor/internal/ux"
)

var configTemplate = `# augmentor configuration. Every key is optional; the values below are the defaults.

llm:
  provider: gemini        # gemini, openai or ollama
  temperature: 0
  timeout: 120            # seconds per model call

models:
  planner: gemini-2.5-flash
  augmentor: gemini-2.5-flash
  generator: gemini-2.5-flash

search:
  provider: tavily        # tavily or brave
  depth: basic            # basic or advanced
  max-results: 5
  cache-ttl: 600          # seconds, 0 disables caching

documents:
  chunk-size: 1000
  chunk-overlap: 100

pipeline:
  max-passes: 25
  artifacts-dir: debug_output

log:
  file: logs/augmentor.log

history:
  path: augmentor.db

server:
  addr: ":8080"
  session-ttl: 60         # minutes a paused run is kept
  allow-files: false

telemetry:
  enabled: false
  endpoint: localhost:4318
  service-name: augmentor
`

var envTemplate = `# Credentials are read from the environment only.
GOOGLE_API_KEY=
TAVILY_API_KEY=
# BRAVE_API_KEY=
# OPENAI_API_KEY=
# OLLAMA_BASE_URL=http://localhost:11434
`

const gitignoreTemplate = `.env
debug_output/
logs/
augmentor.db*
`

// Init writes a starter augmentor.yaml, .env.example and .gitignore into
// targetDir. An existing augmentor.yaml is never overwritten.
func Init(targetDir string) error {
	configPath := filepath.Join(targetDir, config.FileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, targetDir)
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", targetDir, err)
	}

	files := []struct {
		name    string
		content string
		keep    bool // leave an existing file alone
	}{
		{config.FileName, configTemplate, false},
		{".env.example", envTemplate, false},
		{".gitignore", gitignoreTemplate, true},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(targetDir, f.name)
		if f.keep {
			if _, err := os.Stat(path); err == nil {
				continue
			}
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		written = append(written, f.name)
	}

	printSuccess(written)
	return nil
}

func printSuccess(written []string) {
	out := ux.Out
	fmt.Fprintf(out, "\n%s%s✓ Initialized augmentor%s\n\n", ux.Bold, ux.Green, ux.Reset)
	fmt.Fprintf(out, "  Created:\n")
	for _, name := range written {
		fmt.Fprintf(out, "    %s%s%s\n", ux.Cyan, name, ux.Reset)
	}
	fmt.Fprintf(out, "\n  Next steps:\n")
	fmt.Fprintf(out, "    1. Copy %s.env.example%s to %s.env%s and fill in your API keys\n", ux.Cyan, ux.Reset, ux.Cyan, ux.Reset)
	fmt.Fprintf(out, "    2. Edit %s%s%s to pick providers and models\n", ux.Cyan, config.FileName, ux.Reset)
	fmt.Fprintf(out, "    3. Run %saugmentor run \"<request>\"%s\n\n", ux.Cyan, ux.Reset)
}
