package config

import (
	"fmt"
	"strings"
)

const DefaultModel = "gemini-2.5-flash"

// MaxSearchResults is the hard cap on results per search query.
const MaxSearchResults = 5

var validProviders = map[string]bool{
	"gemini": true,
	"ollama": true,
	"openai": true,
}

var validSearch = map[string]bool{
	"tavily": true,
	"brave":  true,
}

var validDepths = map[string]bool{
	"basic":    true,
	"advanced": true,
}

// Validate checks the config for errors and sets defaults.
func Validate(cfg *Config) error {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	if !validProviders[cfg.LLM.Provider] {
		return fmt.Errorf("config: llm.provider %q unknown (must be gemini, ollama, or openai)", cfg.LLM.Provider)
	}
	if cfg.LLM.Provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("config: llm.temperature must be between 0 and 2")
	}
	if cfg.LLM.Timeout < 0 {
		return fmt.Errorf("config: llm.timeout must be >= 0")
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 120
	}

	for _, m := range []*string{&cfg.Models.Planner, &cfg.Models.Augmentor, &cfg.Models.Generator} {
		*m = strings.TrimSpace(*m)
		if *m == "" {
			*m = DefaultModel
		}
	}

	if cfg.Search.Provider == "" {
		cfg.Search.Provider = "tavily"
	}
	cfg.Search.Provider = strings.ToLower(cfg.Search.Provider)
	if !validSearch[cfg.Search.Provider] {
		return fmt.Errorf("config: search.provider %q unknown (must be tavily or brave)", cfg.Search.Provider)
	}
	if cfg.Search.Depth == "" {
		cfg.Search.Depth = "basic"
	}
	if !validDepths[cfg.Search.Depth] {
		return fmt.Errorf("config: search.depth %q unknown (must be basic or advanced)", cfg.Search.Depth)
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = MaxSearchResults
	}
	if cfg.Search.MaxResults < 0 || cfg.Search.MaxResults > MaxSearchResults {
		return fmt.Errorf("config: search.max-results must be between 1 and %d", MaxSearchResults)
	}
	if cfg.Search.CacheTTL < 0 {
		return fmt.Errorf("config: search.cache-ttl must be >= 0")
	}

	if cfg.Documents.ChunkSize == 0 {
		cfg.Documents.ChunkSize = 1000
	}
	if cfg.Documents.ChunkOverlap == 0 {
		cfg.Documents.ChunkOverlap = 100
	}
	if cfg.Documents.ChunkSize < 0 || cfg.Documents.ChunkOverlap < 0 {
		return fmt.Errorf("config: documents chunk-size and chunk-overlap must be >= 0")
	}
	if cfg.Documents.ChunkOverlap >= cfg.Documents.ChunkSize {
		return fmt.Errorf("config: documents.chunk-overlap (%d) must be smaller than chunk-size (%d)",
			cfg.Documents.ChunkOverlap, cfg.Documents.ChunkSize)
	}

	if cfg.Pipeline.MaxPasses == 0 {
		cfg.Pipeline.MaxPasses = 25
	}
	if cfg.Pipeline.MaxPasses < 0 {
		return fmt.Errorf("config: pipeline.max-passes must be >= 1")
	}
	if cfg.Pipeline.ArtifactsDir == "" {
		cfg.Pipeline.ArtifactsDir = "debug_output"
	}

	if cfg.Log.File == "" {
		cfg.Log.File = "logs/augmentor.log"
	}
	if cfg.History.Path == "" {
		cfg.History.Path = "augmentor.db"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.SessionTTL == 0 {
		cfg.Server.SessionTTL = 60
	}
	if cfg.Server.SessionTTL < 0 {
		return fmt.Errorf("config: server.session-ttl must be >= 0")
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4318"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "augmentor"
	}
	return nil
}
