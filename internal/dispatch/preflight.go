package dispatch

import (
	"fmt"
	"strings"

	"github.com/jorge-barreto/augmentor/internal/config"
)

// Preflight checks that the credentials the configured providers need are set.
func Preflight(cfg *config.Config) error {
	var missing []string
	switch cfg.LLM.Provider {
	case "gemini":
		if cfg.Keys.Google == "" {
			missing = append(missing, "GOOGLE_API_KEY (or GEMINI_API_KEY)")
		}
	case "openai":
		if cfg.Keys.OpenAI == "" && cfg.LLM.BaseURL == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			missing = append(missing, "OLLAMA_BASE_URL")
		}
	}
	switch cfg.Search.Provider {
	case "tavily":
		if cfg.Keys.Tavily == "" {
			missing = append(missing, "TAVILY_API_KEY")
		}
	case "brave":
		if cfg.Keys.Brave == "" {
			missing = append(missing, "BRAVE_API_KEY")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}
