package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// ApplyEnv copies credentials and environment overrides into cfg.
func ApplyEnv(cfg *Config) {
	cfg.Keys.Google = getEnv("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY"))
	cfg.Keys.Tavily = os.Getenv("TAVILY_API_KEY")
	cfg.Keys.Brave = os.Getenv("BRAVE_API_KEY")
	cfg.Keys.OpenAI = os.Getenv("OPENAI_API_KEY")

	if cfg.LLM.Provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if cfg.LLM.Provider == "openai" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	cfg.Telemetry.Enabled = getEnvAsBool("OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.Endpoint)

	cfg.Pipeline.MaxPasses = getEnvAsInt("AUGMENTOR_MAX_PASSES", cfg.Pipeline.MaxPasses)
	cfg.Server.Addr = getEnv("AUGMENTOR_ADDR", cfg.Server.Addr)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
