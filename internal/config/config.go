package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up by the CLI.
const FileName = "augmentor.yaml"

type LLM struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base-url"`
	Temperature float64 `yaml:"temperature"`
	Timeout     int     `yaml:"timeout"` // seconds per call
}

type Models struct {
	Planner   string `yaml:"planner"`
	Augmentor string `yaml:"augmentor"`
	Generator string `yaml:"generator"`
}

type Search struct {
	Provider   string `yaml:"provider"`
	Depth      string `yaml:"depth"`
	MaxResults int    `yaml:"max-results"`
	CacheTTL   int    `yaml:"cache-ttl"` // seconds, 0 disables caching
}

type Documents struct {
	ChunkSize    int `yaml:"chunk-size"`
	ChunkOverlap int `yaml:"chunk-overlap"`
}

type Pipeline struct {
	MaxPasses    int    `yaml:"max-passes"`
	ArtifactsDir string `yaml:"artifacts-dir"`
}

type Log struct {
	File       string `yaml:"file"`
	Production bool   `yaml:"production"`
}

type History struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

type Server struct {
	Addr       string `yaml:"addr"`
	SessionTTL int    `yaml:"session-ttl"` // minutes
	AllowFiles bool   `yaml:"allow-files"` // let API clients name local files
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service-name"`
}

// Keys holds API credentials. They are only ever read from the environment.
type Keys struct {
	Google string
	Tavily string
	Brave  string
	OpenAI string
}

type Config struct {
	LLM       LLM       `yaml:"llm"`
	Models    Models    `yaml:"models"`
	Search    Search    `yaml:"search"`
	Documents Documents `yaml:"documents"`
	Pipeline  Pipeline  `yaml:"pipeline"`
	Log       Log       `yaml:"log"`
	History   History   `yaml:"history"`
	Server    Server    `yaml:"server"`
	Telemetry Telemetry `yaml:"telemetry"`
	Keys      Keys      `yaml:"-"`
}

// Load reads the YAML config at path, overlays the environment and returns a
// validated Config. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		}
	}
	ApplyEnv(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CallTimeout returns the per-call LLM timeout.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.LLM.Timeout) * time.Second
}

// SessionTTL returns how long the server keeps a paused run.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTTL) * time.Minute
}

// SearchCacheTTL returns how long search results are cached.
func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.Search.CacheTTL) * time.Second
}
