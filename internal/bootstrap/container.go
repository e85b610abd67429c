// Package bootstrap wires the collaborators every front end shares.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jorge-barreto/augmentor/internal/config"
	"github.com/jorge-barreto/augmentor/internal/dispatch"
	"github.com/jorge-barreto/augmentor/internal/events"
	"github.com/jorge-barreto/augmentor/internal/history"
	"github.com/jorge-barreto/augmentor/internal/llm"
	"github.com/jorge-barreto/augmentor/internal/loader"
	"github.com/jorge-barreto/augmentor/internal/logging"
	"github.com/jorge-barreto/augmentor/internal/runner"
	"github.com/jorge-barreto/augmentor/internal/search"
	"github.com/jorge-barreto/augmentor/internal/stages"
	"github.com/jorge-barreto/augmentor/internal/state"
)

type Container struct {
	Config *config.Config
	Log    logging.Logger

	// Collaborators
	LLM    llm.Client
	Search search.Client
	Loader *loader.Loader
	Stages *stages.Set

	// Event bus shared by every run
	Bus *events.Bus

	// Nil when history is disabled or the database could not be opened.
	History *history.Store
}

func NewContainer(cfg *config.Config, log logging.Logger) (*Container, error) {
	if log == nil {
		log = logging.Nop()
	}

	// 1. External clients
	llmClient, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	searchClient, err := search.New(cfg)
	if err != nil {
		return nil, err
	}
	docLoader := loader.New(cfg.Documents.ChunkSize, cfg.Documents.ChunkOverlap)

	// 2. Stages
	set := &stages.Set{
		LLM:         llmClient,
		Search:      searchClient,
		Loader:      docLoader,
		Temperature: cfg.LLM.Temperature,
	}

	// 3. Event bus
	bus := events.NewBus(log)

	c := &Container{
		Config: cfg,
		Log:    log,
		LLM:    llmClient,
		Search: searchClient,
		Loader: docLoader,
		Stages: set,
		Bus:    bus,
	}

	// 4. History
	if !cfg.History.Disabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			log.Warn("bootstrap", "run history unavailable", map[string]interface{}{
				"path":  cfg.History.Path,
				"error": err.Error(),
			})
		} else {
			c.History = store
		}
	}
	return c, nil
}

// Models returns the configured model for each LLM stage.
func (c *Container) Models() state.Models {
	return state.Models{
		Planner:   c.Config.Models.Planner,
		Augmentor: c.Config.Models.Augmentor,
		Generator: c.Config.Models.Generator,
	}
}

// RunDir returns the artifacts directory of a run.
func (c *Container) RunDir(runID string) string {
	return state.RunDir(c.Config.Pipeline.ArtifactsDir, runID)
}

// NewRunner builds a runner for one run, writing artifacts under its run dir.
func (c *Container) NewRunner(runID string, models state.Models) *runner.Runner {
	runDir := c.RunDir(runID)
	r := &runner.Runner{
		RunID:  runID,
		Stages: c.Stages.Pipeline(),
		Models: models,
		Dispatcher: &dispatch.DefaultDispatcher{
			Sink: &dispatch.FileSink{Dir: runDir, Log: c.Log},
			Log:  c.Log,
		},
		Events:    c.Bus,
		Log:       c.Log,
		RunDir:    runDir,
		MaxPasses: c.Config.Pipeline.MaxPasses,
	}
	if c.History != nil {
		r.History = c.History
	}
	return r
}

// Run executes one single-shot run under a fresh run id. The returned state
// carries exactly one of a final output, questions or an error.
func (c *Container) Run(ctx context.Context, prompt string, files []string, models state.Models) state.RunState {
	return c.NewRunner(NewRunID(), models).Run(ctx, state.New(prompt, files))
}

// Close releases the bus and the history database.
func (c *Container) Close() error {
	var firstErr error
	if err := c.Bus.Close(); err != nil {
		firstErr = err
	}
	if c.History != nil {
		if err := c.History.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewRunID returns a sortable, unique run id such as
// "20260102-150405-1a2b3c4d".
func NewRunID() string {
	return fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), uuid.NewString()[:8])
}
