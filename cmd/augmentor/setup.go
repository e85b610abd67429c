package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/augmentor/internal/bootstrap"
	"github.com/jorge-barreto/augmentor/internal/config"
	"github.com/jorge-barreto/augmentor/internal/dispatch"
	"github.com/jorge-barreto/augmentor/internal/logging"
	"github.com/jorge-barreto/augmentor/internal/state"
	"github.com/jorge-barreto/augmentor/internal/telemetry"
	"github.com/jorge-barreto/augmentor/internal/ux"
)

// app is everything a command needs once config is loaded.
type app struct {
	cfg       *config.Config
	log       logging.Logger
	container *bootstrap.Container
	shutdown  telemetry.Shutdown
}

type setupOpts struct {
	preflight bool // check API keys before anything runs
	console   bool // also log to stdout
	render    bool // print pipeline events on the console
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	config.LoadDotEnv()
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func setup(ctx context.Context, cmd *cli.Command, opts setupOpts) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if opts.preflight {
		if err := dispatch.Preflight(cfg); err != nil {
			return nil, err
		}
	}

	var log *logging.ZapLogger
	if opts.console {
		log = logging.NewZapLogger(cfg.Log.File, cfg.Log.Production)
	} else {
		log = logging.NewFileLogger(cfg.Log.File)
	}

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		log.Warn("main", "tracing disabled", map[string]interface{}{"error": err.Error()})
		shutdown = func(context.Context) error { return nil }
	}

	c, err := bootstrap.NewContainer(cfg, log)
	if err != nil {
		_ = shutdown(context.Background())
		return nil, err
	}
	if err := c.Bus.LogTo(ctx, log); err != nil {
		log.Warn("main", "event logging unavailable", map[string]interface{}{"error": err.Error()})
	}
	if opts.render {
		if err := c.Bus.Subscribe(ctx, ux.Render); err != nil {
			log.Warn("main", "console rendering unavailable", map[string]interface{}{"error": err.Error()})
		}
	}
	return &app{cfg: cfg, log: log, container: c, shutdown: shutdown}, nil
}

func (a *app) close() {
	if err := a.container.Close(); err != nil {
		a.log.Warn("main", "closing container failed", map[string]interface{}{"error": err.Error()})
	}
	if err := a.shutdown(context.Background()); err != nil {
		a.log.Warn("main", "flushing traces failed", map[string]interface{}{"error": err.Error()})
	}
	_ = a.log.Sync()
}

func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "planner-model", Usage: "Model for the planner stage"},
		&cli.StringFlag{Name: "augmentor-model", Usage: "Model for the augmentor stage"},
		&cli.StringFlag{Name: "generator-model", Usage: "Model for the generator stage"},
	}
}

// models applies per-stage flag overrides to the configured models.
func (a *app) models(cmd *cli.Command) state.Models {
	m := a.container.Models()
	if v := cmd.String("planner-model"); v != "" {
		m.Planner = v
	}
	if v := cmd.String("augmentor-model"); v != "" {
		m.Augmentor = v
	}
	if v := cmd.String("generator-model"); v != "" {
		m.Generator = v
	}
	return m
}

// runDirFor resolves a run id argument, defaulting to the latest run.
func runDirFor(cfg *config.Config, runID string) (string, error) {
	if runID == "" {
		latest, err := state.LatestRun(cfg.Pipeline.ArtifactsDir)
		if err != nil {
			return "", err
		}
		runID = latest
	}
	return state.RunDir(cfg.Pipeline.ArtifactsDir, runID), nil
}
