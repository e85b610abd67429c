package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/augmentor/internal/doctor"
	"github.com/jorge-barreto/augmentor/internal/history"
	"github.com/jorge-barreto/augmentor/internal/llm"
	"github.com/jorge-barreto/augmentor/internal/ux"
)

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show a run's status, stages, and timing",
		ArgsUsage: "[run-id]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runDir, err := runDirFor(cfg, cmd.Args().First())
			if err != nil {
				return err
			}
			return ux.RenderStatus(runDir)
		},
	}
}

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:      "doctor",
		Usage:     "Diagnose a failed run using the configured model",
		ArgsUsage: "[run-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model", Usage: "Model to ask (default: the planner model)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runDir, err := runDirFor(cfg, cmd.Args().First())
			if err != nil {
				return err
			}
			client, err := llm.New(cfg)
			if err != nil {
				return err
			}
			model := cmd.String("model")
			if model == "" {
				model = cfg.Models.Planner
			}
			return doctor.Run(ctx, client, model, runDir, ux.Out)
		},
	}
}

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Number of runs to show"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(ctx, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(ux.Out, "No runs recorded yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(ux.Out, "%s  %s%-12s%s %s\n",
					e.RunID, ux.StatusColor(e.Status), e.Status, ux.Reset, oneLine(e.Prompt, 60))
			}
			return nil
		},
	}
}

func showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one run from history",
		ArgsUsage: "<run-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the entry as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			runID := cmd.Args().First()
			if runID == "" {
				return fmt.Errorf("run id argument is required")
			}
			store, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := store.Get(ctx, runID)
			if errors.Is(err, history.ErrNotFound) {
				return fmt.Errorf("run %s not found in history", runID)
			}
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return printJSON(e)
			}

			fmt.Fprintf(ux.Out, "%sRun:%s      %s\n", ux.Bold, ux.Reset, e.RunID)
			fmt.Fprintf(ux.Out, "%sStatus:%s   %s%s%s\n", ux.Bold, ux.Reset, ux.StatusColor(e.Status), e.Status, ux.Reset)
			fmt.Fprintf(ux.Out, "%sPasses:%s   %d\n", ux.Bold, ux.Reset, e.Passes)
			fmt.Fprintf(ux.Out, "%sUpdated:%s  %s\n", ux.Bold, ux.Reset, e.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(ux.Out, "%sRequest:%s  %s\n", ux.Bold, ux.Reset, e.Prompt)
			switch {
			case e.Error != "":
				fmt.Fprintf(ux.Out, "%sError:%s    %s%s%s\n", ux.Bold, ux.Reset, ux.Red, e.Error, ux.Reset)
			case len(e.Questions) > 0:
				ux.Questions(e.Questions)
			case e.Output != "":
				ux.FinalOutput(e.Output)
			}
			return nil
		},
	}
}

func openHistory(cmd *cli.Command) (*history.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.History.Disabled {
		return nil, fmt.Errorf("run history is disabled in the config")
	}
	return history.Open(cfg.History.Path)
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
