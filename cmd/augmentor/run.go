package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/augmentor/internal/bootstrap"
	"github.com/jorge-barreto/augmentor/internal/dispatch"
	"github.com/jorge-barreto/augmentor/internal/state"
	"github.com/jorge-barreto/augmentor/internal/ux"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the pipeline once for a request",
		ArgsUsage: "<request>",
		Flags: append([]cli.Flag{
			&cli.StringSliceFlag{Name: "file", Aliases: []string{"f"}, Usage: "Local document to add as context (repeatable)"},
			&cli.BoolFlag{Name: "json", Usage: "Print the final run state as JSON on stdout"},
		}, modelFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			if prompt == "" {
				return fmt.Errorf("request argument is required")
			}
			asJSON := cmd.Bool("json")
			if asJSON {
				ux.Out = os.Stderr
			}

			a, err := setup(ctx, cmd, setupOpts{preflight: true, render: true})
			if err != nil {
				return err
			}
			defer a.close()

			runID := bootstrap.NewRunID()
			r := a.container.NewRunner(runID, a.models(cmd))
			st := r.Run(ctx, state.New(prompt, cmd.StringSlice("file")))

			if asJSON {
				if err := printJSON(st); err != nil {
					return err
				}
			}
			return report(runID, r.Record.Passes, st, !asJSON)
		},
	}
}

func clarifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "clarify",
		Usage:     "Answer the questions of a paused run and continue it",
		ArgsUsage: "<run-id> <answer>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the final run state as JSON on stdout"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			runID := cmd.Args().First()
			answer := strings.TrimSpace(strings.Join(cmd.Args().Tail(), " "))
			if runID == "" || answer == "" {
				return fmt.Errorf("run id and answer are required")
			}
			asJSON := cmd.Bool("json")
			if asJSON {
				ux.Out = os.Stderr
			}

			a, err := setup(ctx, cmd, setupOpts{preflight: true, render: true})
			if err != nil {
				return err
			}
			defer a.close()

			runDir := a.container.RunDir(runID)
			st, err := state.LoadRun(runDir)
			if err != nil {
				return fmt.Errorf("loading run %s: %w", runID, err)
			}
			if !st.NeedsInput() {
				return fmt.Errorf("run %s is not awaiting clarification", runID)
			}
			rec, err := state.Load(runDir)
			if err != nil {
				return fmt.Errorf("loading run %s: %w", runID, err)
			}

			r := a.container.NewRunner(runID, rec.Models)
			st = r.Resume(ctx, st, answer)

			if asJSON {
				if err := printJSON(st); err != nil {
					return err
				}
			}
			return report(runID, r.Record.Passes, st, !asJSON)
		},
	}
}

func chatCmd() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Interactive session: answer clarifying questions as they come",
		ArgsUsage: "[request]",
		Flags: append([]cli.Flag{
			&cli.StringSliceFlag{Name: "file", Aliases: []string{"f"}, Usage: "Local document to add as context to the first request"},
		}, modelFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(ctx, cmd, setupOpts{preflight: true, render: true})
			if err != nil {
				return err
			}
			defer a.close()

			asker := dispatch.NewTerminalAsker(os.Stdin, ux.Out)
			models := a.models(cmd)
			files := cmd.StringSlice("file")
			prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))

			for {
				if prompt == "" {
					prompt, err = asker.Prompt(ctx, "\n  Request (empty to quit): ")
					if errors.Is(err, io.EOF) {
						return nil
					}
					if err != nil {
						return err
					}
					if prompt == "" || prompt == "exit" || prompt == "quit" {
						return nil
					}
				}

				runID := bootstrap.NewRunID()
				r := a.container.NewRunner(runID, models)
				st, err := r.RunInteractive(ctx, state.New(prompt, files), asker)
				if err != nil {
					ux.ResumeHint(runID)
					return err
				}
				if err := report(runID, r.Record.Passes, st, true); err != nil {
					fmt.Fprintf(ux.Out, "%serror:%s %v\n", ux.Red, ux.Reset, err)
				}
				prompt, files = "", nil
			}
		},
	}
}

// report prints a run outcome on the console and turns a failed run into
// the command's error.
func report(runID string, passes int, st state.RunState, console bool) error {
	switch {
	case st.Failed():
		ux.ResumeHint(runID)
		return errors.New(st.ErrorText())
	case st.NeedsInput():
		ux.Questions(st.QuestionsForUser)
		fmt.Fprintf(ux.Out, "\n%sAnswer:%s augmentor clarify %s \"<answer>\"\n", ux.Yellow, ux.Reset, runID)
	default:
		if console {
			ux.FinalOutput(st.Output())
		}
		ux.Success(passes)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
