package runner

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jorge-barreto/augmentor/internal/dispatch"
	"github.com/jorge-barreto/augmentor/internal/events"
	"github.com/jorge-barreto/augmentor/internal/logging"
	"github.com/jorge-barreto/augmentor/internal/state"
	"github.com/jorge-barreto/augmentor/internal/telemetry"
)

// DefaultMaxPasses bounds planning passes when no cap is configured.
const DefaultMaxPasses = 25

// Recorder keeps a summary of each finished pass.
type Recorder interface {
	RecordRun(ctx context.Context, rec state.Record, st state.RunState) error
}

// Runner drives the pipeline state machine for one run.
type Runner struct {
	RunID      string
	Stages     []dispatch.Stage // planner, researcher, augmentor, generator
	Models     state.Models
	Dispatcher dispatch.Dispatcher
	Events     events.Publisher
	History    Recorder
	Log        logging.Logger
	RunDir     string // empty disables run artifacts
	MaxPasses  int

	Record *state.Record
	Timing *state.Timing
}

// Run makes one pass through the pipeline: plan, research, augment and then
// either generate or stop with questions for the user. The returned state
// carries exactly one of a final output, questions or an error.
func (r *Runner) Run(ctx context.Context, st state.RunState) state.RunState {
	r.init()
	if st.Failed() {
		return st
	}

	r.Record.Passes++
	pass := r.Record.Passes
	r.Record.Status = state.StatusRunning
	if limit := r.maxPasses(); pass > limit {
		st = st.Apply(state.Halt(fmt.Sprintf("pass limit of %d reached without a final answer", limit)))
		r.finish(ctx, st)
		return st
	}

	ctx, span := telemetry.Tracer().Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", r.RunID),
		attribute.Int("run.pass", pass),
	))
	defer span.End()

	r.publish(events.Event{Kind: events.RunStarted, Pass: pass, Total: len(r.Stages)})

	phase := Planning
	for phase.runsStage() {
		if ctx.Err() != nil {
			st = st.Apply(state.Failure(fmt.Sprintf("run interrupted: %v", ctx.Err())))
			r.Record.Status = state.StatusInterrupted
			phase = Failed
			break
		}
		if int(phase) >= len(r.Stages) {
			st = st.Apply(state.Failure(fmt.Sprintf("no stage configured for %s", phase)))
			phase = Failed
			break
		}

		st = r.dispatch(ctx, r.Stages[phase], st, pass)
		if ctx.Err() != nil && st.Failed() {
			r.Record.Status = state.StatusInterrupted
		}

		next, err := Transition(phase, eventAfter(phase, st))
		if err != nil {
			st = st.Apply(state.Failure(err.Error()))
			next = Failed
		}
		phase = next
	}

	switch phase {
	case Failed:
		span.SetStatus(codes.Error, st.ErrorText())
	case AwaitingHuman:
		span.SetAttributes(attribute.Int("run.questions", len(st.QuestionsForUser)))
		r.publish(events.Event{Kind: events.RunPaused, Pass: pass, Questions: st.QuestionsForUser})
	}
	r.finish(ctx, st)
	return st
}

// Resume folds the user's answer into the request and starts a new pass.
func (r *Runner) Resume(ctx context.Context, st state.RunState, answer string) state.RunState {
	r.init()
	if _, err := Transition(AwaitingHuman, Answered); err != nil {
		return st.Apply(state.Failure(err.Error()))
	}
	r.publish(events.Event{Kind: events.RunResumed, Pass: r.Record.Passes})
	return r.Run(ctx, st.Clarify(answer))
}

// RunInteractive runs passes until the pipeline completes or fails, asking
// the user whenever the augmentor needs more detail. An error is returned
// only when the run was cut short: cancellation or a failed read.
func (r *Runner) RunInteractive(ctx context.Context, st state.RunState, asker dispatch.Asker) (state.RunState, error) {
	st = r.Run(ctx, st)
	for st.NeedsInput() {
		if r.Record.Passes >= r.maxPasses() {
			st = st.Apply(state.Halt(fmt.Sprintf("pass limit of %d reached without a final answer", r.maxPasses())))
			r.finish(ctx, st)
			return st, nil
		}
		answer, err := asker.Ask(ctx, st.QuestionsForUser)
		if err != nil {
			r.Record.Status = state.StatusInterrupted
			r.save()
			return st, fmt.Errorf("reading clarification: %w", err)
		}
		st = r.Resume(ctx, st, answer)
	}
	if r.Record.Status == state.StatusInterrupted && ctx.Err() != nil {
		return st, ctx.Err()
	}
	return st, nil
}

func (r *Runner) dispatch(ctx context.Context, stage dispatch.Stage, st state.RunState, pass int) state.RunState {
	model := r.modelFor(stage.Name)
	ctx, span := telemetry.Tracer().Start(ctx, "stage."+stage.Name, trace.WithAttributes(
		attribute.String("stage.name", stage.Name),
		attribute.String("stage.model", model),
	))
	defer span.End()

	r.Record.Stage = stage.Name
	r.Timing.AddStart(stage.Name, pass)
	r.publish(events.Event{Kind: events.StageStarted, Stage: stage.Name, Index: stage.Index, Total: len(r.Stages), Pass: pass, Model: model})

	out := r.Dispatcher.Dispatch(ctx, stage, st, model)
	st = st.Apply(out.Delta)

	r.Timing.AddEnd(stage.Name)
	if out.Failed() {
		span.SetStatus(codes.Error, out.Delta.Error)
		r.publish(events.Event{Kind: events.StageFailed, Stage: stage.Name, Index: stage.Index, Total: len(r.Stages), Pass: pass, Duration: out.Duration, Message: st.ErrorText()})
	} else {
		r.publish(events.Event{Kind: events.StageFinished, Stage: stage.Name, Index: stage.Index, Total: len(r.Stages), Pass: pass, Duration: out.Duration})
	}
	r.save()
	return st
}

// finish records the pass outcome on disk and in history.
func (r *Runner) finish(ctx context.Context, st state.RunState) {
	if r.Record.Status != state.StatusInterrupted {
		r.Record.Status = state.StatusFor(st)
	}
	r.save()
	if r.RunDir != "" {
		if err := state.SaveRun(r.RunDir, st); err != nil {
			r.warn("saving run state failed", err)
		}
	}
	if r.History != nil {
		if err := r.History.RecordRun(context.WithoutCancel(ctx), *r.Record, st); err != nil {
			r.warn("recording history failed", err)
		}
	}
	r.publish(events.Event{Kind: events.RunFinished, Pass: r.Record.Passes, Message: r.Record.Status})
}

func (r *Runner) init() {
	if r.Log == nil {
		r.Log = logging.Nop()
	}
	if r.Record == nil {
		r.Record = &state.Record{RunID: r.RunID, Status: state.StatusRunning}
		if r.RunDir != "" {
			if rec, err := state.Load(r.RunDir); err == nil {
				r.Record = rec
			}
		}
	}
	r.Record.RunID = r.RunID
	r.Record.Models = r.Models
	if r.Timing == nil {
		r.Timing = &state.Timing{}
		if r.RunDir != "" {
			if t, err := state.LoadTiming(r.RunDir); err == nil {
				r.Timing = t
			}
		}
	}
	if r.RunDir != "" {
		if err := state.EnsureDir(r.RunDir); err != nil {
			r.warn("creating run dir failed", err)
		}
	}
}

func (r *Runner) save() {
	if r.RunDir == "" {
		return
	}
	if err := r.Record.Save(r.RunDir); err != nil {
		r.warn("saving record failed", err)
	}
	if err := r.Timing.Flush(r.RunDir); err != nil {
		r.warn("flushing timing failed", err)
	}
}

func (r *Runner) maxPasses() int {
	if r.MaxPasses > 0 {
		return r.MaxPasses
	}
	return DefaultMaxPasses
}

func (r *Runner) modelFor(stage string) string {
	switch stage {
	case "planner":
		return r.Models.Planner
	case "augmentor":
		return r.Models.Augmentor
	case "generator":
		return r.Models.Generator
	}
	return ""
}

func (r *Runner) publish(e events.Event) {
	if r.Events == nil {
		return
	}
	e.RunID = r.RunID
	if err := r.Events.Publish(e); err != nil {
		r.Log.Debug("runner", "event publish failed", map[string]interface{}{
			"kind":  string(e.Kind),
			"error": err.Error(),
		})
	}
}

func (r *Runner) warn(msg string, err error) {
	r.Log.Warn("runner", msg, map[string]interface{}{
		"run_id": r.RunID,
		"error":  err.Error(),
	})
}
