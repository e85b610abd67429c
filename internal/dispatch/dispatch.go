package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/jorge-barreto/augmentor/internal/logging"
	"github.com/jorge-barreto/augmentor/internal/state"
)

// StageFunc is one pipeline step. It reads the state and returns the delta
// for the fields it owns.
type StageFunc func(ctx context.Context, st state.RunState, model string) (state.Delta, error)

// Stage describes a pipeline step.
type Stage struct {
	Index int // 1-based position, used in snapshot names
	Name  string
	Owns  state.Field
	Run   StageFunc
}

// SnapshotName returns the key the stage's result is persisted under.
func (s Stage) SnapshotName() string {
	return state.SnapshotName(s.Index, s.Name)
}

// Outcome is the result of dispatching a stage. A failed outcome carries an
// error delta; it never carries a partial result.
type Outcome struct {
	Stage    string
	Delta    state.Delta
	Err      error
	Duration time.Duration
}

// Failed reports whether the stage failed.
func (o Outcome) Failed() bool {
	return o.Err != nil || o.Delta.Failed()
}

// Dispatcher runs stages. Tests can substitute a mock.
type Dispatcher interface {
	Dispatch(ctx context.Context, stage Stage, st state.RunState, model string) Outcome
}

// Sink receives stage snapshots. Implementations must not fail the run.
type Sink interface {
	Persist(name string, data map[string]any)
}

// FileSink writes snapshots into a run directory.
type FileSink struct {
	Dir string
	Log logging.Logger
}

func (s *FileSink) Persist(name string, data map[string]any) {
	if err := state.WriteSnapshot(s.Dir, name, data); err != nil && s.Log != nil {
		s.Log.Warn("dispatch", "snapshot write failed", map[string]interface{}{
			"snapshot": name,
			"error":    err.Error(),
		})
	}
}

// DefaultDispatcher isolates stage failures: errors and panics become an
// error delta, and every result is snapshotted.
type DefaultDispatcher struct {
	Sink Sink
	Log  logging.Logger
}

// FailureMessage formats the error recorded on the state when a stage fails.
func FailureMessage(stage string, err error) string {
	return fmt.Sprintf("%s Agent failed: %v", stage, err)
}

func (d *DefaultDispatcher) Dispatch(ctx context.Context, stage Stage, st state.RunState, model string) Outcome {
	start := time.Now()
	delta, err := invoke(ctx, stage, st, model)
	if err == nil && stage.Owns != 0 {
		if extra := delta.Set &^ (stage.Owns | state.FieldError); extra != 0 {
			err = fmt.Errorf("wrote fields it does not own (mask %#x)", uint8(extra))
		}
	}
	if err != nil {
		delta = state.Failure(FailureMessage(stage.Name, err))
	}
	out := Outcome{Stage: stage.Name, Delta: delta, Err: err, Duration: time.Since(start)}

	if d.Log != nil {
		details := map[string]interface{}{
			"stage":       stage.Name,
			"model":       model,
			"duration_ms": out.Duration.Milliseconds(),
		}
		if err != nil {
			details["error"] = err.Error()
			d.Log.Error("dispatch", "stage failed", details)
		} else {
			d.Log.Info("dispatch", "stage finished", details)
		}
	}

	if d.Sink != nil {
		persist(d.Sink, stage.SnapshotName(), delta.Map(), d.Log)
	}
	return out
}

func invoke(ctx context.Context, stage Stage, st state.RunState, model string) (delta state.Delta, err error) {
	defer func() {
		if r := recover(); r != nil {
			delta = state.Delta{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if stage.Run == nil {
		return state.Delta{}, fmt.Errorf("stage %q has no implementation", stage.Name)
	}
	return stage.Run(ctx, st, model)
}

// persist shields the run from a sink that panics.
func persist(sink Sink, name string, data map[string]any, log logging.Logger) {
	defer func() {
		if r := recover(); r != nil && log != nil {
			log.Warn("dispatch", "snapshot sink panicked", map[string]interface{}{
				"snapshot": name,
				"panic":    fmt.Sprint(r),
			})
		}
	}()
	sink.Persist(name, data)
}
