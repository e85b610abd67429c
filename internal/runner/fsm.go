package runner

import (
	"fmt"

	"github.com/jorge-barreto/augmentor/internal/state"
)

// Phase is a node of the pipeline state machine.
type Phase int

const (
	Planning Phase = iota
	Researching
	Augmenting
	Generating
	AwaitingHuman
	Done
	Failed
)

var phaseNames = [...]string{"planning", "researching", "augmenting", "generating", "awaiting-human", "done", "failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Terminal reports whether no stage follows p.
func (p Phase) Terminal() bool {
	return p == Done || p == Failed
}

// runsStage reports whether p dispatches a stage.
func (p Phase) runsStage() bool {
	return p >= Planning && p <= Generating
}

// Event is what a phase produced.
type Event int

const (
	OK Event = iota
	Error
	NeedsInput
	Answered
)

var eventNames = [...]string{"ok", "error", "needs-input", "answered"}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", int(e))
	}
	return eventNames[e]
}

// Transition returns the phase that follows p on e. An error always leads
// to Failed. Pairs outside the pipeline graph are rejected.
func Transition(p Phase, e Event) (Phase, error) {
	if e == Error && !p.Terminal() {
		return Failed, nil
	}
	switch {
	case p == Planning && e == OK:
		return Researching, nil
	case p == Researching && e == OK:
		return Augmenting, nil
	case p == Augmenting && e == OK:
		return Generating, nil
	case p == Augmenting && e == NeedsInput:
		return AwaitingHuman, nil
	case p == Generating && e == OK:
		return Done, nil
	case p == AwaitingHuman && e == Answered:
		return Planning, nil
	}
	return p, fmt.Errorf("invalid transition: %s on %s", p, e)
}

// eventAfter derives the event from the state a phase left behind. A
// recorded error wins over pending questions, and questions only branch
// out of Augmenting.
func eventAfter(p Phase, st state.RunState) Event {
	switch {
	case st.Failed():
		return Error
	case p == Augmenting && st.NeedsInput():
		return NeedsInput
	default:
		return OK
	}
}
