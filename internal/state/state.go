package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusNeedsInput  = "needs-input"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
)

// Record is the bookkeeping for one run, persisted as state.json in the run
// directory. The pipeline data itself lives in run.json.
type Record struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	Passes    int       `json:"passes"`
	Stage     string    `json:"stage,omitempty"` // last stage dispatched
	Models    Models    `json:"models"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Models records the model used by each LLM stage of a run.
type Models struct {
	Planner   string `json:"planner"`
	Augmentor string `json:"augmentor"`
	Generator string `json:"generator"`
}

func statePath(runDir string) string {
	return filepath.Join(runDir, "state.json")
}

func runPath(runDir string) string {
	return filepath.Join(runDir, "run.json")
}

// Load reads the record from the run directory. Returns a new record if not found.
func Load(runDir string) (*Record, error) {
	data, err := os.ReadFile(statePath(runDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Record{RunID: filepath.Base(runDir), Status: StatusRunning}, nil
		}
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Save writes the record to the run directory.
func (r *Record) Save(runDir string) error {
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return writeJSONAtomic(statePath(runDir), r)
}

// SaveRun writes the run state to run.json.
func SaveRun(runDir string, s RunState) error {
	return writeJSONAtomic(runPath(runDir), s)
}

// LoadRun reads run.json from the run directory.
func LoadRun(runDir string) (RunState, error) {
	var s RunState
	data, err := os.ReadFile(runPath(runDir))
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(data, &s)
	return s, err
}

// StatusFor maps a run state's outcome to the record status.
func StatusFor(s RunState) string {
	switch s.Outcome() {
	case OutcomeCompleted:
		return StatusCompleted
	case OutcomeNeedsInput:
		return StatusNeedsInput
	case OutcomeFailed:
		return StatusFailed
	default:
		return StatusRunning
	}
}
