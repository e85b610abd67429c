package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type TimingEntry struct {
	Stage    string    `json:"stage"`
	Pass     int       `json:"pass"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end,omitempty"`
	Duration string    `json:"duration,omitempty"`
}

type Timing struct {
	mu      sync.Mutex
	Entries []TimingEntry `json:"entries"`
}

func timingPath(runDir string) string {
	return filepath.Join(runDir, "timing.json")
}

// LoadTiming reads timing data from the run directory.
func LoadTiming(runDir string) (*Timing, error) {
	data, err := os.ReadFile(timingPath(runDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Timing{}, nil
		}
		return nil, err
	}
	var t Timing
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// AddStart appends a new timing entry for a stage in the given pass.
func (t *Timing) AddStart(stage string, pass int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Entries = append(t.Entries, TimingEntry{
		Stage: stage,
		Pass:  pass,
		Start: time.Now(),
	})
}

// AddEnd closes the most recent open entry for stage.
func (t *Timing) AddEnd(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.Entries) - 1; i >= 0; i-- {
		if t.Entries[i].Stage == stage && t.Entries[i].End.IsZero() {
			t.Entries[i].End = time.Now()
			t.Entries[i].Duration = FormatDuration(t.Entries[i].End.Sub(t.Entries[i].Start))
			break
		}
	}
}

// Flush writes the in-memory timing data to disk.
func (t *Timing) Flush(runDir string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return writeJSONAtomic(timingPath(runDir), t)
}

// FormatDuration renders d as "Xm YYs".
func FormatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %02ds", m, s)
}
