package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const snapshotSuffix = "_output.json"

// RunDir returns the artifacts directory of one run.
func RunDir(artifactsDir, runID string) string {
	return filepath.Join(artifactsDir, runID)
}

// EnsureDir creates the run directory.
func EnsureDir(runDir string) error {
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("creating run dir %s: %w", runDir, err)
	}
	return nil
}

// SnapshotName returns the snapshot key for a stage, e.g. "1_planner".
func SnapshotName(index int, stage string) string {
	return fmt.Sprintf("%d_%s", index, stage)
}

// SnapshotPath returns the file a stage snapshot is written to.
func SnapshotPath(runDir, name string) string {
	return filepath.Join(runDir, name+snapshotSuffix)
}

// WriteSnapshot persists a stage result. Writing the same name again
// replaces the previous snapshot.
func WriteSnapshot(runDir, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	return writeJSONAtomic(SnapshotPath(runDir, name), data)
}

// Snapshot is a stage result read back from disk.
type Snapshot struct {
	Name string
	Data map[string]any
}

// ReadSnapshots returns every stage snapshot in the run directory, ordered by name.
func ReadSnapshots(runDir string) ([]Snapshot, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), snapshotSuffix))
	}
	sort.Strings(names)

	snaps := make([]Snapshot, 0, len(names))
	for _, n := range names {
		raw, err := os.ReadFile(SnapshotPath(runDir, n))
		if err != nil {
			return nil, err
		}
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", n, err)
		}
		snaps = append(snaps, Snapshot{Name: n, Data: data})
	}
	return snaps, nil
}

// LatestRun returns the id of the most recently updated run under artifactsDir.
func LatestRun(artifactsDir string) (string, error) {
	entries, err := os.ReadDir(artifactsDir)
	if err != nil {
		return "", err
	}
	var latest *Record
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(artifactsDir, e.Name())
		if _, err := os.Stat(statePath(dir)); err != nil {
			continue
		}
		r, err := Load(dir)
		if err != nil {
			continue
		}
		if latest == nil || r.UpdatedAt.After(latest.UpdatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return "", fmt.Errorf("no runs found in %s", artifactsDir)
	}
	return latest.RunID, nil
}
