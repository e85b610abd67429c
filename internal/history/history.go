// Package history keeps a searchable record of finished runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jorge-barreto/augmentor/internal/state"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// now is a package-level var to allow test injection.
var now = time.Now

// timeLayout is fixed width so stored timestamps sort correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("history: run not found")

// Entry is the stored summary of one run.
type Entry struct {
	RunID     string       `json:"run_id"`
	Prompt    string       `json:"prompt"`
	Status    string       `json:"status"`
	Passes    int          `json:"passes"`
	Models    state.Models `json:"models"`
	Output    string       `json:"output,omitempty"`
	Error     string       `json:"error,omitempty"`
	Questions []string     `json:"questions,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("history: create data dir: %w", err)
		}
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id          TEXT PRIMARY KEY,
			prompt          TEXT NOT NULL,
			status          TEXT NOT NULL,
			passes          INTEGER NOT NULL DEFAULT 0,
			planner_model   TEXT NOT NULL DEFAULT '',
			augmentor_model TEXT NOT NULL DEFAULT '',
			generator_model TEXT NOT NULL DEFAULT '',
			output          TEXT NOT NULL DEFAULT '',
			error           TEXT NOT NULL DEFAULT '',
			questions       TEXT NOT NULL DEFAULT '[]',
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_updated ON runs(updated_at);
	`)
	return err
}

// RecordRun upserts the summary of a run. The creation time of an existing
// row is kept.
func (s *Store) RecordRun(ctx context.Context, rec state.Record, st state.RunState) error {
	questions, err := json.Marshal(nonNil(st.QuestionsForUser))
	if err != nil {
		return err
	}
	updated := now().UTC()
	created := rec.CreatedAt
	if created.IsZero() {
		created = updated
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, prompt, status, passes, planner_model, augmentor_model, generator_model,
		                  output, error, questions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			prompt = excluded.prompt,
			status = excluded.status,
			passes = excluded.passes,
			planner_model = excluded.planner_model,
			augmentor_model = excluded.augmentor_model,
			generator_model = excluded.generator_model,
			output = excluded.output,
			error = excluded.error,
			questions = excluded.questions,
			updated_at = excluded.updated_at`,
		rec.RunID, st.OriginalPrompt, rec.Status, rec.Passes,
		rec.Models.Planner, rec.Models.Augmentor, rec.Models.Generator,
		st.Output(), st.ErrorText(), string(questions),
		created.UTC().Format(timeLayout), updated.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("history: record run %s: %w", rec.RunID, err)
	}
	return nil
}

const selectColumns = `run_id, prompt, status, passes, planner_model, augmentor_model, generator_model,
	output, error, questions, created_at, updated_at`

// Get returns one run by id.
func (s *Store) Get(ctx context.Context, runID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM runs WHERE run_id = ?`, runID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: get %s: %w", runID, err)
	}
	return e, nil
}

// List returns the most recently updated runs first. A limit of 0 or less
// means 20.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM runs ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("history: list: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var (
		e                Entry
		questions        string
		created, updated string
	)
	if err := sc.Scan(&e.RunID, &e.Prompt, &e.Status, &e.Passes,
		&e.Models.Planner, &e.Models.Augmentor, &e.Models.Generator,
		&e.Output, &e.Error, &questions, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(questions), &e.Questions); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	e.CreatedAt, _ = time.Parse(timeLayout, created)
	e.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return &e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
