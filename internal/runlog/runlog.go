// Package runlog tient un journal append-only des runs (segment, merge) dans
// une base SQLite : un enregistrement par run et un événement par clip.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Status d'un run ou d'un événement de clip.
type Status string

const (
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	language    TEXT NOT NULL DEFAULT '',
	phase       TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	status      TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS clip_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	clip_index INTEGER NOT NULL,
	phase      TEXT NOT NULL,
	status     TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	at         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS clip_events_run ON clip_events(run_id, clip_index);
`

// Event est un point de progression d'un clip.
type Event struct {
	ClipIndex int
	Phase     string
	Status    Status
	Message   string
	At        time.Time
}

// Run résume un enregistrement de la table runs.
type Run struct {
	ID         string
	Title      string
	Language   string
	Phase      string
	StartedAt  time.Time
	FinishedAt time.Time // zéro tant que le run n'est pas terminé
	Status     Status
	Message    string
}

// Journal est le journal SQLite. Sûr pour un usage concurrent.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open ouvre (ou crée) le journal à path.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// une seule connexion : les écritures des workers sont sérialisées
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) stamp() string {
	return j.now().UTC().Format(time.RFC3339Nano)
}

// StartRun crée un run et retourne son identifiant.
func (j *Journal) StartRun(ctx context.Context, title, phase, lang string) (string, error) {
	id := uuid.NewString()
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO runs (id, title, language, phase, started_at, status) VALUES (?, ?, ?, ?, ?, ?)",
		id, title, lang, phase, j.stamp(), StatusRunning)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// Record ajoute un événement de clip au run.
func (j *Journal) Record(ctx context.Context, runID string, ev Event) error {
	at := ev.At
	if at.IsZero() {
		at = j.now()
	}
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO clip_events (run_id, clip_index, phase, status, message, at) VALUES (?, ?, ?, ?, ?, ?)",
		runID, ev.ClipIndex, ev.Phase, ev.Status, ev.Message, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record clip %d: %w", ev.ClipIndex, err)
	}
	return nil
}

// FinishRun clôt le run ; runErr nil signifie succès.
func (j *Journal) FinishRun(ctx context.Context, runID string, runErr error) error {
	status, msg := StatusOK, ""
	if runErr != nil {
		status, msg = StatusFailed, runErr.Error()
	}
	res, err := j.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, status = ?, message = ? WHERE id = ?",
		j.stamp(), status, msg, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: run %s inconnu", runID)
	}
	return nil
}

// Events retourne les événements d'un run dans l'ordre d'insertion.
func (j *Journal) Events(ctx context.Context, runID string) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT clip_index, phase, status, message, at FROM clip_events WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev Event
			at string
		)
		if err := rows.Scan(&ev.ClipIndex, &ev.Phase, &ev.Status, &ev.Message, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// GetRun relit un run.
func (j *Journal) GetRun(ctx context.Context, runID string) (Run, error) {
	var (
		r        Run
		started  string
		finished sql.NullString
	)
	err := j.db.QueryRowContext(ctx,
		"SELECT id, title, language, phase, started_at, finished_at, status, message FROM runs WHERE id = ?", runID).
		Scan(&r.ID, &r.Title, &r.Language, &r.Phase, &started, &finished, &r.Status, &r.Message)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("run %s inconnu", runID)
	}
	if err != nil {
		return r, fmt.Errorf("query run: %w", err)
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return r, nil
}
