// Package archive stores aggregated datasets in SQLite so they can be
// exported again by session.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/RevCBH/planrate/internal/dataset"
)

// timeLayout sorts lexically in UTC
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned when no dataset exists for a session or id
var ErrNotFound = errors.New("dataset not found")

// Archive wraps the SQLite connection holding stored datasets
type Archive struct {
	conn *sql.DB
	path string
	now  func() time.Time
}

// Entry describes one stored dataset
type Entry struct {
	ID                string
	SessionID         string
	CreatedAt         time.Time
	TotalSteps        int
	OverallScore      float64
	CanUseForTraining bool
	Exports           int
}

// Open creates or opens an archive at the given path.
// It enables WAL mode, foreign keys, and runs migrations.
func Open(path string) (*Archive, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// one connection keeps :memory: archives on a single database
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	a := &Archive{conn: conn, path: path, now: time.Now}
	if err := a.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return a, nil
}

// Close closes the database connection
func (a *Archive) Close() error {
	return a.conn.Close()
}

// Location is the file_path reported for a stored dataset
func (a *Archive) Location(id string) string {
	return a.path + "#" + id
}

func (a *Archive) migrate() error {
	schema := `
-- One row per accepted submission
CREATE TABLE IF NOT EXISTS datasets (
    id                    TEXT PRIMARY KEY,
    session_id            TEXT NOT NULL,
    created_at            TEXT NOT NULL,
    total_steps           INTEGER NOT NULL,
    overall_score         REAL NOT NULL,
    can_use_for_training  INTEGER NOT NULL,
    dataset_json          TEXT NOT NULL
);

-- Export log
CREATE TABLE IF NOT EXISTS exports (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    dataset_id      TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
    format          TEXT NOT NULL,
    created_at      TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_datasets_session ON datasets(session_id, created_at);
CREATE INDEX IF NOT EXISTS idx_exports_dataset ON exports(dataset_id);
`
	if _, err := a.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Save stores a dataset and returns its entry. A session may be submitted
// more than once; every submission is kept.
func (a *Archive) Save(ctx context.Context, d *dataset.Dataset) (Entry, error) {
	if d == nil || d.SessionID == "" {
		return Entry{}, dataset.ErrEmptySessionID
	}

	data, err := json.Marshal(d)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to serialize dataset: %w", err)
	}

	trainable := d.TrainingMetadata != nil && d.TrainingMetadata.CanUseForTraining
	e := Entry{
		ID:                ulid.Make().String(),
		SessionID:         d.SessionID,
		CreatedAt:         a.now().UTC(),
		TotalSteps:        d.AggregatedMetrics.TotalSteps,
		OverallScore:      d.AggregatedMetrics.OverallScore,
		CanUseForTraining: trainable,
	}

	query := `
		INSERT INTO datasets (id, session_id, created_at, total_steps, overall_score, can_use_for_training, dataset_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = a.conn.ExecContext(ctx, query,
		e.ID, e.SessionID, e.CreatedAt.Format(timeLayout),
		e.TotalSteps, e.OverallScore, boolToInt(trainable), string(data))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert dataset: %w", err)
	}
	return e, nil
}

// Latest returns the most recently stored dataset for a session.
func (a *Archive) Latest(ctx context.Context, sessionID string) (string, *dataset.Dataset, error) {
	query := `
		SELECT id, dataset_json FROM datasets
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	var id, raw string
	err := a.conn.QueryRowContext(ctx, query, sessionID).Scan(&id, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to query dataset: %w", err)
	}

	var d dataset.Dataset
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return "", nil, fmt.Errorf("failed to decode dataset %s: %w", id, err)
	}
	return id, &d, nil
}

// RecordExport logs an export of a stored dataset
func (a *Archive) RecordExport(ctx context.Context, datasetID string, format dataset.Format) error {
	_, err := a.conn.ExecContext(ctx,
		`INSERT INTO exports (dataset_id, format) VALUES (?, ?)`,
		datasetID, string(format))
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// List returns stored datasets, newest first. A limit of zero or less
// returns everything.
func (a *Archive) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT d.id, d.session_id, d.created_at, d.total_steps, d.overall_score,
		       d.can_use_for_training, COUNT(e.id)
		FROM datasets d
		LEFT JOIN exports e ON e.dataset_id = d.id
		GROUP BY d.id
		ORDER BY d.created_at DESC, d.id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			createdAt string
			trainable int
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &createdAt, &e.TotalSteps, &e.OverallScore, &trainable, &e.Exports); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		e.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
		}
		e.CanUseForTraining = trainable != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate datasets: %w", err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
