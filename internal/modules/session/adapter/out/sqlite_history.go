package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"focusreel/internal/modules/session/domain"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so rows sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteHistory struct {
	db *sql.DB
}

func NewSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	history := &SQLiteHistory{db: db}
	if err := history.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return history, nil
}

func (s *SQLiteHistory) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  task TEXT NOT NULL,
  duration_minutes INTEGER NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  completed INTEGER NOT NULL,
  frames INTEGER NOT NULL,
  montage_path TEXT,
  note_path TEXT
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteHistory) Upsert(ctx context.Context, entry domain.Entry) error {
	const stmt = `
INSERT INTO sessions (id, task, duration_minutes, started_at, ended_at, completed, frames, montage_path, note_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  task=excluded.task,
  duration_minutes=excluded.duration_minutes,
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  completed=excluded.completed,
  frames=excluded.frames,
  montage_path=excluded.montage_path,
  note_path=excluded.note_path;
`
	completed := 0
	if entry.Completed {
		completed = 1
	}
	_, err := s.db.ExecContext(ctx, stmt,
		entry.ID,
		entry.TaskName,
		entry.DurationMinutes,
		entry.StartedAt.UTC().Format(timeLayout),
		entry.EndedAt.UTC().Format(timeLayout),
		completed,
		entry.Frames,
		entry.MontagePath,
		entry.NotePath,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// List returns the newest sessions first. limit <= 0 lists everything.
func (s *SQLiteHistory) List(ctx context.Context, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, task, duration_minutes, started_at, ended_at, completed, frames, COALESCE(montage_path, ''), COALESCE(note_path, '')
FROM sessions
ORDER BY started_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		var (
			entry          domain.Entry
			started, ended string
			completed      int
		)
		if err := rows.Scan(&entry.ID, &entry.TaskName, &entry.DurationMinutes, &started, &ended, &completed, &entry.Frames, &entry.MontagePath, &entry.NotePath); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		entry.Completed = completed == 1
		if entry.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if entry.EndedAt, err = time.Parse(timeLayout, ended); err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return entries, nil
}

func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}
