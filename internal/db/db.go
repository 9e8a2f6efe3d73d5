package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is how timestamps are stored in SQLite. RFC 3339 in UTC keeps
// lexicographic and chronological order identical, so the due-reminder
// predicate can compare timestamps as text.
const timeLayout = time.RFC3339

const schema = `
CREATE TABLE IF NOT EXISTS Events (
  event_id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  source_chat_id TEXT NOT NULL,
  event_summary TEXT NOT NULL,
  event_dt TEXT NOT NULL,
  reminder_1_dt TEXT,
  reminder_2_dt TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  creation_dt TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_user_id ON Events(user_id);
CREATE INDEX IF NOT EXISTS idx_events_reminder_1_dt ON Events(reminder_1_dt);
CREATE INDEX IF NOT EXISTS idx_events_reminder_2_dt ON Events(reminder_2_dt);
CREATE INDEX IF NOT EXISTS idx_events_event_dt ON Events(event_dt);
`

// Manager owns the SQLite connection for the event store.
type Manager struct {
	db *sql.DB
}

// NewManager opens (or creates) the event database at the given path and
// ensures the schema exists.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is not set")
	}

	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; one shared connection serializes access
	// from the scheduler and the processor.
	sqldb.SetMaxOpenConns(1)

	if _, err := sqldb.Exec(schema); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Manager{db: sqldb}, nil
}

// Close closes the underlying database connection.
func (m *Manager) Close() error {
	return m.db.Close()
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func fmtTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
