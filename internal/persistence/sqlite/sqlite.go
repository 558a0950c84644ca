// Package sqlite implements the persistence repositories and the live-query
// watcher on top of a CGO-free SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

// Store provides every repository interface over a single SQLite database.
type Store struct {
	db  *sql.DB
	hub *hub
}

// Open connects to the database identified by dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	store := &Store{db: db}
	store.hub = newHub(store)
	return store, nil
}

// Close releases the database handle and terminates all live subscriptions.
func (s *Store) Close() error {
	s.hub.closeAll()
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	email        TEXT NOT NULL UNIQUE COLLATE NOCASE,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL,
	availability TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meetings (
	id               TEXT PRIMARY KEY,
	owner_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title            TEXT NOT NULL,
	date             TEXT NOT NULL,
	duration_hours   INTEGER NOT NULL,
	flex_minutes     INTEGER NOT NULL,
	modality         TEXT NOT NULL,
	platform         TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	recurring        INTEGER NOT NULL DEFAULT 0,
	tags             TEXT NOT NULL DEFAULT '[]',
	join_code        TEXT NOT NULL,
	slot_label       TEXT,
	slot_anchor_hour INTEGER,
	slot_weekday     TEXT,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_meetings_join_code ON meetings(join_code);
CREATE INDEX IF NOT EXISTS idx_meetings_owner ON meetings(owner_id);

CREATE TABLE IF NOT EXISTS meeting_participants (
	id           TEXT PRIMARY KEY,
	meeting_id   TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
	user_id      TEXT,
	display_name TEXT NOT NULL,
	guest        INTEGER NOT NULL DEFAULT 0,
	availability TEXT,
	created_at   TEXT NOT NULL,
	UNIQUE(meeting_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_participants_user ON meeting_participants(user_id);

CREATE TABLE IF NOT EXISTS access_tokens (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	secret_digest TEXT NOT NULL,
	expires_at    TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
`

// Migrate applies the schema. Statements are idempotent so repeated startup
// is safe.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

// mapError translates driver errors into persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed") {
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	}
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy") ||
		strings.Contains(msg, "connection") || strings.Contains(msg, "i/o") {
		return fmt.Errorf("%w: %v", persistence.ErrTransient, err)
	}
	return err
}

func encodeGrid(grid map[schedule.Weekday][]int) (string, error) {
	if grid == nil {
		grid = map[schedule.Weekday][]int{}
	}
	raw, err := json.Marshal(grid)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode grid: %w", err)
	}
	return string(raw), nil
}

func decodeGrid(raw string) (map[schedule.Weekday][]int, error) {
	if strings.TrimSpace(raw) == "" {
		return map[schedule.Weekday][]int{}, nil
	}
	var grid map[schedule.Weekday][]int
	if err := json.Unmarshal([]byte(raw), &grid); err != nil {
		return nil, fmt.Errorf("sqlite: decode grid: %w", err)
	}
	return grid, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode tags: %w", err)
	}
	return string(raw), nil
}

func decodeTags(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("sqlite: decode tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", raw, err)
	}
	return t, nil
}
