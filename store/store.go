// Package store records submissions in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_requests (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT    NOT NULL,
	name       TEXT    NOT NULL DEFAULT '',
	email      TEXT    NOT NULL DEFAULT '',
	url        TEXT    NOT NULL,
	brand      TEXT    NOT NULL DEFAULT '',
	strategy   TEXT    NOT NULL DEFAULT '',
	pdf_url    TEXT    NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_requests_session ON user_requests(session_id);
`

// Submission is one processed form submission.
type Submission struct {
	ID        int64
	SessionID string
	Name      string
	Email     string
	URL       string
	Brand     string
	Strategy  string
	PDFURL    string
	CreatedAt time.Time
}

// DB wraps the SQLite handle.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the database at path and initialises the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}

	db := &DB{DB: sqlDB, path: path}
	if err := db.ensureSchemaExists(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: initialise schema: %w", err)
	}
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

func (db *DB) ensureSchemaExists() error {
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='user_requests'").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = db.Exec(schema)
		return err
	}
	return err
}

// Insert records s and returns its row id. A zero CreatedAt is set to now.
func (db *DB) Insert(ctx context.Context, s Submission) (int64, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO user_requests (session_id, name, email, url, brand, strategy, pdf_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.Name, s.Email, s.URL, s.Brand, s.Strategy, s.PDFURL, s.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert submission: %w", err)
	}
	return res.LastInsertId()
}

// BySession returns the submissions recorded for sessionID, oldest first.
func (db *DB) BySession(ctx context.Context, sessionID string) ([]Submission, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, session_id, name, email, url, brand, strategy, pdf_url, created_at
		 FROM user_requests WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: query submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Name, &s.Email, &s.URL,
			&s.Brand, &s.Strategy, &s.PDFURL, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan submission: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
