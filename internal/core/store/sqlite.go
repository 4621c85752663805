package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed width so the text column sorts chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps records as rows of a single-file database. Rows are only
// ever inserted.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS records (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL UNIQUE,
		identifier    TEXT NOT NULL,
		timestamp     TEXT NOT NULL,
		source        TEXT NOT NULL,
		language_code TEXT NOT NULL DEFAULT '',
		summary       TEXT NOT NULL,
		full_text     TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_records_timestamp ON records(timestamp)`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Save inserts rec and returns "<db path>#<record name>".
func (s *SQLiteStore) Save(ctx context.Context, rec Record) (string, error) {
	rec = stamp(rec)
	name := recordName(rec.Identifier, rec.Timestamp)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (name, identifier, timestamp, source, language_code, summary, full_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, rec.Identifier, rec.Timestamp.Format(sqliteTimeLayout), rec.Source,
		rec.LanguageCode, rec.Summary, rec.FullText,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return s.path + "#" + name, nil
}

// List returns every row, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, identifier, timestamp, source, summary FROM records ORDER BY timestamp DESC, name DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.Name, &e.Identifier, &ts, &e.Source, &e.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		e.Timestamp, err = time.Parse(sqliteTimeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp on %s: %w", e.Name, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	sortNewestFirst(entries)
	return entries, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
