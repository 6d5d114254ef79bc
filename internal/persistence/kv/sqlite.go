package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite keeps the save under a single keyed row. One writer, WAL journal,
// same driver discipline as any small append-side sqlite file.
type SQLite struct {
	db  *sql.DB
	key string
}

func OpenSQLite(path, key string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if key == "" {
		key = "session"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	const schema = `
CREATE TABLE IF NOT EXISTS saves (
	key      TEXT PRIMARY KEY,
	data     BLOB NOT NULL,
	saved_at TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db, key: key}, nil
}

func (s *SQLite) Load() ([]byte, bool, error) {
	var b []byte
	err := s.db.QueryRow(`SELECT data FROM saves WHERE key = ?`, s.key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *SQLite) Save(b []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO saves (key, data, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		s.key, b, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *SQLite) Clear() error {
	_, err := s.db.Exec(`DELETE FROM saves WHERE key = ?`, s.key)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }
