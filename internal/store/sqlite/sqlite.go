// Package sqlite backs the record store with a local sqlite database. It is
// the default driver for development and tests; deployments point at Redis.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"fanclub-hub/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS list_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	list TEXT NOT NULL,
	entry TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS list_entries_by_list ON list_entries(list, id);
`

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, ensuring parent directories
// exist, and creates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// single writer; sqlite does not like concurrent connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string, dst any) error {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select record %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("decode record %s: %w", key, err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, key string, src any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO records (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", key, err)
	}
	return nil
}

func (s *Store) ListPrepend(ctx context.Context, list string, entry any) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode %s entry: %w", list, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO list_entries (list, entry) VALUES (?, ?)`,
		list, string(data),
	)
	if err != nil {
		return fmt.Errorf("insert %s entry: %w", list, err)
	}
	return nil
}

func (s *Store) ListRange(ctx context.Context, list string, start, stop int64, dst any) error {
	if start < 0 || stop < start {
		return json.Unmarshal([]byte("[]"), dst)
	}

	// Newest rows have the highest ids, so descending id order matches the
	// prepend ordering of the list contract.
	rows, err := s.db.QueryContext(ctx, `
SELECT entry FROM list_entries
WHERE list = ?
ORDER BY id DESC
LIMIT ? OFFSET ?`,
		list, stop-start+1, start,
	)
	if err != nil {
		return fmt.Errorf("select %s entries: %w", list, err)
	}
	defer rows.Close()

	doc := []byte("[")
	first := true
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return fmt.Errorf("scan %s entry: %w", list, err)
		}
		if !first {
			doc = append(doc, ',')
		}
		doc = append(doc, entry...)
		first = false
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s entries: %w", list, err)
	}
	doc = append(doc, ']')

	if err := json.Unmarshal(doc, dst); err != nil {
		return fmt.Errorf("decode %s entries: %w", list, err)
	}
	return nil
}

func (s *Store) ListLen(ctx context.Context, list string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM list_entries WHERE list = ?`, list,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s entries: %w", list, err)
	}
	return n, nil
}

func (s *Store) ListTrim(ctx context.Context, list string, maxLen int64) error {
	if maxLen < 1 {
		maxLen = 1
	}
	_, err := s.db.ExecContext(ctx, `
DELETE FROM list_entries
WHERE list = ? AND id NOT IN (
	SELECT id FROM list_entries WHERE list = ? ORDER BY id DESC LIMIT ?
)`,
		list, list, maxLen,
	)
	if err != nil {
		return fmt.Errorf("trim %s: %w", list, err)
	}
	return nil
}

func (s *Store) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM records WHERE key LIKE ? || '%' ORDER BY key`, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("select keys %s*: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
