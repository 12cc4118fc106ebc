// Package kvstore is a string key-value store on top of the local SQLite database.
package kvstore

import (
	"context"
	"database/sql"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/sqlite"
	"log/slog"
)

type Store struct {
	db     *sqlite.Database
	logger *slog.Logger
}

type Entry struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

func New(db *sqlite.Database, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With(slog.String("source", "kvstore")),
	}
}

// Get returns the value for key. The boolean is false when the key is missing.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.ReadOnly.GetContext(ctx, &value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "select value", slog.String("key", key))
	}
	return value, true, nil
}

// Set inserts or replaces the value for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	stmt := `INSERT INTO kv (key, value) VALUES (:key, :value)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ')`
	if _, err := s.db.ReadWrite.NamedExecContext(ctx, stmt, Entry{Key: key, Value: value}); err != nil {
		return errors.Wrap(err, "upsert value", slog.String("key", key))
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ReadWrite.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return errors.Wrap(err, "delete value", slog.String("key", key))
	}
	return nil
}

// List returns the entries whose key starts with prefix ordered by key.
func (s *Store) List(ctx context.Context, prefix string) ([]Entry, error) {
	var entries []Entry
	if err := s.db.ReadOnly.SelectContext(ctx, &entries,
		`SELECT key, value FROM kv WHERE substr(key, 1, length(?)) = ? ORDER BY key`, prefix, prefix); err != nil {
		return nil, errors.Wrap(err, "select entries", slog.String("prefix", prefix))
	}
	return entries, nil
}
