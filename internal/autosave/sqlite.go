package autosave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite" // Register the pure-Go sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS autosave (
	slot     TEXT PRIMARY KEY,
	payload  BLOB NOT NULL,
	saved_at TEXT NOT NULL
)`

// SQLiteStore is the default Store: one row per slot in a local SQLite
// database opened with WAL journaling.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the autosave database at path.
// Parent directories are created. Pass ":memory:" for an ephemeral store.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: mkdir: %v", ErrPersistence, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrPersistence, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrPersistence, p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: schema: %v", ErrPersistence, err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// OpenMemorySQLite opens an in-memory store for testing. MaxOpenConns is
// pinned to 1 so every query hits the same in-memory database, and the
// store is closed via t.Cleanup.
func OpenMemorySQLite(t testing.TB) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:", nil)
	if err != nil {
		t.Fatalf("OpenMemorySQLite: %v", err)
	}
	s.db.SetMaxOpenConns(1)
	t.Cleanup(func() { s.Close() })
	return s
}

// Save upserts snap into the slot, overwriting any prior snapshot.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	payload, err := encodePayload(snap)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO autosave (slot, payload, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		Slot, payload, snap.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: save: %v", ErrPersistence, err)
	}
	return nil
}

// Load returns the stored snapshot. An empty slot or a corrupt payload
// loads as (nil, nil); only query failures surface as errors.
func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM autosave WHERE slot = ?`, Slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", ErrPersistence, err)
	}

	snap, _ := decodePayload(payload)
	if snap == nil {
		s.logger.Warn("autosave: discarding invalid stored snapshot")
	}
	return snap, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
