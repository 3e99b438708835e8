package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/JonMunkholm/gridkit/internal/core"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	name     TEXT PRIMARY KEY,
	digest   TEXT NOT NULL,
	payload  BLOB NOT NULL,
	saved_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps one lz4-compressed snapshot per name in a SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Save stores snap under name.
func (s *SQLiteStore) Save(ctx context.Context, name string, snap core.Snapshot) error {
	_, err := s.SaveIfChanged(ctx, name, snap)
	return err
}

// SaveIfChanged stores snap unless the saved payload is identical, and
// reports whether a write happened.
func (s *SQLiteStore) SaveIfChanged(ctx context.Context, name string, snap core.Snapshot) (bool, error) {
	payload, err := encodeSnapshot(snap)
	if err != nil {
		return false, fmt.Errorf("encode snapshot: %w", err)
	}
	sum := digest(payload)

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT digest FROM snapshots WHERE name = ?`, name).Scan(&current)
	switch {
	case err == nil && current == sum:
		s.logger.Debug("snapshot unchanged", "name", name, "digest", sum)
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("read digest: %w", err)
	}

	compressed, err := compress(payload)
	if err != nil {
		return false, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, digest, payload, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET digest = excluded.digest, payload = excluded.payload, saved_at = excluded.saved_at`,
		name, sum, compressed, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}

	s.logger.Info("snapshot saved",
		"name", name,
		"rows", len(snap.Rows),
		"columns", len(snap.Columns),
		"bytes", len(compressed),
	)
	return true, nil
}

// Load returns the snapshot saved under name, or ErrNoSnapshot.
func (s *SQLiteStore) Load(ctx context.Context, name string) (core.Snapshot, error) {
	var compressed []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE name = ?`, name).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	payload, err := decompress(compressed)
	if err != nil {
		return core.Snapshot{}, err
	}
	return decodeSnapshot(payload)
}

// SavedAt returns when name was last written.
func (s *SQLiteStore) SavedAt(ctx context.Context, name string) (time.Time, error) {
	var at time.Time
	err := s.db.QueryRowContext(ctx, `SELECT saved_at FROM snapshots WHERE name = ?`, name).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	return at, err
}

// Delete removes name. Deleting a missing snapshot is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
