package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"paybook/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps the snapshot as one row of a key-value table.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	key     string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		key:     SnapshotKey,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements store.Persister.
func (r *SQLiteRepository) Load(ctx context.Context) (core.Snapshot, bool, error) {
	value, err := r.queries.GetValue(ctx, r.key)
	if errors.Is(err, sql.ErrNoRows) {
		slog.DebugContext(ctx, "No snapshot stored in SQLite", "key", r.key)
		return core.Snapshot{}, false, nil
	}
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("get snapshot: %w", err)
	}

	snap, err := decodeSnapshot([]byte(value))
	if err != nil {
		return core.Snapshot{}, false, err
	}
	slog.DebugContext(ctx, "Snapshot loaded from SQLite", "key", r.key, "records", len(snap.Records))
	return snap, true, nil
}

// Save implements store.Persister. The upsert replaces the document in one statement.
func (r *SQLiteRepository) Save(ctx context.Context, snap core.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	err = r.queries.PutValue(ctx, PutValueParams{
		Key:       r.key,
		Value:     string(data),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved to SQLite", "key", r.key, "records", len(snap.Records))
	return nil
}

