package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"paybook/internal/core"
)

// FileRepository keeps the snapshot in a JSON file. Saves write a temporary
// file next to the target and rename it over, so a crash leaves either the
// old or the new document.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		return nil, errors.New("file repository requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileRepository{path: path}, nil
}

func (r *FileRepository) Load(ctx context.Context) (core.Snapshot, bool, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.DebugContext(ctx, "No snapshot file", "path", r.path)
		return core.Snapshot{}, false, nil
	}
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("read snapshot file: %w", err)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("%s: %w", r.path, err)
	}
	return snap, true, nil
}

func (r *FileRepository) Save(ctx context.Context, snap core.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved to file", "path", r.path, "records", len(snap.Records))
	return nil
}

func (r *FileRepository) Close() error { return nil }
