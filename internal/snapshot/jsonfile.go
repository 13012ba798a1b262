package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"crypto-ledger-go/internal/models"
	"crypto-ledger-go/internal/store"

	"go.uber.org/zap"
)

// Compile-time check: *FileStore must satisfy store.SnapshotStore.
var _ store.SnapshotStore = (*FileStore)(nil)

// FileStore persists snapshots as a single JSON document. The write is
// staged to a temp file and renamed so a crash mid-save never leaves a
// truncated snapshot behind.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Save(_ context.Context, snap *models.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("unable to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("unable to replace %s: %w", f.path, err)
	}

	zap.L().Info("Snapshot written",
		zap.String("path", f.path),
		zap.Int("bytes", len(data)),
		zap.Int("operations", len(snap.Operations)))
	return nil
}

func (f *FileStore) Load(_ context.Context) (*models.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNoSnapshot
		}
		return nil, fmt.Errorf("unable to read %s: %w", f.path, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", filepath.Base(f.path), err)
	}

	zap.L().Info("Snapshot read",
		zap.String("path", f.path),
		zap.Int("users", len(snap.Users)),
		zap.Int("operations", len(snap.Operations)))
	return &snap, nil
}

func (f *FileStore) Close() {}
