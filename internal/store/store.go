package store

import (
	"context"
	"errors"

	"crypto-ledger-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	// ErrNoSnapshot means the backend holds no saved state yet.
	ErrNoSnapshot = errors.New("no snapshot stored")
)

// SnapshotStore persists and reloads the full platform state at
// process boundaries. Backends must round-trip every table exactly,
// including the order of the operation log.
type SnapshotStore interface {
	Save(ctx context.Context, snap *models.Snapshot) error
	Load(ctx context.Context) (*models.Snapshot, error)
	Close()
}
