package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"crypto-ledger-go/internal/database"
	"crypto-ledger-go/internal/models"
	"crypto-ledger-go/internal/snapshot"
	"crypto-ledger-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// OpenSnapshotStore picks the persistence backend named by the config.
// "sqlite" keeps the ledger in a local database file, "file" in a single
// JSON document.
func OpenSnapshotStore(ctx context.Context, cfg *models.Config) (store.SnapshotStore, error) {
	switch cfg.Ledger.Backend {
	case "sqlite":
		return database.NewService(ctx, cfg.Database)
	case "file":
		return snapshot.NewFileStore(cfg.Ledger.SnapshotPath), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend: %q", cfg.Ledger.Backend)
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
