package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "ledger.db" {
		t.Errorf("expected default database path ledger.db, got %s", cfg.Database.Path)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Ledger.Backend != "sqlite" {
		t.Errorf("expected default backend sqlite, got %s", cfg.Ledger.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout 10s, got %s", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/test.db")
	t.Setenv("LEDGER_BACKEND", "file")
	t.Setenv("SNAPSHOT_PATH", "/tmp/snap.json")
	t.Setenv("DB_PING_TIMEOUT", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("expected overridden path, got %s", cfg.Database.Path)
	}
	if cfg.Ledger.Backend != "file" {
		t.Errorf("expected backend file, got %s", cfg.Ledger.Backend)
	}
	if cfg.Ledger.SnapshotPath != "/tmp/snap.json" {
		t.Errorf("expected overridden snapshot path, got %s", cfg.Ledger.SnapshotPath)
	}
	if cfg.Database.PingTimeout != 2*time.Second {
		t.Errorf("expected ping timeout 2s, got %s", cfg.Database.PingTimeout)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "etcd")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DB_PING_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}
