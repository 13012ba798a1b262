package models

import "time"

// Config is the full runtime configuration, loaded from the environment.
type Config struct {
	Database DatabaseConfig
	Ledger   LedgerConfig
	Server   ServerConfig
}

// DatabaseConfig tunes the SQLite snapshot backend.
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// LedgerConfig selects the snapshot backend and seed inputs.
type LedgerConfig struct {
	// Backend is "sqlite" or "file".
	Backend      string
	SnapshotPath string
	AssetsFile   string
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}
