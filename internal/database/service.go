/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crypto-ledger-go/internal/models"
	"crypto-ledger-go/internal/store"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.SnapshotStore.
var _ store.SnapshotStore = (*Service)(nil)

// Service is the SQLite snapshot backend. Amounts are stored as decimal
// strings, never floats. Save replaces the stored snapshot in a single
// sql transaction; readers either see the old state or the new one.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		external_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		validated BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS assets (
		symbol TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS asset_networks (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL REFERENCES assets(symbol) ON DELETE CASCADE,
		network_id TEXT NOT NULL,
		network_name TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS balances (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(external_id) ON DELETE CASCADE,
		fiat TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS asset_balances (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		quantity TEXT NOT NULL,
		UNIQUE(user_id, symbol)
	);

	CREATE TABLE IF NOT EXISTS operations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		detail TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_asset_networks_symbol ON asset_networks(symbol);
	CREATE INDEX IF NOT EXISTS idx_asset_balances_user ON asset_balances(user_id);
	CREATE INDEX IF NOT EXISTS idx_operations_user ON operations(user_id);
	CREATE INDEX IF NOT EXISTS idx_operations_position ON operations(position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the stored snapshot with snap.
func (s *Service) Save(ctx context.Context, snap *models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"asset_balances", "balances", "operations", "asset_networks", "assets", "users"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, u := range snap.Users {
		_, err := tx.ExecContext(ctx, queryInsertUser,
			u.ExternalId, u.Name, u.Email, u.Validated, u.CreatedAt, i)
		if err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.ExternalId, err)
		}
	}

	for i, a := range snap.Assets {
		if _, err := tx.ExecContext(ctx, queryInsertAsset, a.Symbol, a.Name, a.Price.String(), i); err != nil {
			return fmt.Errorf("failed to insert asset %s: %w", a.Symbol, err)
		}
		for j, n := range a.Networks {
			_, err := tx.ExecContext(ctx, queryInsertAssetNetwork,
				uuid.New().String(), a.Symbol, n.Id, n.Name, j)
			if err != nil {
				return fmt.Errorf("failed to insert network %s for %s: %w", n.Id, a.Symbol, err)
			}
		}
	}

	for i, b := range snap.Balances {
		_, err := tx.ExecContext(ctx, queryInsertBalance,
			uuid.New().String(), b.UserId, b.Fiat.String(), i)
		if err != nil {
			return fmt.Errorf("failed to insert balance for %s: %w", b.UserId, err)
		}
		for sym, qty := range b.Assets {
			_, err := tx.ExecContext(ctx, queryInsertAssetBalance,
				uuid.New().String(), b.UserId, sym, qty.String())
			if err != nil {
				return fmt.Errorf("failed to insert %s balance for %s: %w", sym, b.UserId, err)
			}
		}
	}

	for i, op := range snap.Operations {
		detail, err := models.EncodeDetail(op.Detail)
		if err != nil {
			return fmt.Errorf("failed to encode operation %s: %w", op.Id, err)
		}
		_, err = tx.ExecContext(ctx, queryInsertOperation,
			op.Id, op.UserId, op.Detail.Kind(), string(detail), op.Timestamp, i)
		if err != nil {
			return fmt.Errorf("failed to insert operation %s: %w", op.Id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	zap.L().Info("Snapshot saved",
		zap.Int("users", len(snap.Users)),
		zap.Int("assets", len(snap.Assets)),
		zap.Int("balances", len(snap.Balances)),
		zap.Int("operations", len(snap.Operations)))
	return nil
}

// Load reconstructs the stored snapshot. Returns store.ErrNoSnapshot
// when no state has ever been saved.
func (s *Service) Load(ctx context.Context) (*models.Snapshot, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	assets, err := s.loadAssets(ctx)
	if err != nil {
		return nil, err
	}
	balances, err := s.loadBalances(ctx)
	if err != nil {
		return nil, err
	}
	operations, err := s.loadOperations(ctx)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 && len(assets) == 0 && len(operations) == 0 {
		return nil, store.ErrNoSnapshot
	}

	zap.L().Info("Snapshot loaded",
		zap.Int("users", len(users)),
		zap.Int("assets", len(assets)),
		zap.Int("operations", len(operations)))

	return &models.Snapshot{
		Users:      users,
		Assets:     assets,
		Balances:   balances,
		Operations: operations,
	}, nil
}

func (s *Service) loadUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUsers)
	if err != nil {
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ExternalId, &u.Name, &u.Email, &u.Validated, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (s *Service) loadAssets(ctx context.Context) ([]models.Asset, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAssets)
	if err != nil {
		return nil, fmt.Errorf("unable to query assets: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	assets := []models.Asset{}
	index := make(map[string]int)
	for rows.Next() {
		var a models.Asset
		var priceStr string
		if err := rows.Scan(&a.Symbol, &a.Name, &priceStr); err != nil {
			return nil, fmt.Errorf("unable to scan asset row: %w", err)
		}
		a.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price %q: %w", priceStr, err)
		}
		index[a.Symbol] = len(assets)
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset rows: %w", err)
	}

	netRows, err := s.db.QueryContext(ctx, queryGetAssetNetworks)
	if err != nil {
		return nil, fmt.Errorf("unable to query asset networks: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(netRows)

	for netRows.Next() {
		var symbol string
		var n models.Network
		if err := netRows.Scan(&symbol, &n.Id, &n.Name); err != nil {
			return nil, fmt.Errorf("unable to scan network row: %w", err)
		}
		i, ok := index[symbol]
		if !ok {
			return nil, fmt.Errorf("network row references unknown asset %q", symbol)
		}
		assets[i].Networks = append(assets[i].Networks, n)
	}
	if err := netRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating network rows: %w", err)
	}
	return assets, nil
}

func (s *Service) loadBalances(ctx context.Context) ([]models.Balance, error) {
	rows, err := s.db.QueryContext(ctx, queryGetBalances)
	if err != nil {
		return nil, fmt.Errorf("unable to query balances: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	balances := []models.Balance{}
	index := make(map[string]int)
	for rows.Next() {
		var b models.Balance
		var fiatStr string
		if err := rows.Scan(&b.UserId, &fiatStr); err != nil {
			return nil, fmt.Errorf("unable to scan balance row: %w", err)
		}
		b.Fiat, err = decimal.NewFromString(fiatStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fiat balance %q: %w", fiatStr, err)
		}
		b.Assets = make(map[string]decimal.Decimal)
		index[b.UserId] = len(balances)
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}

	qtyRows, err := s.db.QueryContext(ctx, queryGetAssetBalances)
	if err != nil {
		return nil, fmt.Errorf("unable to query asset balances: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(qtyRows)

	for qtyRows.Next() {
		var userId, symbol, qtyStr string
		if err := qtyRows.Scan(&userId, &symbol, &qtyStr); err != nil {
			return nil, fmt.Errorf("unable to scan asset balance row: %w", err)
		}
		qty, err := decimal.NewFromString(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse quantity %q: %w", qtyStr, err)
		}
		i, ok := index[userId]
		if !ok {
			return nil, fmt.Errorf("asset balance row references unknown user %q", userId)
		}
		balances[i].Assets[symbol] = qty
	}
	if err := qtyRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset balance rows: %w", err)
	}
	return balances, nil
}

func (s *Service) loadOperations(ctx context.Context) ([]models.OperationRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryGetOperations)
	if err != nil {
		return nil, fmt.Errorf("unable to query operations: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	operations := []models.OperationRecord{}
	for rows.Next() {
		var rec models.OperationRecord
		var kind, detailStr string
		var createdAt time.Time
		if err := rows.Scan(&rec.Id, &rec.UserId, &kind, &detailStr, &createdAt); err != nil {
			return nil, fmt.Errorf("unable to scan operation row: %w", err)
		}
		rec.Timestamp = createdAt
		rec.Detail, err = models.DecodeDetail(kind, []byte(detailStr))
		if err != nil {
			return nil, fmt.Errorf("failed to decode operation %s: %w", rec.Id, err)
		}
		operations = append(operations, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation rows: %w", err)
	}
	return operations, nil
}
