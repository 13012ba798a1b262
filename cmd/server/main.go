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

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"crypto-ledger-go/internal/api"
	"crypto-ledger-go/internal/clock"
	"crypto-ledger-go/internal/common"
	"crypto-ledger-go/internal/config"
	"crypto-ledger-go/internal/ident"
	"crypto-ledger-go/internal/ledger"
	"crypto-ledger-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	snapStore, err := common.OpenSnapshotStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open snapshot store", zap.Error(err))
	}
	defer snapStore.Close()

	platform := ledger.NewPlatform(clock.System(), ident.NewRandom())

	snap, err := snapStore.Load(ctx)
	switch {
	case err == nil:
		platform.Restore(snap)
		logger.Info("Ledger restored from snapshot",
			zap.Int("users", len(snap.Users)),
			zap.Int("assets", len(snap.Assets)),
			zap.Int("operations", len(snap.Operations)))
	case errors.Is(err, store.ErrNoSnapshot):
		logger.Info("No snapshot found, starting with an empty ledger")
	default:
		logger.Fatal("Failed to load snapshot", zap.Error(err))
	}

	router := api.NewRouter(api.NewHandler(platform))
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", cfg.Server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatal("Server failed", zap.Error(err))
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
		if err := server.Close(); err != nil {
			logger.Error("Forced close failed", zap.Error(err))
		}
	}

	// Persist the ledger after the listener stops accepting requests so
	// the snapshot reflects every committed operation.
	if err := snapStore.Save(ctx, platform.Snapshot()); err != nil {
		logger.Error("Failed to save snapshot", zap.Error(err))
	} else {
		logger.Info("Ledger snapshot saved")
	}
}
