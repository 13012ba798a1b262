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
	"flag"
	"fmt"

	"crypto-ledger-go/internal/clock"
	"crypto-ledger-go/internal/common"
	"crypto-ledger-go/internal/config"
	"crypto-ledger-go/internal/ident"
	"crypto-ledger-go/internal/ledger"
	"crypto-ledger-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers      int
	usersWithAssets int
	totalPositions  int
}

func kycLabel(validated bool) string {
	if validated {
		return "validated"
	}
	return "pending"
}

func printUserHeader(user models.User) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  ID: %s  KYC: %s\n", user.ExternalId, kycLabel(user.Validated))
	common.PrintBoxSeparator(78)
}

func printUserBalances(platform *ledger.Platform, user models.User) (int, error) {
	fiat, err := platform.FiatOf(user.ExternalId)
	if err != nil {
		return 0, err
	}

	type position struct {
		symbol string
		amount string
	}
	positions := []position{{ledger.FiatSymbol, fiat.StringFixed(2)}}

	for _, asset := range platform.Assets() {
		qty, err := platform.AssetOf(user.ExternalId, asset.Symbol)
		if err != nil {
			return 0, err
		}
		if !qty.IsZero() {
			positions = append(positions, position{asset.Symbol, qty.String()})
		}
	}

	printUserHeader(user)
	for i, pos := range positions {
		fmt.Printf("%s %-10s: %20s\n", common.BoxPrefix(i == len(positions)-1), pos.symbol, pos.amount)
	}

	return len(positions) - 1, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "Filter by a specific user id (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	snapStore, err := common.OpenSnapshotStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open snapshot store", zap.Error(err))
	}
	defer snapStore.Close()

	snap, err := snapStore.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load snapshot", zap.Error(err))
	}

	platform := ledger.NewPlatform(clock.System(), ident.NewRandom())
	platform.Restore(snap)

	common.PrintHeader("USER BALANCE REPORT", common.DefaultWidth)

	stats := balanceStats{}
	for _, user := range platform.Users() {
		if *userFlag != "" && user.ExternalId != *userFlag {
			continue
		}
		stats.totalUsers++

		positions, err := printUserBalances(platform, user)
		if err != nil {
			logger.Error("Failed to read balances",
				zap.String("user_id", user.ExternalId),
				zap.Error(err))
			continue
		}
		if positions > 0 {
			stats.usersWithAssets++
			stats.totalPositions += positions
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d users, %d holding crypto (%d positions)",
		stats.totalUsers, stats.usersWithAssets, stats.totalPositions)
	common.PrintFooter(summary, common.DefaultWidth)
}
