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

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (external_id, name, email, validated, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetUsers = `
		SELECT external_id, name, email, validated, created_at
		FROM users
		ORDER BY position`

	// Asset queries
	queryInsertAsset = `
		INSERT INTO assets (symbol, name, price, position) VALUES (?, ?, ?, ?)`

	queryGetAssets = `
		SELECT symbol, name, price
		FROM assets
		ORDER BY position`

	queryInsertAssetNetwork = `
		INSERT INTO asset_networks (id, symbol, network_id, network_name, position)
		VALUES (?, ?, ?, ?, ?)`

	queryGetAssetNetworks = `
		SELECT symbol, network_id, network_name
		FROM asset_networks
		ORDER BY symbol, position`

	// Balance queries
	queryInsertBalance = `
		INSERT INTO balances (id, user_id, fiat, position) VALUES (?, ?, ?, ?)`

	queryGetBalances = `
		SELECT user_id, fiat
		FROM balances
		ORDER BY position`

	queryInsertAssetBalance = `
		INSERT INTO asset_balances (id, user_id, symbol, quantity)
		VALUES (?, ?, ?, ?)`

	queryGetAssetBalances = `
		SELECT user_id, symbol, quantity
		FROM asset_balances`

	// Operation queries
	queryInsertOperation = `
		INSERT INTO operations (id, user_id, kind, detail, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetOperations = `
		SELECT id, user_id, kind, detail, created_at
		FROM operations
		ORDER BY position`
)
