package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"crypto-ledger-go/internal/models"
	"crypto-ledger-go/internal/store"
)

func setupTestService(t *testing.T) (*Service, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func testSnapshot() *models.Snapshot {
	ts := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return &models.Snapshot{
		Users: []models.User{
			{ExternalId: "30111222", Name: "Alice", Email: "alice@example.com", Validated: true, CreatedAt: ts},
			{ExternalId: "28555666", Name: "Bruno", Email: "bruno@example.com", CreatedAt: ts},
		},
		Assets: []models.Asset{
			{
				Symbol: "BTC",
				Name:   "Bitcoin",
				Price:  decimal.RequireFromString("65000.5"),
				Networks: []models.Network{
					{Id: "bitcoin", Name: "Bitcoin"},
					{Id: "lightning", Name: "Lightning Network"},
				},
			},
		},
		Balances: []models.Balance{
			{
				UserId: "30111222",
				Fiat:   decimal.RequireFromString("1234.56"),
				Assets: map[string]decimal.Decimal{"BTC": decimal.RequireFromString("0.75")},
			},
			{
				UserId: "28555666",
				Fiat:   decimal.Zero,
				Assets: map[string]decimal.Decimal{},
			},
		},
		Operations: []models.OperationRecord{
			{
				Id:        "OP00000001",
				Timestamp: ts,
				UserId:    "30111222",
				Detail:    models.FiatDeposit{Amount: decimal.RequireFromString("2000")},
			},
			{
				Id:        "OP00000002",
				Timestamp: ts.Add(time.Minute),
				UserId:    "30111222",
				Detail: models.CryptoBuy{
					Symbol:   "BTC",
					Quantity: decimal.RequireFromString("0.75"),
					Price:    decimal.RequireFromString("65000.5"),
				},
			},
		},
	}
}

func TestLoad_EmptyDatabase(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.Load(context.Background())
	if !errors.Is(err, store.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	original := testSnapshot()

	if err := service.Save(ctx, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := service.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(loaded.Users))
	}
	if loaded.Users[0].ExternalId != "30111222" || !loaded.Users[0].Validated {
		t.Errorf("first user not restored correctly: %+v", loaded.Users[0])
	}
	if loaded.Users[1].Validated {
		t.Errorf("second user should be unvalidated: %+v", loaded.Users[1])
	}

	if len(loaded.Assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(loaded.Assets))
	}
	asset := loaded.Assets[0]
	if !asset.Price.Equal(decimal.RequireFromString("65000.5")) {
		t.Errorf("expected price 65000.5, got %s", asset.Price)
	}
	if len(asset.Networks) != 2 || asset.Networks[0].Id != "bitcoin" || asset.Networks[1].Id != "lightning" {
		t.Errorf("networks not restored in order: %+v", asset.Networks)
	}

	if len(loaded.Balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(loaded.Balances))
	}
	if !loaded.Balances[0].Fiat.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("expected fiat 1234.56, got %s", loaded.Balances[0].Fiat)
	}
	if !loaded.Balances[0].Assets["BTC"].Equal(decimal.RequireFromString("0.75")) {
		t.Errorf("expected 0.75 BTC, got %s", loaded.Balances[0].Assets["BTC"])
	}

	if len(loaded.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(loaded.Operations))
	}
	buy, ok := loaded.Operations[1].Detail.(models.CryptoBuy)
	if !ok {
		t.Fatalf("expected CryptoBuy detail, got %T", loaded.Operations[1].Detail)
	}
	if !buy.Price.Equal(decimal.RequireFromString("65000.5")) {
		t.Errorf("expected pinned price 65000.5, got %s", buy.Price)
	}
	if !loaded.Operations[0].Timestamp.Equal(original.Operations[0].Timestamp) {
		t.Errorf("timestamp lost in round trip: %s vs %s",
			loaded.Operations[0].Timestamp, original.Operations[0].Timestamp)
	}
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	first := testSnapshot()
	if err := service.Save(ctx, first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := testSnapshot()
	second.Users = second.Users[:1]
	second.Operations = append(second.Operations, models.OperationRecord{
		Id:        "OP00000003",
		Timestamp: time.Date(2026, 3, 15, 13, 0, 0, 0, time.UTC),
		UserId:    "30111222",
		Detail:    models.CryptoSell{Symbol: "BTC", Quantity: decimal.RequireFromString("0.25"), Price: decimal.RequireFromString("66000")},
	})
	second.Balances = second.Balances[:1]
	if err := service.Save(ctx, second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := service.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Users) != 1 {
		t.Errorf("expected 1 user after overwrite, got %d", len(loaded.Users))
	}
	if len(loaded.Operations) != 3 {
		t.Errorf("expected 3 operations after overwrite, got %d", len(loaded.Operations))
	}
}
