package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"crypto-ledger-go/internal/clock"
	"crypto-ledger-go/internal/common"
	"crypto-ledger-go/internal/config"
	"crypto-ledger-go/internal/ident"
	"crypto-ledger-go/internal/ledger"
	"crypto-ledger-go/internal/store"

	"go.uber.org/zap"
)

type demoUser struct {
	externalId string
	name       string
	email      string
}

var demoUsers = []demoUser{
	{"30111222", "Alice Chen", "alice.chen@example.com"},
	{"28555666", "Bruno Diaz", "bruno.diaz@example.com"},
	{"33777888", "Carla Soto", "carla.soto@example.com"},
}

func seedDemoUsers(platform *ledger.Platform) (int, error) {
	created := 0
	for _, user := range demoUsers {
		userId, err := platform.RegisterUser(user.externalId, user.name, user.email)
		if err != nil {
			if errors.Is(err, ledger.ErrDuplicateUser) {
				zap.L().Info("User already registered", zap.String("external_id", user.externalId))
				continue
			}
			return created, err
		}
		if err := platform.ValidateUser(userId); err != nil {
			return created, err
		}
		zap.L().Info("Registered demo user",
			zap.String("user_id", userId),
			zap.String("name", user.name))
		created++
	}
	return created, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	withUsers := flag.Bool("demo-users", false, "Also register a set of validated demo users")
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

	platform := ledger.NewPlatform(clock.System(), ident.NewRandom())

	// Setup is additive: an existing snapshot keeps its users and history.
	snap, err := snapStore.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrNoSnapshot) {
		logger.Fatal("Failed to load snapshot", zap.Error(err))
	}
	if err == nil {
		platform.Restore(snap)
	}

	registered, err := common.SeedCatalog(platform, cfg.Ledger.AssetsFile)
	if err != nil {
		logger.Fatal("Failed to seed asset catalog", zap.Error(err))
	}
	logger.Info("Asset catalog seeded",
		zap.String("file", cfg.Ledger.AssetsFile),
		zap.Int("registered", registered))

	usersCreated := 0
	if *withUsers {
		usersCreated, err = seedDemoUsers(platform)
		if err != nil {
			logger.Fatal("Failed to seed demo users", zap.Error(err))
		}
	}

	if err := snapStore.Save(ctx, platform.Snapshot()); err != nil {
		logger.Fatal("Failed to save snapshot", zap.Error(err))
	}

	common.PrintHeader("LEDGER SETUP", common.DefaultWidth)
	fmt.Printf("Backend:            %s\n", cfg.Ledger.Backend)
	fmt.Printf("Assets registered:  %d\n", registered)
	fmt.Printf("Assets in catalog:  %d\n", len(platform.Assets()))
	fmt.Printf("Demo users created: %d\n", usersCreated)
	common.PrintFooter("Setup complete", common.DefaultWidth)
}
