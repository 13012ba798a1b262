package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"crypto-ledger-go/internal/clock"
	"crypto-ledger-go/internal/common"
	"crypto-ledger-go/internal/config"
	"crypto-ledger-go/internal/ident"
	"crypto-ledger-go/internal/ledger"
	"crypto-ledger-go/internal/models"

	"go.uber.org/zap"
)

func matches(record models.OperationRecord, userFilter, kindFilter string, after *time.Time) bool {
	if userFilter != "" && record.UserId != userFilter {
		return false
	}
	if kindFilter != "" && record.Detail.Kind() != kindFilter {
		return false
	}
	if after != nil && !clock.IsAfter(record.Timestamp, *after) {
		return false
	}
	return true
}

func printRecord(record models.OperationRecord, isLast bool) {
	fmt.Printf("%s %s  %-10s  user=%s\n",
		common.BoxPrefix(isLast),
		record.Timestamp.Format("2006-01-02 15:04:05"),
		record.Id,
		record.UserId)
	fmt.Printf("%s   %s\n", common.BoxDetailPrefix(isLast), record.Detail.Describe())
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "Filter by a specific user id (optional)")
	kindFlag := flag.String("kind", "", "Filter by operation kind, e.g. crypto_buy (optional)")
	afterFlag := flag.String("after", "", "Show only operations after this day, YYYY-MM-DD (optional)")
	limitFlag := flag.Int("limit", 0, "Show only the most recent N operations (0 = all)")
	flag.Parse()

	var after *time.Time
	if *afterFlag != "" {
		day, err := time.Parse("2006-01-02", *afterFlag)
		if err != nil {
			logger.Fatal("Invalid -after value, want YYYY-MM-DD", zap.Error(err))
		}
		after = &day
	}

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

	var records []models.OperationRecord
	for _, record := range platform.Operations() {
		if matches(record, *userFlag, *kindFlag, after) {
			records = append(records, record)
		}
	}
	if *limitFlag > 0 && len(records) > *limitFlag {
		records = records[len(records)-*limitFlag:]
	}

	common.PrintHeader("OPERATION HISTORY", common.DefaultWidth)
	if len(records) == 0 {
		fmt.Println("No operations match the given filters.")
	}
	for i, record := range records {
		printRecord(record, i == len(records)-1)
	}
	common.PrintFooter(fmt.Sprintf("SUMMARY: %d operations shown", len(records)), common.DefaultWidth)
}
