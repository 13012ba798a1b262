package ledger

import (
	"crypto-ledger-go/internal/clock"
	"crypto-ledger-go/internal/ident"
	"crypto-ledger-go/internal/models"
)

// operationIdLength sizes the identifiers minted for log records.
const operationIdLength = 10

// OperationLog is the append-only record of every accepted operation,
// in insertion order. There is no removal or edit path.
type OperationLog struct {
	clock   clock.Clock
	ids     ident.Generator
	records []models.OperationRecord
}

func NewOperationLog(c clock.Clock, ids ident.Generator) *OperationLog {
	return &OperationLog{clock: c, ids: ids}
}

// Append stamps and stores a new record, returning a copy. Called only
// as the final committed step of a successful operation.
func (l *OperationLog) Append(userId string, detail models.OperationDetail) models.OperationRecord {
	rec := models.OperationRecord{
		Id:        l.ids.NewID(operationIdLength),
		Timestamp: l.clock.Now(),
		UserId:    userId,
		Detail:    detail,
	}
	l.records = append(l.records, rec)
	return rec
}

// All returns the full log in insertion order.
func (l *OperationLog) All() []models.OperationRecord {
	out := make([]models.OperationRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *OperationLog) Len() int { return len(l.records) }

// restore replaces the log contents from a snapshot.
func (l *OperationLog) restore(records []models.OperationRecord) {
	l.records = make([]models.OperationRecord, len(records))
	copy(l.records, records)
}
