package ledger

import (
	"github.com/shopspring/decimal"

	"crypto-ledger-go/internal/models"
)

// balanceRecord holds one user's fiat amount and per-asset quantities.
// Symbols absent from the map are implicitly zero: records predate
// assets registered after the user, and credits create entries on first
// touch.
type balanceRecord struct {
	fiat   decimal.Decimal
	assets map[string]decimal.Decimal
}

// BalanceStore holds every user's balance record and enforces the
// non-negativity invariant on each mutation. Mutating calls are only
// made by the platform after the enclosing operation's preconditions
// have all passed.
type BalanceStore struct {
	records map[string]*balanceRecord
	order   []string
}

func NewBalanceStore() *BalanceStore {
	return &BalanceStore{records: make(map[string]*balanceRecord)}
}

// OpenFor creates a zeroed record for a new user, seeded with the
// symbols currently known to the catalog. Called once at registration.
func (s *BalanceStore) OpenFor(userId string, initialSymbols []string) {
	assets := make(map[string]decimal.Decimal, len(initialSymbols))
	for _, sym := range initialSymbols {
		assets[sym] = decimal.Zero
	}
	s.records[userId] = &balanceRecord{fiat: decimal.Zero, assets: assets}
	s.order = append(s.order, userId)
}

func (s *BalanceStore) FiatOf(userId string) (decimal.Decimal, error) {
	rec, ok := s.records[userId]
	if !ok {
		return decimal.Zero, ErrNoBalanceRecord
	}
	return rec.fiat, nil
}

// AssetOf returns the user's quantity of the asset. A symbol the record
// has never held reads as zero, not as an error.
func (s *BalanceStore) AssetOf(userId, symbol string) (decimal.Decimal, error) {
	rec, ok := s.records[userId]
	if !ok {
		return decimal.Zero, ErrNoBalanceRecord
	}
	return rec.assets[symbol], nil
}

func (s *BalanceStore) CreditFiat(userId string, amount decimal.Decimal) error {
	rec, ok := s.records[userId]
	if !ok {
		return ErrNoBalanceRecord
	}
	rec.fiat = rec.fiat.Add(amount)
	return nil
}

// DebitFiat fails, changing nothing, if amount exceeds the current
// fiat balance.
func (s *BalanceStore) DebitFiat(userId string, amount decimal.Decimal) error {
	rec, ok := s.records[userId]
	if !ok {
		return ErrNoBalanceRecord
	}
	if rec.fiat.LessThan(amount) {
		return &InsufficientFundsError{Asset: FiatSymbol, Requested: amount, Available: rec.fiat}
	}
	rec.fiat = rec.fiat.Sub(amount)
	return nil
}

func (s *BalanceStore) CreditAsset(userId, symbol string, qty decimal.Decimal) error {
	rec, ok := s.records[userId]
	if !ok {
		return ErrNoBalanceRecord
	}
	rec.assets[symbol] = rec.assets[symbol].Add(qty)
	return nil
}

// DebitAsset fails, changing nothing, if qty exceeds the current
// quantity. The guard reads the balance at the moment of the call.
func (s *BalanceStore) DebitAsset(userId, symbol string, qty decimal.Decimal) error {
	rec, ok := s.records[userId]
	if !ok {
		return ErrNoBalanceRecord
	}
	held := rec.assets[symbol]
	if held.LessThan(qty) {
		return &InsufficientFundsError{Asset: symbol, Requested: qty, Available: held}
	}
	rec.assets[symbol] = held.Sub(qty)
	return nil
}

// Balances returns every record in open order, for snapshots.
func (s *BalanceStore) Balances() []models.Balance {
	out := make([]models.Balance, 0, len(s.order))
	for _, userId := range s.order {
		rec := s.records[userId]
		assets := make(map[string]decimal.Decimal, len(rec.assets))
		for sym, qty := range rec.assets {
			assets[sym] = qty
		}
		out = append(out, models.Balance{UserId: userId, Fiat: rec.fiat, Assets: assets})
	}
	return out
}

// restore replaces the store contents from a snapshot.
func (s *BalanceStore) restore(balances []models.Balance) {
	s.records = make(map[string]*balanceRecord, len(balances))
	s.order = s.order[:0]
	for _, b := range balances {
		assets := make(map[string]decimal.Decimal, len(b.Assets))
		for sym, qty := range b.Assets {
			assets[sym] = qty
		}
		s.records[b.UserId] = &balanceRecord{fiat: b.Fiat, assets: assets}
		s.order = append(s.order, b.UserId)
	}
}
