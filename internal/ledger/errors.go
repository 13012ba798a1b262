package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors classifying every precondition failure. Callers map
// these to user-facing messages; the core only classifies.
var (
	ErrDuplicateUser      = errors.New("user already registered")
	ErrUnknownUser        = errors.New("user not registered")
	ErrUserNotValidated   = errors.New("user not validated")
	ErrDuplicateAsset     = errors.New("asset already listed")
	ErrUnknownAsset       = errors.New("asset not listed")
	ErrUnsupportedNetwork = errors.New("asset does not settle on network")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("amount must be positive")

	// ErrNoBalanceRecord indicates a user without a balance record.
	// Registration always opens one, so observing this means a prior
	// bug, not a business condition.
	ErrNoBalanceRecord = errors.New("no balance record for user")
)

// FiatSymbol names the single fiat currency in shortfall diagnostics.
const FiatSymbol = "fiat"

// InsufficientFundsError carries the shortfall details for caller
// diagnostics. errors.Is(err, ErrInsufficientFunds) matches it.
type InsufficientFundsError struct {
	Asset     string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s: requested %s, available %s",
		e.Asset, e.Requested.String(), e.Available.String())
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }
