package ledger

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crypto-ledger-go/internal/clock"
	"crypto-ledger-go/internal/ident"
	"crypto-ledger-go/internal/models"
)

// transferRefLength sizes the simulated on-chain references minted for
// outbound sends.
const transferRefLength = 20

// Platform owns the user directory, asset catalog, balance store and
// operation log, and is the sole entry point for mutation. Every public
// operation validates all preconditions first and only then applies its
// effects and appends one log record, so a failure never leaves a
// partial mutation.
//
// A single mutex makes each operation an indivisible critical section
// for concurrent callers.
type Platform struct {
	mu        sync.Mutex
	directory *UserDirectory
	catalog   *AssetCatalog
	balances  *BalanceStore
	log       *OperationLog
	ids       ident.Generator
}

func NewPlatform(c clock.Clock, ids ident.Generator) *Platform {
	return &Platform{
		directory: NewUserDirectory(),
		catalog:   NewAssetCatalog(),
		balances:  NewBalanceStore(),
		log:       NewOperationLog(c, ids),
		ids:       ids,
	}
}

// RegisterUser creates an unvalidated user and opens a zeroed balance
// seeded with every asset currently listed.
func (p *Platform) RegisterUser(externalId, name, email string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userId, err := p.directory.Register(externalId, name, email, p.log.clock.Now())
	if err != nil {
		return "", err
	}
	p.balances.OpenFor(userId, p.catalog.KnownSymbols())

	zap.L().Info("User registered",
		zap.String("user_id", userId),
		zap.String("name", name))
	return userId, nil
}

// ValidateUser marks the user as having passed the identity check that
// gates movement operations.
func (p *Platform) ValidateUser(userId string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.directory.MarkValidated(userId); err != nil {
		return err
	}
	zap.L().Info("User validated", zap.String("user_id", userId))
	return nil
}

// RegisterAsset lists a new asset. Existing balances are not extended
// retroactively; they read the new symbol as zero until first credited.
func (p *Platform) RegisterAsset(asset models.Asset) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.catalog.Register(asset); err != nil {
		return err
	}
	zap.L().Info("Asset listed",
		zap.String("symbol", asset.Symbol),
		zap.String("price", asset.Price.String()),
		zap.Int("networks", len(asset.Networks)))
	return nil
}

// DepositFiat credits fiat to a validated user.
func (p *Platform) DepositFiat(userId string, amount decimal.Decimal) (models.OperationRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !amount.IsPositive() {
		return models.OperationRecord{}, ErrInvalidAmount
	}
	if err := p.checkUser(userId); err != nil {
		return models.OperationRecord{}, err
	}

	if err := p.balances.CreditFiat(userId, amount); err != nil {
		return models.OperationRecord{}, p.internalErr("credit fiat", err)
	}
	return p.commit(userId, models.FiatDeposit{Amount: amount}), nil
}

// WithdrawFiat debits fiat from a validated user, paid out over rail.
func (p *Platform) WithdrawFiat(userId string, amount decimal.Decimal, rail string) (models.OperationRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !amount.IsPositive() {
		return models.OperationRecord{}, ErrInvalidAmount
	}
	if err := p.checkUser(userId); err != nil {
		return models.OperationRecord{}, err
	}
	fiat, err := p.balances.FiatOf(userId)
	if err != nil {
		return models.OperationRecord{}, err
	}
	if fiat.LessThan(amount) {
		return models.OperationRecord{}, &InsufficientFundsError{
			Asset: FiatSymbol, Requested: amount, Available: fiat,
		}
	}

	if err := p.balances.DebitFiat(userId, amount); err != nil {
		return models.OperationRecord{}, p.internalErr("debit fiat", err)
	}
	return p.commit(userId, models.FiatWithdrawal{Amount: amount, Rail: rail}), nil
}

// BuyCrypto converts qty*price fiat into qty units of the asset. The
// price is quoted once and used for the check, the debit and the log
// record alike.
func (p *Platform) BuyCrypto(userId, symbol string, qty decimal.Decimal) (models.OperationRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !qty.IsPositive() {
		return models.OperationRecord{}, ErrInvalidAmount
	}
	if err := p.checkUser(userId); err != nil {
		return models.OperationRecord{}, err
	}
	price, err := p.catalog.Quote(symbol)
	if err != nil {
		return models.OperationRecord{}, err
	}
	cost := qty.Mul(price)
	fiat, err := p.balances.FiatOf(userId)
	if err != nil {
		return models.OperationRecord{}, err
	}
	if fiat.LessThan(cost) {
		return models.OperationRecord{}, &InsufficientFundsError{
			Asset: FiatSymbol, Requested: cost, Available: fiat,
		}
	}

	if err := p.balances.DebitFiat(userId, cost); err != nil {
		return models.OperationRecord{}, p.internalErr("debit fiat", err)
	}
	if err := p.balances.CreditAsset(userId, symbol, qty); err != nil {
		return models.OperationRecord{}, p.internalErr("credit asset", err)
	}
	return p.commit(userId, models.CryptoBuy{Symbol: symbol, Quantity: qty, Price: price}), nil
}

// SellCrypto converts qty units of the asset back into fiat at the
// pinned price.
func (p *Platform) SellCrypto(userId, symbol string, qty decimal.Decimal) (models.OperationRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !qty.IsPositive() {
		return models.OperationRecord{}, ErrInvalidAmount
	}
	if !p.directory.Exists(userId) {
		return models.OperationRecord{}, ErrUnknownUser
	}
	price, err := p.catalog.Quote(symbol)
	if err != nil {
		return models.OperationRecord{}, err
	}
	held, err := p.balances.AssetOf(userId, symbol)
	if err != nil {
		return models.OperationRecord{}, err
	}
	if held.LessThan(qty) {
		return models.OperationRecord{}, &InsufficientFundsError{
			Asset: symbol, Requested: qty, Available: held,
		}
	}

	if err := p.balances.DebitAsset(userId, symbol, qty); err != nil {
		return models.OperationRecord{}, p.internalErr("debit asset", err)
	}
	if err := p.balances.CreditFiat(userId, qty.Mul(price)); err != nil {
		return models.OperationRecord{}, p.internalErr("credit fiat", err)
	}
	return p.commit(userId, models.CryptoSell{Symbol: symbol, Quantity: qty, Price: price}), nil
}

// SendCrypto debits qty units for an outbound transfer on the network,
// minting a simulated transfer reference.
func (p *Platform) SendCrypto(userId, symbol string, qty decimal.Decimal, networkId string) (models.OperationRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !qty.IsPositive() {
		return models.OperationRecord{}, ErrInvalidAmount
	}
	if err := p.checkUser(userId); err != nil {
		return models.OperationRecord{}, err
	}
	price, err := p.catalog.Quote(symbol)
	if err != nil {
		return models.OperationRecord{}, err
	}
	held, err := p.balances.AssetOf(userId, symbol)
	if err != nil {
		return models.OperationRecord{}, err
	}
	if held.LessThan(qty) {
		return models.OperationRecord{}, &InsufficientFundsError{
			Asset: symbol, Requested: qty, Available: held,
		}
	}
	supported, err := p.catalog.SupportsNetwork(symbol, networkId)
	if err != nil {
		return models.OperationRecord{}, err
	}
	if !supported {
		return models.OperationRecord{}, ErrUnsupportedNetwork
	}

	if err := p.balances.DebitAsset(userId, symbol, qty); err != nil {
		return models.OperationRecord{}, p.internalErr("debit asset", err)
	}
	detail := models.CryptoSend{
		Symbol:      symbol,
		Quantity:    qty,
		Price:       price,
		Network:     networkId,
		TransferRef: p.ids.NewID(transferRefLength),
	}
	return p.commit(userId, detail), nil
}

// ReceiveCrypto credits qty units arriving from the network.
func (p *Platform) ReceiveCrypto(userId, symbol string, qty decimal.Decimal, networkId string) (models.OperationRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !qty.IsPositive() {
		return models.OperationRecord{}, ErrInvalidAmount
	}
	if err := p.checkUser(userId); err != nil {
		return models.OperationRecord{}, err
	}
	price, err := p.catalog.Quote(symbol)
	if err != nil {
		return models.OperationRecord{}, err
	}
	supported, err := p.catalog.SupportsNetwork(symbol, networkId)
	if err != nil {
		return models.OperationRecord{}, err
	}
	if !supported {
		return models.OperationRecord{}, ErrUnsupportedNetwork
	}

	if err := p.balances.CreditAsset(userId, symbol, qty); err != nil {
		return models.OperationRecord{}, p.internalErr("credit asset", err)
	}
	detail := models.CryptoReceive{Symbol: symbol, Quantity: qty, Price: price, Network: networkId}
	return p.commit(userId, detail), nil
}

// FiatOf returns the user's current fiat balance.
func (p *Platform) FiatOf(userId string) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balances.FiatOf(userId)
}

// AssetOf returns the user's current quantity of the asset.
func (p *Platform) AssetOf(userId, symbol string) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balances.AssetOf(userId, symbol)
}

// Operations returns the full operation log in insertion order.
func (p *Platform) Operations() []models.OperationRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.log.All()
}

// Users returns all registered users in registration order.
func (p *Platform) Users() []models.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.directory.Users()
}

// Assets returns the full catalog in registration order.
func (p *Platform) Assets() []models.Asset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog.Assets()
}

// Snapshot exports the full platform state for persistence.
func (p *Platform) Snapshot() *models.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &models.Snapshot{
		Users:      p.directory.Users(),
		Assets:     p.catalog.Assets(),
		Balances:   p.balances.Balances(),
		Operations: p.log.All(),
	}
}

// Restore replaces the full platform state from a snapshot.
func (p *Platform) Restore(snap *models.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.directory.restore(snap.Users)
	p.catalog.restore(snap.Assets)
	p.balances.restore(snap.Balances)
	p.log.restore(snap.Operations)
	zap.L().Info("Platform state restored",
		zap.Int("users", len(snap.Users)),
		zap.Int("assets", len(snap.Assets)),
		zap.Int("operations", len(snap.Operations)))
}

// checkUser runs the identity gate in fixed order: existence first,
// then validation.
func (p *Platform) checkUser(userId string) error {
	if !p.directory.Exists(userId) {
		return ErrUnknownUser
	}
	if !p.directory.IsValidated(userId) {
		return ErrUserNotValidated
	}
	return nil
}

// commit appends the log record for an operation whose effects have
// been applied.
func (p *Platform) commit(userId string, detail models.OperationDetail) models.OperationRecord {
	rec := p.log.Append(userId, detail)
	zap.L().Info("Operation committed",
		zap.String("operation_id", rec.Id),
		zap.String("user_id", userId),
		zap.String("kind", detail.Kind()))
	return rec
}

// internalErr wraps a mutation-phase failure. With all preconditions
// checked beforehand these are unreachable; seeing one means a bug.
func (p *Platform) internalErr(step string, err error) error {
	zap.L().Error("Mutation failed after preconditions passed",
		zap.String("step", step),
		zap.Error(err))
	return fmt.Errorf("%s after checks passed: %w", step, err)
}
