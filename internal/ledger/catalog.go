package ledger

import (
	"github.com/shopspring/decimal"

	"crypto-ledger-go/internal/models"
)

// AssetCatalog is the registry of tradable assets, keyed by symbol.
// The platform consults it read-only to resolve prices and network
// eligibility.
type AssetCatalog struct {
	assets map[string]*models.Asset
	order  []string
}

func NewAssetCatalog() *AssetCatalog {
	return &AssetCatalog{assets: make(map[string]*models.Asset)}
}

// Register lists a new asset. The symbol must be unique.
func (c *AssetCatalog) Register(asset models.Asset) error {
	if _, ok := c.assets[asset.Symbol]; ok {
		return ErrDuplicateAsset
	}
	a := asset
	c.assets[a.Symbol] = &a
	c.order = append(c.order, a.Symbol)
	return nil
}

// Quote returns the current fiat price per unit of the asset.
func (c *AssetCatalog) Quote(symbol string) (decimal.Decimal, error) {
	a, ok := c.assets[symbol]
	if !ok {
		return decimal.Zero, ErrUnknownAsset
	}
	return a.Price, nil
}

// SupportsNetwork reports whether the asset settles on the network.
func (c *AssetCatalog) SupportsNetwork(symbol, networkId string) (bool, error) {
	a, ok := c.assets[symbol]
	if !ok {
		return false, ErrUnknownAsset
	}
	return a.SupportsNetwork(networkId), nil
}

// KnownSymbols returns every listed symbol in registration order.
// Used to seed newly opened balances.
func (c *AssetCatalog) KnownSymbols() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Assets returns all listed assets in registration order.
func (c *AssetCatalog) Assets() []models.Asset {
	out := make([]models.Asset, 0, len(c.order))
	for _, sym := range c.order {
		out = append(out, *c.assets[sym])
	}
	return out
}

// restore replaces the catalog contents from a snapshot.
func (c *AssetCatalog) restore(assets []models.Asset) {
	c.assets = make(map[string]*models.Asset, len(assets))
	c.order = c.order[:0]
	for i := range assets {
		a := assets[i]
		c.assets[a.Symbol] = &a
		c.order = append(c.order, a.Symbol)
	}
}
