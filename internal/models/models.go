package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered platform identity. ExternalId is the national id
// the user registered with and is unique across the directory.
type User struct {
	ExternalId string    `json:"external_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Validated  bool      `json:"validated"`
	CreatedAt  time.Time `json:"created_at"`
}

// Network is a settlement rail an asset may be sent or received on.
type Network struct {
	Id   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Asset is a tradable crypto asset: unique symbol, display name, the
// current fiat quote per unit and the networks it settles on.
type Asset struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Networks []Network       `json:"networks"`
}

// SupportsNetwork reports whether the asset settles on the given network id.
func (a Asset) SupportsNetwork(networkId string) bool {
	for _, n := range a.Networks {
		if n.Id == networkId {
			return true
		}
	}
	return false
}

// Balance is the serialized form of one user's holdings: a fiat amount
// plus a quantity per asset symbol. Assets the user never touched may be
// absent from the map; an absent symbol means zero.
type Balance struct {
	UserId string                     `json:"user_id"`
	Fiat   decimal.Decimal            `json:"fiat"`
	Assets map[string]decimal.Decimal `json:"assets"`
}

// Snapshot is the full persistable state of the platform: the four
// tables, with the operation log in append order. Round-tripping a
// Snapshot through any backend must preserve all four exactly.
type Snapshot struct {
	Users      []User            `json:"users"`
	Assets     []Asset           `json:"assets"`
	Balances   []Balance         `json:"balances"`
	Operations []OperationRecord `json:"operations"`
}
