package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Operation kinds as stored in snapshots and the operations table.
const (
	KindFiatDeposit    = "fiat_deposit"
	KindFiatWithdrawal = "fiat_withdrawal"
	KindCryptoBuy      = "crypto_buy"
	KindCryptoSell     = "crypto_sell"
	KindCryptoSend     = "crypto_send"
	KindCryptoReceive  = "crypto_receive"
)

// OperationDetail is the tagged payload of an operation record, one
// concrete type per operation kind.
type OperationDetail interface {
	Kind() string
	Describe() string
}

// FiatDeposit credits fiat to a user's balance.
type FiatDeposit struct {
	Amount decimal.Decimal `json:"amount"`
}

// FiatWithdrawal debits fiat, paid out over the given rail.
type FiatWithdrawal struct {
	Amount decimal.Decimal `json:"amount"`
	Rail   string          `json:"rail"`
}

// CryptoBuy converts fiat into an asset at the pinned price.
type CryptoBuy struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// CryptoSell converts an asset back into fiat at the pinned price.
type CryptoSell struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// CryptoSend debits an asset for an outbound transfer on a network.
// TransferRef is the simulated on-chain reference minted for the send.
type CryptoSend struct {
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Network     string          `json:"network"`
	TransferRef string          `json:"transfer_ref"`
}

// CryptoReceive credits an asset arriving from a network.
type CryptoReceive struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Network  string          `json:"network"`
}

func (d FiatDeposit) Kind() string    { return KindFiatDeposit }
func (d FiatWithdrawal) Kind() string { return KindFiatWithdrawal }
func (d CryptoBuy) Kind() string      { return KindCryptoBuy }
func (d CryptoSell) Kind() string     { return KindCryptoSell }
func (d CryptoSend) Kind() string     { return KindCryptoSend }
func (d CryptoReceive) Kind() string  { return KindCryptoReceive }

func (d FiatDeposit) Describe() string {
	return fmt.Sprintf("deposit fiat - amount: %s", d.Amount.String())
}

func (d FiatWithdrawal) Describe() string {
	return fmt.Sprintf("withdraw fiat - amount: %s - rail: %s", d.Amount.String(), d.Rail)
}

func (d CryptoBuy) Describe() string {
	return fmt.Sprintf("buy crypto - asset: %s - quantity: %s - price: %s",
		d.Symbol, d.Quantity.String(), d.Price.String())
}

func (d CryptoSell) Describe() string {
	return fmt.Sprintf("sell crypto - asset: %s - quantity: %s - price: %s",
		d.Symbol, d.Quantity.String(), d.Price.String())
}

func (d CryptoSend) Describe() string {
	return fmt.Sprintf("send crypto - asset: %s - quantity: %s - price: %s - network: %s - ref: %s",
		d.Symbol, d.Quantity.String(), d.Price.String(), d.Network, d.TransferRef)
}

func (d CryptoReceive) Describe() string {
	return fmt.Sprintf("receive crypto - asset: %s - quantity: %s - price: %s - network: %s",
		d.Symbol, d.Quantity.String(), d.Price.String(), d.Network)
}

// OperationRecord is one accepted state change. Records are immutable
// once appended to the log.
type OperationRecord struct {
	Id        string
	Timestamp time.Time
	UserId    string
	Detail    OperationDetail
}

func (r OperationRecord) String() string {
	return fmt.Sprintf("%s - user: %s - [%s]",
		r.Timestamp.Format(time.RFC3339), r.UserId, r.Detail.Describe())
}

// operationEnvelope is the wire form of a record: the detail payload is
// tagged with its kind so the concrete type survives a round trip.
type operationEnvelope struct {
	Id        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	UserId    string          `json:"user_id"`
	Kind      string          `json:"kind"`
	Detail    json.RawMessage `json:"detail"`
}

func (r OperationRecord) MarshalJSON() ([]byte, error) {
	detail, err := EncodeDetail(r.Detail)
	if err != nil {
		return nil, err
	}
	return json.Marshal(operationEnvelope{
		Id:        r.Id,
		Timestamp: r.Timestamp,
		UserId:    r.UserId,
		Kind:      r.Detail.Kind(),
		Detail:    detail,
	})
}

func (r *OperationRecord) UnmarshalJSON(data []byte) error {
	var env operationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	detail, err := DecodeDetail(env.Kind, env.Detail)
	if err != nil {
		return err
	}
	r.Id = env.Id
	r.Timestamp = env.Timestamp
	r.UserId = env.UserId
	r.Detail = detail
	return nil
}

// EncodeDetail serializes a detail payload without its kind tag.
func EncodeDetail(d OperationDetail) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("operation detail is nil")
	}
	return json.Marshal(d)
}

// DecodeDetail deserializes a detail payload into the concrete type
// named by kind.
func DecodeDetail(kind string, data []byte) (OperationDetail, error) {
	var (
		d   OperationDetail
		err error
	)
	switch kind {
	case KindFiatDeposit:
		var v FiatDeposit
		err = json.Unmarshal(data, &v)
		d = v
	case KindFiatWithdrawal:
		var v FiatWithdrawal
		err = json.Unmarshal(data, &v)
		d = v
	case KindCryptoBuy:
		var v CryptoBuy
		err = json.Unmarshal(data, &v)
		d = v
	case KindCryptoSell:
		var v CryptoSell
		err = json.Unmarshal(data, &v)
		d = v
	case KindCryptoSend:
		var v CryptoSend
		err = json.Unmarshal(data, &v)
		d = v
	case KindCryptoReceive:
		var v CryptoReceive
		err = json.Unmarshal(data, &v)
		d = v
	default:
		return nil, fmt.Errorf("unknown operation kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
