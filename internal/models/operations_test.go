package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOperationRecord_JSONRoundTrip(t *testing.T) {
	original := OperationRecord{
		Id:        "OP00000001",
		Timestamp: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		UserId:    "30111222",
		Detail: CryptoSend{
			Symbol:      "BTC",
			Quantity:    decimal.NewFromFloat(0.25),
			Price:       decimal.NewFromInt(65000),
			Network:     "lightning",
			TransferRef: "AbCd1234EfGh5678IjKl",
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"kind":"crypto_send"`) {
		t.Errorf("expected kind tag in envelope, got %s", data)
	}

	var decoded OperationRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	send, ok := decoded.Detail.(CryptoSend)
	if !ok {
		t.Fatalf("expected CryptoSend detail, got %T", decoded.Detail)
	}
	if !send.Quantity.Equal(decimal.NewFromFloat(0.25)) {
		t.Errorf("expected quantity 0.25, got %s", send.Quantity)
	}
	if send.TransferRef != "AbCd1234EfGh5678IjKl" {
		t.Errorf("transfer ref lost in round trip: %q", send.TransferRef)
	}
	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("expected timestamp %s, got %s", original.Timestamp, decoded.Timestamp)
	}
}

func TestDecodeDetail_UnknownKind(t *testing.T) {
	if _, err := DecodeDetail("teleport", []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestEncodeDetail_Nil(t *testing.T) {
	if _, err := EncodeDetail(nil); err == nil {
		t.Fatal("expected error for nil detail")
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		detail OperationDetail
		want   string
	}{
		{
			FiatDeposit{Amount: decimal.NewFromInt(500)},
			"deposit fiat - amount: 500",
		},
		{
			FiatWithdrawal{Amount: decimal.NewFromInt(200), Rail: "wire"},
			"withdraw fiat - amount: 200 - rail: wire",
		},
		{
			CryptoBuy{Symbol: "ETH", Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(3200)},
			"buy crypto - asset: ETH - quantity: 2 - price: 3200",
		},
		{
			CryptoReceive{Symbol: "SOL", Quantity: decimal.NewFromInt(10), Price: decimal.NewFromInt(145), Network: "solana"},
			"receive crypto - asset: SOL - quantity: 10 - price: 145 - network: solana",
		},
	}

	for _, tc := range cases {
		if got := tc.detail.Describe(); got != tc.want {
			t.Errorf("Describe(%s) = %q, want %q", tc.detail.Kind(), got, tc.want)
		}
	}
}

func TestAssetSupportsNetwork(t *testing.T) {
	asset := Asset{
		Symbol: "USDC",
		Networks: []Network{
			{Id: "ethereum", Name: "Ethereum"},
			{Id: "solana", Name: "Solana"},
		},
	}

	if !asset.SupportsNetwork("solana") {
		t.Error("expected solana to be supported")
	}
	if asset.SupportsNetwork("bitcoin") {
		t.Error("expected bitcoin to be unsupported")
	}
}
