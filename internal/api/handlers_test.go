package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"crypto-ledger-go/internal/clock"
	"crypto-ledger-go/internal/ident"
	"crypto-ledger-go/internal/ledger"
)

func setupTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	fixed := clock.NewFixed(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	platform := ledger.NewPlatform(fixed, &ident.Sequence{Prefix: "OP"})
	return NewRouter(NewHandler(platform))
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndValidate(t *testing.T, router *mux.Router, externalId string) {
	t.Helper()

	rec := doJSON(t, router, "POST", "/api/v1/users", map[string]string{
		"external_id": externalId,
		"name":        "Test User",
		"email":       "test@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("user registration returned %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, "POST", "/api/v1/users/"+externalId+"/validate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("user validation returned %d: %s", rec.Code, rec.Body)
	}
}

func listBitcoin(t *testing.T, router *mux.Router) {
	t.Helper()

	rec := doJSON(t, router, "POST", "/api/v1/assets", map[string]interface{}{
		"symbol": "BTC",
		"name":   "Bitcoin",
		"price":  "100",
		"networks": []map[string]string{
			{"id": "bitcoin", "name": "Bitcoin"},
			{"id": "lightning", "name": "Lightning Network"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("asset registration returned %d: %s", rec.Code, rec.Body)
	}
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRegisterUser_DuplicateConflict(t *testing.T) {
	router := setupTestRouter(t)
	registerAndValidate(t, router, "30111222")

	rec := doJSON(t, router, "POST", "/api/v1/users", map[string]string{
		"external_id": "30111222",
		"name":        "Again",
		"email":       "again@example.com",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body)
	}
}

func TestRegisterUser_MissingExternalId(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/v1/users", map[string]string{"name": "No Id"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
}

func TestValidateUser_Unknown(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/v1/users/missing/validate", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body)
	}
}

func TestDeposit_UnvalidatedUser(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/v1/users", map[string]string{
		"external_id": "30111222",
		"name":        "Alice",
		"email":       "alice@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration returned %d", rec.Code)
	}

	rec = doJSON(t, router, "POST", "/api/v1/users/30111222/deposits", map[string]string{"amount": "100"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unvalidated user, got %d: %s", rec.Code, rec.Body)
	}
}

func TestTradeFlow(t *testing.T) {
	router := setupTestRouter(t)
	registerAndValidate(t, router, "30111222")
	listBitcoin(t, router)

	rec := doJSON(t, router, "POST", "/api/v1/users/30111222/deposits", map[string]string{"amount": "1000"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("deposit returned %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, "POST", "/api/v1/users/30111222/buys", map[string]string{
		"symbol":   "BTC",
		"quantity": "2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("buy returned %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, "POST", "/api/v1/users/30111222/sends", map[string]string{
		"symbol":   "BTC",
		"quantity": "1",
		"network":  "lightning",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send returned %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, "GET", "/api/v1/users/30111222/balances", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balances returned %d: %s", rec.Code, rec.Body)
	}

	var balance struct {
		Fiat   string            `json:"fiat"`
		Assets map[string]string `json:"assets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &balance); err != nil {
		t.Fatalf("failed to decode balance response: %v", err)
	}
	if balance.Fiat != "800" {
		t.Errorf("expected fiat 800, got %s", balance.Fiat)
	}
	if balance.Assets["BTC"] != "1" {
		t.Errorf("expected 1 BTC, got %s", balance.Assets["BTC"])
	}

	rec = doJSON(t, router, "GET", "/api/v1/operations?user=30111222", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("operations returned %d: %s", rec.Code, rec.Body)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode operations response: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 operations, got %d", len(records))
	}
}

func TestBuy_InsufficientFunds(t *testing.T) {
	router := setupTestRouter(t)
	registerAndValidate(t, router, "30111222")
	listBitcoin(t, router)

	rec := doJSON(t, router, "POST", "/api/v1/users/30111222/buys", map[string]string{
		"symbol":   "BTC",
		"quantity": "1",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body)
	}
}

func TestBuy_UnknownAsset(t *testing.T) {
	router := setupTestRouter(t)
	registerAndValidate(t, router, "30111222")

	rec := doJSON(t, router, "POST", "/api/v1/users/30111222/buys", map[string]string{
		"symbol":   "DOGE",
		"quantity": "1",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body)
	}
}

func TestSend_UnsupportedNetwork(t *testing.T) {
	router := setupTestRouter(t)
	registerAndValidate(t, router, "30111222")
	listBitcoin(t, router)

	rec := doJSON(t, router, "POST", "/api/v1/users/30111222/receives", map[string]string{
		"symbol":   "BTC",
		"quantity": "5",
		"network":  "bitcoin",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("receive returned %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, "POST", "/api/v1/users/30111222/sends", map[string]string{
		"symbol":   "BTC",
		"quantity": "1",
		"network":  "solana",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unsupported network, got %d: %s", rec.Code, rec.Body)
	}
}

func TestSend_MissingNetwork(t *testing.T) {
	router := setupTestRouter(t)
	registerAndValidate(t, router, "30111222")
	listBitcoin(t, router)

	rec := doJSON(t, router, "POST", "/api/v1/users/30111222/sends", map[string]string{
		"symbol":   "BTC",
		"quantity": "1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing network, got %d: %s", rec.Code, rec.Body)
	}
}

func TestRegisterAsset_Duplicate(t *testing.T) {
	router := setupTestRouter(t)
	listBitcoin(t, router)

	rec := doJSON(t, router, "POST", "/api/v1/assets", map[string]interface{}{
		"symbol":   "BTC",
		"price":    "200",
		"networks": []map[string]string{{"id": "bitcoin"}},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body)
	}
}
