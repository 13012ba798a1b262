package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"crypto-ledger-go/internal/ledger"
	"crypto-ledger-go/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

type Handler struct {
	platform *ledger.Platform
}

func NewHandler(p *ledger.Platform) *Handler {
	return &Handler{platform: p}
}

type registerUserRequest struct {
	ExternalId string `json:"external_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

type registerAssetRequest struct {
	Symbol   string           `json:"symbol"`
	Name     string           `json:"name"`
	Price    decimal.Decimal  `json:"price"`
	Networks []models.Network `json:"networks"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Rail   string          `json:"rail,omitempty"`
}

type tradeRequest struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Network  string          `json:"network,omitempty"`
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.ExternalId == "" {
		h.respondError(w, r, http.StatusBadRequest, "Missing external_id")
		return
	}

	userId, err := h.platform.RegisterUser(req.ExternalId, req.Name, req.Email)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, map[string]string{"user_id": userId})
}

func (h *Handler) ValidateUserHandler(w http.ResponseWriter, r *http.Request) {
	userId := mux.Vars(r)["id"]
	if err := h.platform.ValidateUser(userId); err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"user_id": userId, "status": "validated"})
}

func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, h.platform.Users())
}

func (h *Handler) RegisterAssetHandler(w http.ResponseWriter, r *http.Request) {
	var req registerAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Symbol == "" {
		h.respondError(w, r, http.StatusBadRequest, "Missing symbol")
		return
	}
	if len(req.Networks) == 0 {
		h.respondError(w, r, http.StatusBadRequest, "At least one network required")
		return
	}

	err := h.platform.RegisterAsset(models.Asset{
		Symbol:   req.Symbol,
		Name:     req.Name,
		Price:    req.Price,
		Networks: req.Networks,
	})
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, map[string]string{"symbol": req.Symbol})
}

func (h *Handler) ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, h.platform.Assets())
}

func (h *Handler) DepositFiatHandler(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	record, err := h.platform.DepositFiat(mux.Vars(r)["id"], req.Amount)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, record)
}

func (h *Handler) WithdrawFiatHandler(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	record, err := h.platform.WithdrawFiat(mux.Vars(r)["id"], req.Amount, req.Rail)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, record)
}

func (h *Handler) BuyCryptoHandler(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	record, err := h.platform.BuyCrypto(mux.Vars(r)["id"], req.Symbol, req.Quantity)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, record)
}

func (h *Handler) SellCryptoHandler(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	record, err := h.platform.SellCrypto(mux.Vars(r)["id"], req.Symbol, req.Quantity)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, record)
}

func (h *Handler) SendCryptoHandler(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Network == "" {
		h.respondError(w, r, http.StatusBadRequest, "Missing network")
		return
	}

	record, err := h.platform.SendCrypto(mux.Vars(r)["id"], req.Symbol, req.Quantity, req.Network)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, record)
}

func (h *Handler) ReceiveCryptoHandler(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Network == "" {
		h.respondError(w, r, http.StatusBadRequest, "Missing network")
		return
	}

	record, err := h.platform.ReceiveCrypto(mux.Vars(r)["id"], req.Symbol, req.Quantity, req.Network)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, record)
}

func (h *Handler) GetBalancesHandler(w http.ResponseWriter, r *http.Request) {
	userId := mux.Vars(r)["id"]

	fiat, err := h.platform.FiatOf(userId)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	assets := make(map[string]decimal.Decimal)
	for _, asset := range h.platform.Assets() {
		qty, err := h.platform.AssetOf(userId, asset.Symbol)
		if err != nil {
			h.respondLedgerError(w, r, err)
			return
		}
		if !qty.IsZero() {
			assets[asset.Symbol] = qty
		}
	}

	h.respondJSON(w, r, http.StatusOK, models.Balance{
		UserId: userId,
		Fiat:   fiat,
		Assets: assets,
	})
}

func (h *Handler) ListOperationsHandler(w http.ResponseWriter, r *http.Request) {
	records := h.platform.Operations()
	if userId := r.URL.Query().Get("user"); userId != "" {
		filtered := records[:0:0]
		for _, record := range records {
			if record.UserId == userId {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}
	h.respondJSON(w, r, http.StatusOK, records)
}

// respondLedgerError maps ledger error kinds onto HTTP statuses.
func (h *Handler) respondLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	var code int
	switch {
	case errors.Is(err, ledger.ErrUnknownUser),
		errors.Is(err, ledger.ErrUnknownAsset),
		errors.Is(err, ledger.ErrNoBalanceRecord):
		code = http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateUser),
		errors.Is(err, ledger.ErrDuplicateAsset):
		code = http.StatusConflict
	case errors.Is(err, ledger.ErrUserNotValidated),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrUnsupportedNetwork),
		errors.Is(err, ledger.ErrInvalidAmount):
		code = http.StatusUnprocessableEntity
	default:
		zap.L().Error("Unexpected ledger error", zap.Error(err))
		h.respondError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	h.respondError(w, r, code, err.Error())
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, code int, message string) {
	h.respondJSON(w, r, code, map[string]string{"error": message})
}

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	httpRequestsTotal.WithLabelValues(r.Method, routeTemplate(r), strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			zap.L().Warn("Failed to encode response", zap.Error(err))
		}
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}
