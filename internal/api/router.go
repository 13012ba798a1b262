package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the ledger endpoints, health check and metrics exporter.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(latencyMiddleware)

	apiV1.HandleFunc("/users", h.RegisterUserHandler).Methods("POST")
	apiV1.HandleFunc("/users", h.ListUsersHandler).Methods("GET")
	apiV1.HandleFunc("/users/{id}/validate", h.ValidateUserHandler).Methods("POST")
	apiV1.HandleFunc("/users/{id}/balances", h.GetBalancesHandler).Methods("GET")

	apiV1.HandleFunc("/assets", h.RegisterAssetHandler).Methods("POST")
	apiV1.HandleFunc("/assets", h.ListAssetsHandler).Methods("GET")

	apiV1.HandleFunc("/users/{id}/deposits", h.DepositFiatHandler).Methods("POST")
	apiV1.HandleFunc("/users/{id}/withdrawals", h.WithdrawFiatHandler).Methods("POST")
	apiV1.HandleFunc("/users/{id}/buys", h.BuyCryptoHandler).Methods("POST")
	apiV1.HandleFunc("/users/{id}/sells", h.SellCryptoHandler).Methods("POST")
	apiV1.HandleFunc("/users/{id}/sends", h.SendCryptoHandler).Methods("POST")
	apiV1.HandleFunc("/users/{id}/receives", h.ReceiveCryptoHandler).Methods("POST")

	apiV1.HandleFunc("/operations", h.ListOperationsHandler).Methods("GET")

	return r
}

func latencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		httpRequestDuration.WithLabelValues(r.Method, routeTemplate(r)).Observe(time.Since(start).Seconds())
	})
}
