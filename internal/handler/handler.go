// Package handler exposes the order and pricing services over a small JSON
// HTTP API and maps domain errors onto boundary status codes.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/lunchbox-orders/internal/catalog"
	"github.com/xenking/lunchbox-orders/internal/domain/order"
	"github.com/xenking/lunchbox-orders/internal/pricing"
)

// Handler carries the domain dependencies for all API endpoints.
type Handler struct {
	catalog      catalog.Gateway
	prices       *pricing.Resolver
	orderService *order.Service
}

// New constructs a Handler with the required domain dependencies.
func New(gw catalog.Gateway, prices *pricing.Resolver, orderService *order.Service) *Handler {
	return &Handler{
		catalog:      gw,
		prices:       prices,
		orderService: orderService,
	}
}

// Register attaches all API routes to the mux, wrapped with the given
// authentication middleware.
func (h *Handler) Register(mux *http.ServeMux, authn func(http.Handler) http.Handler) {
	mux.Handle("POST /api/orders", authn(http.HandlerFunc(h.CreateOrder)))
	mux.Handle("GET /api/orders", authn(http.HandlerFunc(h.FindOrders)))
	mux.Handle("GET /api/products", authn(http.HandlerFunc(h.ListProducts)))
}

// errorResponse is the uniform error body for all endpoints.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // headers already sent
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

func logError(r *http.Request, msg string, err error) {
	zctx.From(r.Context()).Error(msg, zap.Error(err))
}
