package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-coach/internal/api/middleware"
	"github.com/dvloznov/banking-coach/internal/client360"
)

// ClientsHandler serves the back-office views of any client.
type ClientsHandler struct {
	svc *client360.Service
	log zerolog.Logger
}

// NewClientsHandler creates a new clients handler.
func NewClientsHandler(svc *client360.Service, log zerolog.Logger) *ClientsHandler {
	return &ClientsHandler{svc: svc, log: log}
}

// Products handles GET /api/v1/clients/{dni}/products
func (h *ClientsHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products(r.Context(), r.PathValue("dni"))
	if err != nil {
		writeError(w, r, err, "Failed to load client products")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, products)
}

// Transactions handles GET /api/v1/clients/{dni}/transactions
func (h *ClientsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Transactions(r.Context(), r.PathValue("dni"))
	if err != nil {
		writeError(w, r, err, "Failed to load client transactions")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": items,
		"count":        len(items),
	})
}

// Spending handles GET /api/v1/analytics/spending-category/{dni}
func (h *ClientsHandler) Spending(w http.ResponseWriter, r *http.Request) {
	spending, err := h.svc.SpendingByCategory(r.Context(), r.PathValue("dni"))
	if err != nil {
		writeError(w, r, err, "Failed to compute spending")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, spending)
}

// Features handles GET /api/v1/client-features/{code}
func (h *ClientsHandler) Features(w http.ResponseWriter, r *http.Request) {
	features, err := h.svc.Features(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err, "Failed to build client features")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, features)
}
