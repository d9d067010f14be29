package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/banking-coach/internal/api/middleware"
	"github.com/dvloznov/banking-coach/internal/coach"
	"github.com/dvloznov/banking-coach/internal/corebanking"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
)

// BankingHandler serves the caller's own products, accounts and profile.
type BankingHandler struct {
	core    corebanking.Gateway
	builder *coach.Builder
	log     zerolog.Logger
}

// NewBankingHandler creates a new banking handler.
func NewBankingHandler(core corebanking.Gateway, builder *coach.Builder, log zerolog.Logger) *BankingHandler {
	return &BankingHandler{core: core, builder: builder, log: log}
}

// AccountSummary is the body of an account summary.
type AccountSummary struct {
	AccountNumber  string                   `json:"account_number"`
	Currency       string                   `json:"currency"`
	Balance        decimal.Decimal          `json:"balance"`
	CategoryTotals []insights.CategoryTotal `json:"category_totals"`
	Recent         []insights.PageItem      `json:"recent_movements"`
}

// Products handles GET /api/v1/products
func (h *BankingHandler) Products(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	pos, err := h.core.GlobalPosition(r.Context(), claims.ClientCode)
	if err != nil {
		writeError(w, r, err, "Failed to load global position")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"client_code": pos.ClientCode,
		"accounts":    insights.Reconcile(pos.Accounts, pos.Cards),
	})
}

// AccountSummary handles GET /api/v1/accounts/{number}/summary
func (h *BankingHandler) AccountSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	detail, err := h.core.AccountDetail(r.Context(), claims.ClientCode, r.PathValue("number"))
	if err != nil {
		writeError(w, r, err, "Failed to load account detail")
		return
	}

	totals := detail.CategoryTotals
	if totals == nil {
		totals = []insights.CategoryTotal{}
	}
	middleware.WriteJSON(w, http.StatusOK, AccountSummary{
		AccountNumber:  detail.Number,
		Currency:       detail.Currency,
		Balance:        detail.Balance,
		CategoryTotals: totals,
		Recent:         detail.Recent,
	})
}

// Movements handles GET /api/v1/accounts/{number}/movements
func (h *BankingHandler) Movements(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err, "Invalid movements query")
		return
	}

	page, err := h.core.CategoryMovements(r.Context(), claims.ClientCode, r.PathValue("number"), req)
	if err != nil {
		writeError(w, r, err, "Failed to load movements")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, page)
}

func pageRequest(r *http.Request) (insights.PageRequest, error) {
	query := r.URL.Query()
	req := insights.PageRequest{Category: strings.TrimSpace(query.Get("category"))}
	if req.Category == "" {
		return req, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	if raw := query.Get("cursor"); raw != "" {
		cursor, err := domain.ParseTxID(raw)
		if err != nil {
			return req, err
		}
		req.Cursor = &cursor
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return req, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput)
		}
		req.Size = limit
	}
	return req, nil
}

// Profile handles GET /api/v1/profile
func (h *BankingHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	profile, err := h.builder.Profile(r.Context(), claims.ClientCode)
	if err != nil {
		writeError(w, r, err, "Failed to compute profile")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, profile)
}
