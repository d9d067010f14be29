package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/banking-coach/internal/api/middleware"
	"github.com/dvloznov/banking-coach/internal/appdata"
	"github.com/dvloznov/banking-coach/internal/coach"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
)

// AdviceRecorder observes coach answers.
type AdviceRecorder interface {
	RecordAdvice(degraded bool)
}

// CoachHandler serves the coach context, chat and purchase check.
type CoachHandler struct {
	builder  *coach.Builder
	advisor  *coach.Advisor
	core     coach.ProfileSource
	budgets  appdata.BudgetStore
	recorder AdviceRecorder
	now      func() time.Time
	log      zerolog.Logger
}

// NewCoachHandler creates a new coach handler. recorder may be nil.
func NewCoachHandler(builder *coach.Builder, advisor *coach.Advisor, core coach.ProfileSource, budgets appdata.BudgetStore, recorder AdviceRecorder, log zerolog.Logger) *CoachHandler {
	return &CoachHandler{
		builder:  builder,
		advisor:  advisor,
		core:     core,
		budgets:  budgets,
		recorder: recorder,
		now:      time.Now,
		log:      log,
	}
}

// ChatResponse is the body of a coach answer.
type ChatResponse struct {
	Response    string        `json:"response"`
	Degraded    bool          `json:"degraded"`
	ContextUsed coach.Context `json:"context_used"`
}

// Context handles GET /api/v1/coach/context
func (h *CoachHandler) Context(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	c, err := h.builder.Build(r.Context(), claims.UserID(), claims.ClientCode)
	if err != nil {
		writeError(w, r, err, "Failed to build coach context")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, c)
}

// Chat handles POST /api/v1/coach/chat. Without a message the coach gives a
// proactive tip.
func (h *CoachHandler) Chat(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req, true); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.builder.Build(r.Context(), claims.UserID(), claims.ClientCode)
	if err != nil {
		writeError(w, r, err, "Failed to build coach context")
		return
	}

	advice := h.advisor.Advise(r.Context(), c, strings.TrimSpace(req.Message))
	if h.recorder != nil {
		h.recorder.RecordAdvice(advice.Degraded)
	}

	middleware.WriteJSON(w, http.StatusOK, ChatResponse{
		Response:    advice.Response,
		Degraded:    advice.Degraded,
		ContextUsed: c,
	})
}

// CheckPurchase handles POST /api/v1/coach/check-purchase
func (h *CoachHandler) CheckPurchase(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.core.Profile360(r.Context(), claims.ClientCode)
	if err != nil {
		writeError(w, r, err, "Failed to load profile")
		return
	}

	budget, err := h.budgetFor(r.Context(), claims.UserID(), strings.ToUpper(strings.TrimSpace(req.Category)))
	if err != nil {
		writeError(w, r, err, "Failed to load budget")
		return
	}
	spent := decimal.Zero
	if budget != nil && p.Period.Contains(h.now()) {
		for _, ct := range p.CategoryTotals {
			if strings.EqualFold(ct.Name, budget.Category) {
				spent = ct.Total
				break
			}
		}
	}

	check, err := insights.CheckPurchase(req.Amount, p.Liquidity, budget, spent)
	if err != nil {
		writeError(w, r, err, "Invalid purchase")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, check)
}

// budgetFor returns the user's budget for category, nil when none is set.
func (h *CoachHandler) budgetFor(ctx context.Context, userID, category string) (*domain.Budget, error) {
	if category == "" || h.budgets == nil {
		return nil, nil
	}
	b, err := h.budgets.GetBudget(ctx, userID, category)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
