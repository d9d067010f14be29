package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/banking-coach/internal/api/middleware"
	"github.com/dvloznov/banking-coach/internal/appdata"
	"github.com/dvloznov/banking-coach/internal/coach"
	"github.com/dvloznov/banking-coach/internal/domain"
)

// GoalsHandler serves savings goals and category budgets.
type GoalsHandler struct {
	goals   appdata.GoalStore
	budgets appdata.BudgetStore
	now     func() time.Time
	log     zerolog.Logger
}

// NewGoalsHandler creates a new goals handler.
func NewGoalsHandler(goals appdata.GoalStore, budgets appdata.BudgetStore, log zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{goals: goals, budgets: budgets, now: time.Now, log: log}
}

type goalRequest struct {
	Title    string          `json:"title"`
	Target   decimal.Decimal `json:"target"`
	Saved    decimal.Decimal `json:"saved"`
	Deadline string          `json:"deadline"`
	Icon     string          `json:"icon"`
}

func (req goalRequest) goal(userID string) (domain.Goal, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Goal{}, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if !req.Target.IsPositive() {
		return domain.Goal{}, fmt.Errorf("%w: target must be positive", domain.ErrInvalidInput)
	}
	if req.Saved.IsNegative() {
		return domain.Goal{}, fmt.Errorf("%w: saved cannot be negative", domain.ErrInvalidInput)
	}
	deadline, err := civil.ParseDate(req.Deadline)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("%w: deadline must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	status := domain.GoalInProgress
	if req.Saved.GreaterThanOrEqual(req.Target) {
		status = domain.GoalAchieved
	}
	return domain.Goal{
		UserID:   userID,
		Title:    title,
		Target:   req.Target,
		Saved:    req.Saved,
		Deadline: deadline,
		Icon:     req.Icon,
		Status:   status,
	}, nil
}

// ListGoals handles GET /api/v1/goals
func (h *GoalsHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	goals, err := h.goals.ListGoals(r.Context(), claims.UserID(), 0)
	if err != nil {
		writeError(w, r, err, "Failed to list goals")
		return
	}

	views := coach.ViewGoals(goals, civil.DateOf(h.now()))
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"goals": views,
		"count": len(views),
	})
}

// CreateGoal handles POST /api/v1/goals
func (h *GoalsHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req, false); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	goal, err := req.goal(claims.UserID())
	if err != nil {
		writeError(w, r, err, "Invalid goal")
		return
	}

	created, err := h.goals.CreateGoal(r.Context(), goal)
	if err != nil {
		writeError(w, r, err, "Failed to create goal")
		return
	}

	h.log.Info().Str("user_id", created.UserID).Int64("goal_id", created.ID).Msg("Goal created")
	views := coach.ViewGoals([]domain.Goal{created}, civil.DateOf(h.now()))
	middleware.WriteJSON(w, http.StatusCreated, views[0])
}

// BudgetView is a budget as returned to the app.
type BudgetView struct {
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	AlertPercent int             `json:"alert_percent"`
}

func budgetView(b domain.Budget) BudgetView {
	return BudgetView{Category: b.Category, MonthlyLimit: b.MonthlyLimit, AlertPercent: b.AlertPercent}
}

// ListBudgets handles GET /api/v1/budgets
func (h *GoalsHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	budgets, err := h.budgets.ListBudgets(r.Context(), claims.UserID())
	if err != nil {
		writeError(w, r, err, "Failed to list budgets")
		return
	}
	views := make([]BudgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, budgetView(b))
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"budgets": views,
		"count":   len(views),
	})
}

// PutBudget handles PUT /api/v1/budgets
func (h *GoalsHandler) PutBudget(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req BudgetView
	if err := decodeJSON(r, &req, false); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	category := strings.ToUpper(strings.TrimSpace(req.Category))
	switch {
	case category == "":
		middleware.WriteError(w, http.StatusBadRequest, "category is required")
		return
	case !req.MonthlyLimit.IsPositive():
		middleware.WriteError(w, http.StatusBadRequest, "monthly_limit must be positive")
		return
	case req.AlertPercent < 0 || req.AlertPercent > 100:
		middleware.WriteError(w, http.StatusBadRequest, "alert_percent must be between 0 and 100")
		return
	}

	saved, err := h.budgets.UpsertBudget(r.Context(), domain.Budget{
		UserID:       claims.UserID(),
		Category:     category,
		MonthlyLimit: req.MonthlyLimit,
		AlertPercent: req.AlertPercent,
	})
	if err != nil {
		writeError(w, r, err, "Failed to save budget")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, budgetView(saved))
}
