package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/banking-coach/internal/api/middleware"
)

// Handlers groups every endpoint handler of the API.
type Handlers struct {
	Auth    *AuthHandler
	Banking *BankingHandler
	Coach   *CoachHandler
	Goals   *GoalsHandler
	Jobs    *JobsHandler
	Clients *ClientsHandler
	Models  *ModelsHandler
}

// NewMux registers every route. Routes other than /health and /auth/register
// and /auth/login go through requireAuth.
func NewMux(h Handlers, requireAuth func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	protected := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, requireAuth(fn))
	}

	// Auth endpoints
	mux.HandleFunc("POST /auth/register", h.Auth.Register)
	mux.HandleFunc("POST /auth/login", h.Auth.Login)
	protected("POST /auth/logout", h.Auth.Logout)

	// Own products and profile
	protected("GET /api/v1/products", h.Banking.Products)
	protected("GET /api/v1/accounts/{number}/summary", h.Banking.AccountSummary)
	protected("GET /api/v1/accounts/{number}/movements", h.Banking.Movements)
	protected("GET /api/v1/profile", h.Banking.Profile)

	// Coach endpoints
	protected("GET /api/v1/coach/context", h.Coach.Context)
	protected("POST /api/v1/coach/chat", h.Coach.Chat)
	protected("POST /api/v1/coach/check-purchase", h.Coach.CheckPurchase)

	// Goals and budgets
	protected("GET /api/v1/goals", h.Goals.ListGoals)
	protected("POST /api/v1/goals", h.Goals.CreateGoal)
	protected("GET /api/v1/budgets", h.Goals.ListBudgets)
	protected("PUT /api/v1/budgets", h.Goals.PutBudget)

	// Jobs endpoints
	protected("POST /api/v1/exports/statement", h.Jobs.ExportStatement)
	protected("GET /api/v1/jobs", h.Jobs.ListJobs)
	protected("POST /api/v1/jobs", h.Jobs.CreateJob)
	protected("GET /api/v1/jobs/{id}", h.Jobs.GetJob)

	// Client 360 and analytics
	protected("GET /api/v1/clients/{dni}/products", h.Clients.Products)
	protected("GET /api/v1/clients/{dni}/transactions", h.Clients.Transactions)
	protected("GET /api/v1/analytics/spending-category/{dni}", h.Clients.Spending)
	protected("GET /api/v1/client-features/{code}", h.Clients.Features)

	// Model management
	protected("POST /api/v1/models/upload", h.Models.Upload)

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}
