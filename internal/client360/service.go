// Package client360 serves the back-office views of a client: products,
// movement history, spending by category and the feature vector.
package client360

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dvloznov/banking-coach/internal/corebanking"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AuditLogger records application events.
type AuditLogger interface {
	RecordAppLog(ctx context.Context, level, message, module string) error
}

const auditModule = "data_extraction"

// Service reads client views from a core record source.
type Service struct {
	src         corebanking.RecordSource
	categorizer *insights.Categorizer
	audit       AuditLogger
	now         func() time.Time
	log         zerolog.Logger
}

// NewService creates the client 360 service. audit may be nil.
func NewService(src corebanking.RecordSource, categorizer *insights.Categorizer, audit AuditLogger, log zerolog.Logger) *Service {
	if categorizer == nil {
		categorizer = insights.NewCategorizer(insights.DefaultCategories())
	}
	return &Service{src: src, categorizer: categorizer, audit: audit, now: time.Now, log: log}
}

// ClientInfo identifies the client in a products view.
type ClientInfo struct {
	FirstNames string `json:"first_names"`
	LastNames  string `json:"last_names"`
	DNI        string `json:"dni"`
}

// AccountView is an account as listed in the products view.
type AccountView struct {
	Number           string          `json:"account_number"`
	Type             string          `json:"account_type"`
	Currency         string          `json:"currency"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	Status           string          `json:"status"`
}

// CardView is a card as listed in the products view. The number is masked.
type CardView struct {
	Number string `json:"card_number"`
	Type   string `json:"card_type"`
	Brand  string `json:"brand"`
	Expiry string `json:"expiry"`
	Status string `json:"status"`
}

// Products lists everything a client holds.
type Products struct {
	Client   ClientInfo    `json:"client"`
	Accounts []AccountView `json:"accounts"`
	Cards    []CardView    `json:"cards"`
}

// HistoryItem is one movement in the client history.
type HistoryItem struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
	Channel       string          `json:"channel,omitempty"`
	AccountNumber string          `json:"account_number"`
}

// CategorySpend is the debit total and count of one category.
type CategorySpend struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Spending is the client's debit spend grouped by keyword category.
type Spending struct {
	DNI        string                   `json:"dni"`
	TotalSpent decimal.Decimal          `json:"total_spent"`
	Categories map[string]CategorySpend `json:"categories"`
}

// Products returns the client's accounts and cards.
func (s *Service) Products(ctx context.Context, dni string) (Products, error) {
	client, err := s.src.FindClientByDNI(ctx, dni)
	if err != nil {
		return Products{}, fmt.Errorf("Products: %w", err)
	}
	accounts, err := s.src.ListAccounts(ctx, client.Code)
	if err != nil {
		return Products{}, fmt.Errorf("Products: listing accounts: %w", err)
	}
	cards, err := s.src.ListCards(ctx, client.Code)
	if err != nil {
		return Products{}, fmt.Errorf("Products: listing cards: %w", err)
	}

	out := Products{
		Client:   ClientInfo{FirstNames: client.FirstNames, LastNames: client.LastNames, DNI: client.DNI},
		Accounts: make([]AccountView, 0, len(accounts)),
		Cards:    make([]CardView, 0, len(cards)),
	}
	for _, a := range accounts {
		out.Accounts = append(out.Accounts, AccountView{
			Number:           a.Number,
			Type:             a.Type,
			Currency:         a.Currency,
			AvailableBalance: a.AvailableBalance,
			Status:           a.Status,
		})
	}
	for _, c := range cards {
		view := CardView{
			Number: insights.MaskCardNumber(c.Number),
			Type:   c.Type,
			Brand:  c.Brand,
			Status: c.Status,
		}
		if !c.Expiry.IsZero() {
			view.Expiry = c.Expiry.String()
		}
		out.Cards = append(out.Cards, view)
	}
	return out, nil
}

// Transactions returns every movement of the client, newest first.
func (s *Service) Transactions(ctx context.Context, dni string) ([]HistoryItem, error) {
	client, err := s.src.FindClientByDNI(ctx, dni)
	if err != nil {
		return nil, fmt.Errorf("Transactions: %w", err)
	}
	movements, err := s.src.ListClientMovements(ctx, client.Code)
	if err != nil {
		return nil, fmt.Errorf("Transactions: listing movements: %w", err)
	}
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[j].ID.Less(movements[i].ID)
	})

	items := make([]HistoryItem, 0, len(movements))
	for _, m := range movements {
		items = append(items, HistoryItem{
			ID:            m.ID.String(),
			Timestamp:     m.Timestamp,
			Direction:     string(m.Direction),
			Amount:        m.Amount,
			Currency:      m.Currency,
			Description:   m.Description,
			Channel:       m.Channel,
			AccountNumber: m.AccountNumber,
		})
	}
	return items, nil
}

// SpendingByCategory groups the client's debits by description keyword.
func (s *Service) SpendingByCategory(ctx context.Context, dni string) (Spending, error) {
	client, err := s.src.FindClientByDNI(ctx, dni)
	if err != nil {
		return Spending{}, fmt.Errorf("SpendingByCategory: %w", err)
	}
	movements, err := s.src.ListClientMovements(ctx, client.Code)
	if err != nil {
		return Spending{}, fmt.Errorf("SpendingByCategory: listing movements: %w", err)
	}

	out := Spending{DNI: dni, TotalSpent: decimal.Zero, Categories: map[string]CategorySpend{}}
	for _, m := range movements {
		if !m.IsDebit() {
			continue
		}
		name := s.categorizer.Categorize(m.Description).Name
		cs, ok := out.Categories[name]
		if !ok {
			cs.Total = decimal.Zero
		}
		cs.Total = cs.Total.Add(m.Amount)
		cs.Count++
		out.Categories[name] = cs
		out.TotalSpent = out.TotalSpent.Add(m.Amount)
	}
	return out, nil
}

// Features builds the feature vector of a client and records the access in
// the application log. Audit failures are logged, not returned.
func (s *Service) Features(ctx context.Context, code string) (insights.ClientFeatures, error) {
	f, err := s.features(ctx, code)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.recordAudit(ctx, "WARNING", "Client not found: "+code)
	case err == nil:
		s.recordAudit(ctx, "INFO", "Features extracted for: "+code)
	}
	return f, err
}

func (s *Service) features(ctx context.Context, code string) (insights.ClientFeatures, error) {
	client, err := s.src.GetClient(ctx, code)
	if err != nil {
		return insights.ClientFeatures{}, fmt.Errorf("Features: %w", err)
	}
	accounts, err := s.src.ListAccounts(ctx, code)
	if err != nil {
		return insights.ClientFeatures{}, fmt.Errorf("Features: listing accounts: %w", err)
	}
	cards, err := s.src.ListCards(ctx, code)
	if err != nil {
		return insights.ClientFeatures{}, fmt.Errorf("Features: listing cards: %w", err)
	}
	movements, err := s.src.ListClientMovements(ctx, code)
	if err != nil {
		return insights.ClientFeatures{}, fmt.Errorf("Features: listing movements: %w", err)
	}
	return insights.BuildFeatures(client, accounts, cards, movements, s.now()), nil
}

func (s *Service) recordAudit(ctx context.Context, level, message string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordAppLog(ctx, level, message, auditModule); err != nil {
		s.log.Error().Err(err).Str("message", message).Msg("Failed to record app log")
	}
}
