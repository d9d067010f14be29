package corebanking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
	"github.com/rs/zerolog"
)

// Simulator answers the mainframe transactions from a RecordSource.
type Simulator struct {
	src      RecordSource
	resolver *insights.Resolver
	now      func() time.Time
	log      zerolog.Logger
}

var _ Gateway = (*Simulator)(nil)

// NewSimulator creates a simulator. A nil resolver uses the default categories.
func NewSimulator(src RecordSource, resolver *insights.Resolver, log zerolog.Logger) *Simulator {
	if resolver == nil {
		resolver = insights.NewResolver(insights.DefaultCategories())
	}
	return &Simulator{src: src, resolver: resolver, now: time.Now, log: log}
}

// FindClient implements TRX000.
func (s *Simulator) FindClient(ctx context.Context, dni string) (domain.Client, error) {
	c, err := s.src.FindClientByDNI(ctx, dni)
	if err != nil {
		return domain.Client{}, fmt.Errorf("FindClient: %w", err)
	}
	return c, nil
}

// GlobalPosition implements TRX001.
func (s *Simulator) GlobalPosition(ctx context.Context, clientCode string) (GlobalPosition, error) {
	accounts, err := s.src.ListAccounts(ctx, clientCode)
	if err != nil {
		return GlobalPosition{}, fmt.Errorf("GlobalPosition: listing accounts: %w", err)
	}
	cards, err := s.src.ListCards(ctx, clientCode)
	if err != nil {
		return GlobalPosition{}, fmt.Errorf("GlobalPosition: listing cards: %w", err)
	}

	pos := GlobalPosition{
		ClientCode: clientCode,
		Accounts:   make([]insights.PositionAccount, 0, len(accounts)),
		Cards:      make([]insights.PositionCard, 0, len(cards)),
	}
	for _, a := range accounts {
		pos.Accounts = append(pos.Accounts, insights.PositionAccount{
			Number:   a.Number,
			Currency: a.Currency,
			Balance:  a.AvailableBalance,
		})
	}
	for _, c := range cards {
		pos.Cards = append(pos.Cards, insights.PositionCard{Number: c.Number, LinkedAccount: c.LinkedAccount})
	}
	return pos, nil
}

// ownedAccount loads an account and checks it belongs to the client. A foreign
// account is reported as not found.
func (s *Simulator) ownedAccount(ctx context.Context, clientCode, number string) (domain.Account, error) {
	acc, err := s.src.GetAccount(ctx, number)
	if err != nil {
		return domain.Account{}, err
	}
	if acc.ClientCode != clientCode {
		s.log.Warn().
			Str("client_code", clientCode).
			Str("account_number", number).
			Msg("Account requested by a client that does not own it")
		return domain.Account{}, fmt.Errorf("account %s: %w", number, domain.ErrNotFound)
	}
	return acc, nil
}

// AccountDetail implements TRX002.
func (s *Simulator) AccountDetail(ctx context.Context, clientCode, number string) (AccountDetail, error) {
	acc, err := s.ownedAccount(ctx, clientCode, number)
	if err != nil {
		return AccountDetail{}, fmt.Errorf("AccountDetail: %w", err)
	}
	movements, err := s.src.ListMovements(ctx, number)
	if err != nil {
		return AccountDetail{}, fmt.Errorf("AccountDetail: listing movements: %w", err)
	}

	annotated := s.resolver.Annotate(movements)
	summary := insights.Aggregate(annotated)

	sort.SliceStable(annotated, func(i, j int) bool {
		return annotated[j].ID.Less(annotated[i].ID)
	})
	if len(annotated) > RecentMovementsLimit {
		annotated = annotated[:RecentMovementsLimit]
	}
	recent := make([]insights.PageItem, 0, len(annotated))
	for _, m := range annotated {
		recent = append(recent, insights.PageItem{
			ID:          m.ID.String(),
			Reference:   m.Reference,
			Timestamp:   m.Timestamp,
			Description: m.Description,
			Amount:      m.SignedAmount(),
			Currency:    m.Currency,
			Category:    m.Category.Name,
			Channel:     m.Channel,
		})
	}

	return AccountDetail{
		Number:         acc.Number,
		Currency:       acc.Currency,
		Balance:        acc.AvailableBalance,
		CategoryTotals: summary.CategoryTotals,
		Recent:         recent,
	}, nil
}

// CategoryMovements implements TRX003.
func (s *Simulator) CategoryMovements(ctx context.Context, clientCode, number string, req insights.PageRequest) (insights.Page, error) {
	if _, err := s.ownedAccount(ctx, clientCode, number); err != nil {
		return insights.Page{}, fmt.Errorf("CategoryMovements: %w", err)
	}
	movements, err := s.src.ListMovements(ctx, number)
	if err != nil {
		return insights.Page{}, fmt.Errorf("CategoryMovements: listing movements: %w", err)
	}
	page, err := insights.Paginate(s.resolver.Annotate(movements), req)
	if err != nil {
		return insights.Page{}, fmt.Errorf("CategoryMovements: %w", err)
	}
	return page, nil
}

// Profile360 implements TRX005.
func (s *Simulator) Profile360(ctx context.Context, clientCode string) (Profile360, error) {
	accounts, err := s.src.ListAccounts(ctx, clientCode)
	if err != nil {
		return Profile360{}, fmt.Errorf("Profile360: listing accounts: %w", err)
	}
	movements, err := s.src.ListClientMovements(ctx, clientCode)
	if err != nil {
		return Profile360{}, fmt.Errorf("Profile360: listing movements: %w", err)
	}

	window := insights.ActivityWindow(movements, s.now())
	inWindow := insights.InPeriod(movements, window)
	summary := insights.Aggregate(s.resolver.Annotate(inWindow))

	s.log.Debug().
		Str("client_code", clientCode).
		Time("period_start", window.Start).
		Int("movements", len(inWindow)).
		Msg("Computed profile 360")

	return Profile360{
		ClientCode:     clientCode,
		Period:         window,
		Income:         summary.Income,
		Expense:        summary.Expense,
		Balance:        summary.Balance,
		Profile:        summary.Profile(),
		CategoryTotals: summary.CategoryTotals,
		TopCategory:    summary.TopCategory,
		Buckets:        insights.CountBuckets(inWindow),
		Liquidity:      insights.Liquidity(accounts),
	}, nil
}
