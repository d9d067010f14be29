package corebanking

import (
	"context"
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Transaction codes of the mainframe programs.
const (
	TrxClientLookup   = "TRX000"
	TrxGlobalPosition = "TRX001"
	TrxAccountDetail  = "TRX002"
	TrxMovements      = "TRX003"
	TrxProfile360     = "TRX005"
)

// RecentMovementsLimit is the number of movements in an account detail.
const RecentMovementsLimit = 20

// Gateway is the set of core-banking transactions the API relies on.
type Gateway interface {
	FindClient(ctx context.Context, dni string) (domain.Client, error)
	GlobalPosition(ctx context.Context, clientCode string) (GlobalPosition, error)
	AccountDetail(ctx context.Context, clientCode, accountNumber string) (AccountDetail, error)
	CategoryMovements(ctx context.Context, clientCode, accountNumber string, req insights.PageRequest) (insights.Page, error)
	Profile360(ctx context.Context, clientCode string) (Profile360, error)
}

// GlobalPosition is the flat list of a client's accounts and cards.
type GlobalPosition struct {
	ClientCode string
	Accounts   []insights.PositionAccount
	Cards      []insights.PositionCard
}

// AccountDetail is the balance, spend breakdown and latest movements of an account.
type AccountDetail struct {
	Number         string
	Currency       string
	Balance        decimal.Decimal
	CategoryTotals []insights.CategoryTotal
	Recent         []insights.PageItem
}

// Profile360 is the financial picture of a client over the activity window.
type Profile360 struct {
	ClientCode     string
	Period         insights.Period
	Income         decimal.Decimal
	Expense        decimal.Decimal
	Balance        decimal.Decimal
	Profile        insights.FinancialProfile
	CategoryTotals []insights.CategoryTotal
	TopCategory    *insights.CategoryTotal
	Buckets        insights.BucketCounts
	Liquidity      decimal.Decimal
}

// TopCategoryID returns the id of the top spending category, nil without debits.
func (p Profile360) TopCategoryID() *int {
	if p.TopCategory == nil {
		return nil
	}
	id := p.TopCategory.CategoryID
	return &id
}

// Normalize recomputes the derived fields of a profile from its figures: the
// financial profile from income and expense, and the category order and top
// category from the totals. CategoryTotals is copied, never modified.
func (p Profile360) Normalize() Profile360 {
	totals := make([]insights.CategoryTotal, len(p.CategoryTotals))
	copy(totals, p.CategoryTotals)
	p.TopCategory = insights.RankCategoryTotals(totals)
	p.CategoryTotals = totals
	p.Profile = insights.ClassifyProfile(p.Income, p.Expense)
	return p
}

// Options selects and configures a Gateway.
type Options struct {
	UseMock  bool
	BaseURL  string
	Timeout  time.Duration
	Source   RecordSource
	Resolver *insights.Resolver
	Recorder CallRecorder
}

// NewGateway returns the simulator when UseMock is set and the CICS client
// otherwise, instrumented with the recorder when one is given.
func NewGateway(opts Options, log zerolog.Logger) Gateway {
	var gw Gateway
	if opts.UseMock {
		log.Info().Msg("Using simulated core banking")
		gw = NewSimulator(opts.Source, opts.Resolver, log)
	} else {
		log.Info().Str("url", opts.BaseURL).Msg("Using mainframe CICS gateway")
		gw = NewCICSClient(opts.BaseURL, opts.Timeout, log)
	}
	if opts.Recorder != nil {
		gw = Instrument(gw, opts.Recorder)
	}
	return gw
}
