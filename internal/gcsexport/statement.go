package gcsexport

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
)

// DefaultPrefix is the object prefix of exported statements.
const DefaultPrefix = "statements"

// StatementLine is one movement of a statement. Amount is negative for debits.
type StatementLine struct {
	Timestamp   time.Time       `json:"timestamp"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Channel     string          `json:"channel,omitempty"`
}

// Statement is the exported document of one account over one period.
type Statement struct {
	ClientCode     string                   `json:"client_code"`
	AccountNumber  string                   `json:"account_number"`
	Currency       string                   `json:"currency"`
	Period         insights.Period          `json:"period"`
	GeneratedAt    time.Time                `json:"generated_at"`
	Credits        decimal.Decimal          `json:"credits"`
	Debits         decimal.Decimal          `json:"debits"`
	Net            decimal.Decimal          `json:"net"`
	CategoryTotals []insights.CategoryTotal `json:"category_totals"`
	Lines          []StatementLine          `json:"lines"`
}

// BuildStatement keeps the movements inside the period, oldest first, and
// totals them.
func BuildStatement(clientCode string, account domain.Account, items []insights.Categorized, period insights.Period, now time.Time) Statement {
	in := make([]insights.Categorized, 0, len(items))
	for _, it := range items {
		if period.Contains(it.Timestamp) {
			in = append(in, it)
		}
	}
	sort.SliceStable(in, func(i, j int) bool { return in[i].ID.Less(in[j].ID) })

	summary := insights.Aggregate(in)
	lines := make([]StatementLine, 0, len(in))
	for _, it := range in {
		lines = append(lines, StatementLine{
			Timestamp:   it.Timestamp,
			Reference:   it.Reference,
			Description: it.Description,
			Category:    it.Category.Name,
			Amount:      it.SignedAmount(),
			Currency:    it.Currency,
			Channel:     it.Channel,
		})
	}
	totals := summary.CategoryTotals
	if totals == nil {
		totals = []insights.CategoryTotal{}
	}
	return Statement{
		ClientCode:     clientCode,
		AccountNumber:  account.Number,
		Currency:       account.Currency,
		Period:         period,
		GeneratedAt:    now.UTC(),
		Credits:        summary.Income,
		Debits:         summary.Expense,
		Net:            summary.Balance,
		CategoryTotals: totals,
		Lines:          lines,
	}
}

// ObjectName returns the object path of a statement:
// <prefix>/<client>/<account>/<yyyy-mm>-<id>.json
func ObjectName(prefix string, s Statement, id string) string {
	return fmt.Sprintf("%s/%s/%s/%s-%s.json", prefix, s.ClientCode, s.AccountNumber, s.Period.Start.Format("2006-01"), id)
}

// Exporter uploads statements as JSON objects.
type Exporter struct {
	store  ObjectStore
	bucket string
	prefix string
	newID  func() string
}

// NewExporter creates an exporter writing to bucket under DefaultPrefix.
func NewExporter(store ObjectStore, bucket string) *Exporter {
	return &Exporter{
		store:  store,
		bucket: bucket,
		prefix: DefaultPrefix,
		newID:  func() string { return uuid.New().String() },
	}
}

// Export uploads the statement and returns its gs:// URI.
func (e *Exporter) Export(ctx context.Context, s Statement) (string, error) {
	if e.bucket == "" {
		return "", fmt.Errorf("Export: %w: no bucket configured", domain.ErrInvalidInput)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("Export: marshal statement: %w", err)
	}
	object := ObjectName(e.prefix, s, e.newID())
	if err := e.store.Put(ctx, e.bucket, object, "application/json", data); err != nil {
		return "", fmt.Errorf("Export: %w", err)
	}
	return URI(e.bucket, object), nil
}

// Fetch downloads a previously exported statement.
func (e *Exporter) Fetch(ctx context.Context, uri string) (Statement, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return Statement{}, fmt.Errorf("Fetch: %w", err)
	}
	data, err := e.store.Get(ctx, bucket, object)
	if err != nil {
		return Statement{}, fmt.Errorf("Fetch: %w", err)
	}
	var s Statement
	if err := json.Unmarshal(data, &s); err != nil {
		return Statement{}, fmt.Errorf("Fetch: unmarshal statement: %w", err)
	}
	return s, nil
}
