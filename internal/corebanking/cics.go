package corebanking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every call to the CICS gateway.
const DefaultTimeout = 5 * time.Second

// CICSClient calls the mainframe programs through the CICS HTTP gateway.
// Each transaction is a POST of a JSON copybook to <baseURL>/<trx>.
type CICSClient struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ Gateway = (*CICSClient)(nil)

// NewCICSClient creates a client for the gateway at baseURL.
func NewCICSClient(baseURL string, timeout time.Duration, log zerolog.Logger) *CICSClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CICSClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// call posts req to the transaction endpoint and decodes the reply into resp.
func (c *CICSClient) call(ctx context.Context, trx string, req, resp interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", trx, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+trx, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: building request: %w", trx, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Str("trx", trx).Msg("Mainframe call failed")
		return fmt.Errorf("%s: %w: %v", trx, domain.ErrUpstreamUnavailable, err)
	}
	defer httpResp.Body.Close()

	switch {
	case httpResp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", trx, domain.ErrNotFound)
	case httpResp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%s: %w", trx, domain.ErrInvalidInput)
	case httpResp.StatusCode < 200 || httpResp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		c.log.Error().
			Str("trx", trx).
			Int("status", httpResp.StatusCode).
			Str("body", string(snippet)).
			Msg("Mainframe returned an error status")
		return fmt.Errorf("%s: %w: status %d", trx, domain.ErrUpstreamUnavailable, httpResp.StatusCode)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return fmt.Errorf("%s: %w: decoding reply: %v", trx, domain.ErrUpstreamUnavailable, err)
	}
	return nil
}

// FindClient calls TRX000.
func (c *CICSClient) FindClient(ctx context.Context, dni string) (domain.Client, error) {
	var rec clientRecord
	if err := c.call(ctx, TrxClientLookup, clientLookupRequest{DNI: dni}, &rec); err != nil {
		return domain.Client{}, fmt.Errorf("FindClient: %w", err)
	}
	client := domain.Client{
		Code:          rec.Code,
		DNI:           rec.DNI,
		FirstNames:    rec.FirstNames,
		LastNames:     rec.LastNames,
		Email:         rec.Email,
		Phone:         rec.Phone,
		MonthlyIncome: rec.MonthlyIncome,
		CreditScore:   rec.CreditScore,
	}
	if rec.BirthDate != "" {
		d, err := civil.ParseDate(rec.BirthDate)
		if err != nil {
			return domain.Client{}, fmt.Errorf("FindClient: %w: birth date %q", domain.ErrUpstreamUnavailable, rec.BirthDate)
		}
		client.BirthDate = d
	}
	return client, nil
}

// GlobalPosition calls TRX001.
func (c *CICSClient) GlobalPosition(ctx context.Context, clientCode string) (GlobalPosition, error) {
	var rec positionRecord
	if err := c.call(ctx, TrxGlobalPosition, clientRequest{ClientCode: clientCode}, &rec); err != nil {
		return GlobalPosition{}, fmt.Errorf("GlobalPosition: %w", err)
	}
	pos := GlobalPosition{
		ClientCode: clientCode,
		Accounts:   make([]insights.PositionAccount, 0, len(rec.Accounts)),
		Cards:      make([]insights.PositionCard, 0, len(rec.Cards)),
	}
	for _, a := range rec.Accounts {
		pos.Accounts = append(pos.Accounts, insights.PositionAccount{
			Number:   strings.TrimSpace(a.Number),
			Currency: a.Currency,
			Balance:  a.Balance,
		})
	}
	for _, card := range rec.Cards {
		pos.Cards = append(pos.Cards, insights.PositionCard{
			Number:        strings.TrimSpace(card.Number),
			LinkedAccount: strings.TrimSpace(card.AccountLink),
		})
	}
	return pos, nil
}

// AccountDetail calls TRX002.
func (c *CICSClient) AccountDetail(ctx context.Context, clientCode, number string) (AccountDetail, error) {
	var rec accountDetailRecord
	req := accountRequest{ClientCode: clientCode, AccountNumber: number}
	if err := c.call(ctx, TrxAccountDetail, req, &rec); err != nil {
		return AccountDetail{}, fmt.Errorf("AccountDetail: %w", err)
	}
	return AccountDetail{
		Number:         rec.Number,
		Currency:       rec.Currency,
		Balance:        rec.Balance,
		CategoryTotals: toCategoryTotals(rec.Categories),
		Recent:         toPageItems(rec.Movements),
	}, nil
}

// CategoryMovements calls TRX003.
func (c *CICSClient) CategoryMovements(ctx context.Context, clientCode, number string, req insights.PageRequest) (insights.Page, error) {
	if strings.TrimSpace(req.Category) == "" {
		return insights.Page{}, fmt.Errorf("CategoryMovements: %w: category is required", domain.ErrInvalidInput)
	}
	wire := movementsRequest{
		ClientCode:    clientCode,
		AccountNumber: number,
		Category:      req.Category,
		PageSize:      insights.EffectivePageSize(req.Size),
	}
	if req.Cursor != nil {
		wire.Cursor = req.Cursor.String()
	}
	var rec movementsRecord
	if err := c.call(ctx, TrxMovements, wire, &rec); err != nil {
		return insights.Page{}, fmt.Errorf("CategoryMovements: %w", err)
	}
	page := insights.Page{Items: toPageItems(rec.Movements), HasMore: rec.HasMore}
	if len(page.Items) > wire.PageSize {
		page.Items = page.Items[:wire.PageSize]
		page.HasMore = true
		page.NextCursor = page.Items[wire.PageSize-1].ID
		return page, nil
	}
	if rec.HasMore {
		page.NextCursor = rec.NextCursor
	}
	return page, nil
}

// Profile360 calls TRX005.
func (c *CICSClient) Profile360(ctx context.Context, clientCode string) (Profile360, error) {
	var rec profileRecord
	if err := c.call(ctx, TrxProfile360, clientRequest{ClientCode: clientCode}, &rec); err != nil {
		return Profile360{}, fmt.Errorf("Profile360: %w", err)
	}
	p := Profile360{
		ClientCode:     clientCode,
		Period:         insights.Period{Start: rec.PeriodStart, End: rec.PeriodEnd},
		Income:         rec.Income,
		Expense:        rec.Expense,
		Balance:        rec.Balance,
		CategoryTotals: toCategoryTotals(rec.Categories),
		Buckets: insights.BucketCounts{
			Small:  rec.BucketSmall,
			Medium: rec.BucketMedium,
			Large:  rec.BucketLarge,
		},
		Liquidity: rec.Liquidity,
	}
	return p.Normalize(), nil
}

func toCategoryTotals(recs []categoryRecord) []insights.CategoryTotal {
	out := make([]insights.CategoryTotal, 0, len(recs))
	for _, r := range recs {
		out = append(out, insights.CategoryTotal{
			CategoryID: r.ID,
			Name:       r.Name,
			Total:      r.Total,
			Count:      r.Count,
		})
	}
	return out
}

func toPageItems(recs []movementRecord) []insights.PageItem {
	out := make([]insights.PageItem, 0, len(recs))
	for _, m := range recs {
		out = append(out, insights.PageItem{
			ID:          m.ID,
			Reference:   m.Reference,
			Timestamp:   m.Timestamp,
			Description: strings.TrimSpace(m.Description),
			Amount:      m.Amount,
			Currency:    m.Currency,
			Category:    m.Category,
			Channel:     m.Channel,
		})
	}
	return out
}
