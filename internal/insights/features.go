package insights

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/shopspring/decimal"
)

// ClientFeatures is the behavioural feature vector of a client.
type ClientFeatures struct {
	ClientCode        string          `json:"client_code"`
	Age               int             `json:"age"`
	MonthlyIncome     decimal.Decimal `json:"monthly_income"`
	CreditScore       int             `json:"credit_score"`
	TotalBalance      decimal.Decimal `json:"total_balance"`
	ActiveAccounts    int             `json:"active_accounts"`
	ActiveCreditCards int             `json:"active_credit_cards"`
	MovementTotal     decimal.Decimal `json:"movement_total"`
	MovementAverage   decimal.Decimal `json:"movement_average"`
	MovementCount     int             `json:"movement_count"`
}

// AgeOn returns the age in whole years on the given day.
func AgeOn(birth, today civil.Date) int {
	if birth.IsZero() {
		return 0
	}
	age := today.Year - birth.Year
	if today.Month < birth.Month || (today.Month == birth.Month && today.Day < birth.Day) {
		age--
	}
	return age
}

// Liquidity sums the available balance of active accounts.
func Liquidity(accounts []domain.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		if a.IsActive() {
			total = total.Add(a.AvailableBalance)
		}
	}
	return total
}

// BuildFeatures derives the feature vector from a client's records.
func BuildFeatures(client domain.Client, accounts []domain.Account, cards []domain.Card, movements []domain.Transaction, now time.Time) ClientFeatures {
	f := ClientFeatures{
		ClientCode:      client.Code,
		Age:             AgeOn(client.BirthDate, civil.DateOf(now)),
		MonthlyIncome:   client.MonthlyIncome,
		CreditScore:     client.CreditScore,
		TotalBalance:    Liquidity(accounts),
		MovementTotal:   decimal.Zero,
		MovementAverage: decimal.Zero,
	}
	for _, a := range accounts {
		if a.IsActive() {
			f.ActiveAccounts++
		}
	}
	for _, c := range cards {
		if c.IsActive() && c.Type == domain.CardCredit {
			f.ActiveCreditCards++
		}
	}
	for _, m := range movements {
		f.MovementTotal = f.MovementTotal.Add(m.Amount)
	}
	f.MovementCount = len(movements)
	if f.MovementCount > 0 {
		f.MovementAverage = f.MovementTotal.Div(decimal.NewFromInt(int64(f.MovementCount)))
	}
	return f
}
