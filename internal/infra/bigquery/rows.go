package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/shopspring/decimal"
)

type ClientRow struct {
	ClientCode    string              `bigquery:"client_code"`    // REQUIRED
	DNI           string              `bigquery:"dni"`            // REQUIRED
	FirstNames    string              `bigquery:"first_names"`    // REQUIRED
	LastNames     string              `bigquery:"last_names"`     // REQUIRED
	BirthDate     bigquery.NullDate   `bigquery:"birth_date"`     // NULLABLE
	Email         bigquery.NullString `bigquery:"email"`          // NULLABLE
	Phone         bigquery.NullString `bigquery:"phone"`          // NULLABLE
	MonthlyIncome *big.Rat            `bigquery:"monthly_income"` // NULLABLE NUMERIC
	CreditScore   bigquery.NullInt64  `bigquery:"credit_score"`   // NULLABLE
	OnboardedAt   bigquery.NullDate   `bigquery:"onboarded_at"`   // NULLABLE
}

type AccountRow struct {
	AccountNumber    string   `bigquery:"account_number"`    // REQUIRED
	ClientCode       string   `bigquery:"client_code"`       // REQUIRED
	AccountType      string   `bigquery:"account_type"`      // REQUIRED (SAV, CHK, CTS)
	Currency         string   `bigquery:"currency"`          // REQUIRED
	LedgerBalance    *big.Rat `bigquery:"ledger_balance"`    // REQUIRED NUMERIC
	AvailableBalance *big.Rat `bigquery:"available_balance"` // REQUIRED NUMERIC
	Status           string   `bigquery:"status"`            // REQUIRED (A, B, C)
}

type CardRow struct {
	CardNumber    string              `bigquery:"card_number"`    // REQUIRED
	LinkedAccount bigquery.NullString `bigquery:"linked_account"` // NULLABLE
	ClientCode    string              `bigquery:"client_code"`    // REQUIRED
	CardType      string              `bigquery:"card_type"`      // REQUIRED (DEBIT, CREDIT)
	Brand         bigquery.NullString `bigquery:"brand"`          // NULLABLE
	Expiry        bigquery.NullDate   `bigquery:"expiry"`         // NULLABLE
	Status        string              `bigquery:"status"`         // REQUIRED
}

type MovementRow struct {
	MovementTS    time.Time           `bigquery:"movement_ts"`    // REQUIRED
	Seq           int64               `bigquery:"seq"`            // REQUIRED
	Reference     string              `bigquery:"reference"`      // REQUIRED
	AccountNumber string              `bigquery:"account_number"` // REQUIRED
	CardNumber    bigquery.NullString `bigquery:"card_number"`    // NULLABLE
	Direction     string              `bigquery:"direction"`      // REQUIRED (C, D)
	Amount        *big.Rat            `bigquery:"amount"`         // REQUIRED NUMERIC
	Currency      string              `bigquery:"currency"`       // REQUIRED
	Description   string              `bigquery:"description"`    // REQUIRED
	MCC           bigquery.NullString `bigquery:"mcc"`            // NULLABLE
	Channel       bigquery.NullString `bigquery:"channel"`        // NULLABLE
	Counterparty  bigquery.NullString `bigquery:"counterparty"`   // NULLABLE
	Location      bigquery.NullString `bigquery:"location"`       // NULLABLE
	BalanceAfter  *big.Rat            `bigquery:"balance_after"`  // NULLABLE NUMERIC
}

type CategoryRow struct {
	CategoryID       int64               `bigquery:"category_id"`        // REQUIRED
	Name             string              `bigquery:"name"`               // REQUIRED
	Keywords         []string            `bigquery:"keywords"`           // REPEATED STRING
	MCCs             []string            `bigquery:"mccs"`               // REPEATED STRING
	Icon             bigquery.NullString `bigquery:"icon"`               // NULLABLE
	Color            bigquery.NullString `bigquery:"color"`              // NULLABLE
	HighSpendMessage bigquery.NullString `bigquery:"high_spend_message"` // NULLABLE
	SavingMessage    bigquery.NullString `bigquery:"saving_message"`     // NULLABLE
	Priority         int64               `bigquery:"priority"`           // REQUIRED, match order
	IsActive         bool                `bigquery:"is_active"`          // REQUIRED
}

// ratToDecimal converts a NUMERIC value. NUMERIC carries at most 9 fractional
// digits, so the conversion is exact.
func ratToDecimal(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(r.FloatString(9))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToRat(d decimal.Decimal) *big.Rat {
	return d.Rat()
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

func nullDate(d civil.Date) bigquery.NullDate {
	return bigquery.NullDate{Date: d, Valid: !d.IsZero()}
}

func (r ClientRow) toDomain() domain.Client {
	return domain.Client{
		Code:          r.ClientCode,
		DNI:           r.DNI,
		FirstNames:    r.FirstNames,
		LastNames:     r.LastNames,
		BirthDate:     r.BirthDate.Date,
		Email:         r.Email.StringVal,
		Phone:         r.Phone.StringVal,
		MonthlyIncome: ratToDecimal(r.MonthlyIncome),
		CreditScore:   int(r.CreditScore.Int64),
		OnboardedAt:   r.OnboardedAt.Date,
	}
}

func clientRowFrom(c domain.Client) *ClientRow {
	return &ClientRow{
		ClientCode:    c.Code,
		DNI:           c.DNI,
		FirstNames:    c.FirstNames,
		LastNames:     c.LastNames,
		BirthDate:     nullDate(c.BirthDate),
		Email:         nullString(c.Email),
		Phone:         nullString(c.Phone),
		MonthlyIncome: decimalToRat(c.MonthlyIncome),
		CreditScore:   bigquery.NullInt64{Int64: int64(c.CreditScore), Valid: true},
		OnboardedAt:   nullDate(c.OnboardedAt),
	}
}

func (r AccountRow) toDomain() domain.Account {
	return domain.Account{
		Number:           r.AccountNumber,
		ClientCode:       r.ClientCode,
		Type:             r.AccountType,
		Currency:         r.Currency,
		LedgerBalance:    ratToDecimal(r.LedgerBalance),
		AvailableBalance: ratToDecimal(r.AvailableBalance),
		Status:           r.Status,
	}
}

func accountRowFrom(a domain.Account) *AccountRow {
	return &AccountRow{
		AccountNumber:    a.Number,
		ClientCode:       a.ClientCode,
		AccountType:      a.Type,
		Currency:         a.Currency,
		LedgerBalance:    decimalToRat(a.LedgerBalance),
		AvailableBalance: decimalToRat(a.AvailableBalance),
		Status:           a.Status,
	}
}

func (r CardRow) toDomain() domain.Card {
	return domain.Card{
		Number:        r.CardNumber,
		LinkedAccount: r.LinkedAccount.StringVal,
		ClientCode:    r.ClientCode,
		Type:          r.CardType,
		Brand:         r.Brand.StringVal,
		Expiry:        r.Expiry.Date,
		Status:        r.Status,
	}
}

func cardRowFrom(c domain.Card) *CardRow {
	return &CardRow{
		CardNumber:    c.Number,
		LinkedAccount: nullString(c.LinkedAccount),
		ClientCode:    c.ClientCode,
		CardType:      c.Type,
		Brand:         nullString(c.Brand),
		Expiry:        nullDate(c.Expiry),
		Status:        c.Status,
	}
}

func (r MovementRow) toDomain() domain.Transaction {
	ts := r.MovementTS.UTC()
	tx := domain.Transaction{
		ID:            domain.TxID{Timestamp: ts, Seq: r.Seq},
		Reference:     r.Reference,
		AccountNumber: r.AccountNumber,
		CardNumber:    r.CardNumber.StringVal,
		Timestamp:     ts,
		Direction:     domain.Direction(r.Direction),
		Amount:        ratToDecimal(r.Amount),
		Currency:      r.Currency,
		Description:   r.Description,
		MCC:           r.MCC.StringVal,
		Channel:       r.Channel.StringVal,
		Counterparty:  r.Counterparty.StringVal,
		Location:      r.Location.StringVal,
	}
	if r.BalanceAfter != nil {
		tx.BalanceAfter = decimal.NewNullDecimal(ratToDecimal(r.BalanceAfter))
	}
	return tx
}

func movementRowFrom(tx domain.Transaction) *MovementRow {
	row := &MovementRow{
		MovementTS:    tx.ID.Timestamp,
		Seq:           tx.ID.Seq,
		Reference:     tx.Reference,
		AccountNumber: tx.AccountNumber,
		CardNumber:    nullString(tx.CardNumber),
		Direction:     string(tx.Direction),
		Amount:        decimalToRat(tx.Amount),
		Currency:      tx.Currency,
		Description:   tx.Description,
		MCC:           nullString(tx.MCC),
		Channel:       nullString(tx.Channel),
		Counterparty:  nullString(tx.Counterparty),
		Location:      nullString(tx.Location),
	}
	if tx.BalanceAfter.Valid {
		row.BalanceAfter = decimalToRat(tx.BalanceAfter.Decimal)
	}
	return row
}

func (r CategoryRow) toDomain() domain.Category {
	return domain.Category{
		ID:               int(r.CategoryID),
		Name:             r.Name,
		Keywords:         r.Keywords,
		MCCs:             r.MCCs,
		Icon:             r.Icon.StringVal,
		Color:            r.Color.StringVal,
		HighSpendMessage: r.HighSpendMessage.StringVal,
		SavingMessage:    r.SavingMessage.StringVal,
	}
}

func categoryRowFrom(c domain.Category, priority int) *CategoryRow {
	return &CategoryRow{
		CategoryID:       int64(c.ID),
		Name:             c.Name,
		Keywords:         c.Keywords,
		MCCs:             c.MCCs,
		Icon:             nullString(c.Icon),
		Color:            nullString(c.Color),
		HighSpendMessage: nullString(c.HighSpendMessage),
		SavingMessage:    nullString(c.SavingMessage),
		Priority:         int64(priority),
		IsActive:         true,
	}
}
