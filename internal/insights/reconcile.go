package insights

import (
	"github.com/shopspring/decimal"
)

// PositionAccount is an account as listed by the global position transaction.
type PositionAccount struct {
	Number   string
	Currency string
	Balance  decimal.Decimal
}

// PositionCard is a card as listed by the global position transaction.
// LinkedAccount is empty for cards without an account.
type PositionCard struct {
	Number        string
	LinkedAccount string
}

// ReconciledAccount is one account of the unified position view.
type ReconciledAccount struct {
	Number     string          `json:"account_number"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	MaskedCard *string         `json:"masked_card"`
}

// Reconcile joins cards to accounts by account number. Only the first linked
// card of each account is surfaced.
func Reconcile(accounts []PositionAccount, cards []PositionCard) []ReconciledAccount {
	out := make([]ReconciledAccount, 0, len(accounts))
	for _, acc := range accounts {
		row := ReconciledAccount{
			Number:   acc.Number,
			Currency: acc.Currency,
			Balance:  acc.Balance,
		}
		for _, card := range cards {
			if card.LinkedAccount != "" && card.LinkedAccount == acc.Number {
				masked := MaskCardNumber(card.Number)
				row.MaskedCard = &masked
				break
			}
		}
		out = append(out, row)
	}
	return out
}

// MaskCardNumber renders a 16-digit PAN as "1234 **** **** 5678". Other
// lengths are returned unchanged.
func MaskCardNumber(number string) string {
	if len(number) != 16 {
		return number
	}
	return number[:4] + " **** **** " + number[12:]
}
