package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Account status codes used by the core.
const (
	AccountActive    = "A"
	AccountBlocked   = "B"
	AccountCancelled = "C"
)

// Card types.
const (
	CardDebit  = "DEBIT"
	CardCredit = "CREDIT"
)

// Client is a core-banking customer.
type Client struct {
	Code          string
	DNI           string
	FirstNames    string
	LastNames     string
	BirthDate     civil.Date
	Email         string
	Phone         string
	MonthlyIncome decimal.Decimal
	CreditScore   int
	OnboardedAt   civil.Date
}

// Account is a deposit account held by a client.
type Account struct {
	Number           string
	ClientCode       string
	Type             string // SAV, CHK, CTS
	Currency         string
	LedgerBalance    decimal.Decimal
	AvailableBalance decimal.Decimal
	Status           string
}

// IsActive reports whether the account can move money.
func (a Account) IsActive() bool {
	return a.Status == AccountActive
}

// Card is a debit or credit card, optionally linked to an account.
type Card struct {
	Number        string
	LinkedAccount string
	ClientCode    string
	Type          string
	Brand         string
	Expiry        civil.Date
	Status        string
}

// IsActive reports whether the card is usable.
func (c Card) IsActive() bool {
	return c.Status == AccountActive
}

// User is the mobile-app identity linked to a core client.
type User struct {
	ID           string // equals the core client code
	DNI          string
	PasswordHash string
	Nickname     string
	AvatarURL    string
	Level        int
	Archetype    string
	CreatedAt    time.Time
}
