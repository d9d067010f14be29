package corebanking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Copybook layouts exchanged with the CICS gateway, JSON encoded.

type clientLookupRequest struct {
	DNI string `json:"CLIENT-DNI"`
}

type clientRecord struct {
	Code          string          `json:"CLIENT-CODE"`
	DNI           string          `json:"CLIENT-DNI"`
	FirstNames    string          `json:"FIRST-NAMES"`
	LastNames     string          `json:"LAST-NAMES"`
	BirthDate     string          `json:"BIRTH-DATE"`
	Email         string          `json:"EMAIL"`
	Phone         string          `json:"PHONE"`
	MonthlyIncome decimal.Decimal `json:"MONTHLY-INCOME"`
	CreditScore   int             `json:"CREDIT-SCORE"`
}

type clientRequest struct {
	ClientCode string `json:"CLIENT-CODE"`
}

type positionRecord struct {
	Accounts []struct {
		Number   string          `json:"ACC-NUMBER"`
		Currency string          `json:"ACC-CURRENCY"`
		Balance  decimal.Decimal `json:"ACC-BALANCE"`
	} `json:"ACCOUNT-TABLE"`
	Cards []struct {
		Number      string `json:"CARD-NUMBER"`
		AccountLink string `json:"CARD-ACCOUNT-LINK"`
	} `json:"CARD-TABLE"`
}

type accountRequest struct {
	ClientCode    string `json:"CLIENT-CODE"`
	AccountNumber string `json:"ACC-NUMBER"`
}

type categoryRecord struct {
	ID    int             `json:"CAT-ID"`
	Name  string          `json:"CAT-NAME"`
	Total decimal.Decimal `json:"CAT-TOTAL"`
	Count int             `json:"CAT-COUNT"`
}

type movementRecord struct {
	ID          string          `json:"MOV-ID"`
	Reference   string          `json:"MOV-REFERENCE"`
	Timestamp   time.Time       `json:"MOV-TIMESTAMP"`
	Description string          `json:"MOV-DESCRIPTION"`
	Amount      decimal.Decimal `json:"MOV-AMOUNT"`
	Currency    string          `json:"MOV-CURRENCY"`
	Category    string          `json:"MOV-CATEGORY"`
	Channel     string          `json:"MOV-CHANNEL"`
}

type accountDetailRecord struct {
	Number     string           `json:"ACC-NUMBER"`
	Currency   string           `json:"ACC-CURRENCY"`
	Balance    decimal.Decimal  `json:"ACC-BALANCE"`
	Categories []categoryRecord `json:"CATEGORY-TABLE"`
	Movements  []movementRecord `json:"MOVEMENT-TABLE"`
}

type movementsRequest struct {
	ClientCode    string `json:"CLIENT-CODE"`
	AccountNumber string `json:"ACC-NUMBER"`
	Category      string `json:"CATEGORY"`
	Cursor        string `json:"CURSOR,omitempty"`
	PageSize      int    `json:"PAGE-SIZE"`
}

type movementsRecord struct {
	Movements  []movementRecord `json:"MOVEMENT-TABLE"`
	HasMore    bool             `json:"HAS-MORE"`
	NextCursor string           `json:"NEXT-CURSOR"`
}

type profileRecord struct {
	PeriodStart  time.Time        `json:"PERIOD-START"`
	PeriodEnd    time.Time        `json:"PERIOD-END"`
	Income       decimal.Decimal  `json:"INCOME"`
	Expense      decimal.Decimal  `json:"EXPENSE"`
	Balance      decimal.Decimal  `json:"BALANCE"`
	Categories   []categoryRecord `json:"CATEGORY-TABLE"`
	BucketSmall  int              `json:"BUCKET-SMALL"`
	BucketMedium int              `json:"BUCKET-MEDIUM"`
	BucketLarge  int              `json:"BUCKET-LARGE"`
	Liquidity    decimal.Decimal  `json:"LIQUIDITY"`
}
