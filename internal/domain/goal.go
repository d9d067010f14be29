package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Goal statuses.
const (
	GoalInProgress = "IN_PROGRESS"
	GoalAchieved   = "ACHIEVED"
)

// Goal is a savings target set by a user.
type Goal struct {
	ID           int64
	UserID       string
	Title        string
	Target       decimal.Decimal
	Saved        decimal.Decimal
	Deadline     civil.Date
	Icon         string
	Status       string
	NotionPageID string
	UpdatedAt    time.Time
}

// Budget is a monthly spending limit for one category.
type Budget struct {
	UserID       string
	Category     string
	MonthlyLimit decimal.Decimal
	AlertPercent int
}

// DefaultBudgetAlertPercent is used when a budget does not set its own threshold.
const DefaultBudgetAlertPercent = 80
