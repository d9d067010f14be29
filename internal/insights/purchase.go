package insights

import (
	"fmt"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/shopspring/decimal"
)

// BudgetCheck reports where a purchase leaves a category budget.
type BudgetCheck struct {
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	SpentToDate  decimal.Decimal `json:"spent_to_date"`
	UsedPercent  decimal.Decimal `json:"used_percent"`
	Alert        bool            `json:"alert"`
	OverBudget   bool            `json:"over_budget"`
}

// PurchaseCheck is the outcome of simulating a purchase.
type PurchaseCheck struct {
	Amount           decimal.Decimal `json:"amount"`
	CanAfford        bool            `json:"can_afford"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Advice           string          `json:"advice"`
	Budget           *BudgetCheck    `json:"budget,omitempty"`
}

// CheckPurchase compares a purchase with the available liquidity and, when a
// budget is given, with the month-to-date spend of its category.
func CheckPurchase(amount, liquidity decimal.Decimal, budget *domain.Budget, spentToDate decimal.Decimal) (PurchaseCheck, error) {
	if !amount.IsPositive() {
		return PurchaseCheck{}, fmt.Errorf("CheckPurchase: %w: amount must be positive", domain.ErrInvalidInput)
	}

	check := PurchaseCheck{
		Amount:         amount,
		CurrentBalance: liquidity,
		CanAfford:      liquidity.GreaterThanOrEqual(amount),
	}
	if check.CanAfford {
		check.RemainingBalance = liquidity.Sub(amount)
		check.Advice = "Purchase is viable."
	} else {
		check.RemainingBalance = liquidity
		check.Advice = "Insufficient balance."
	}

	if budget != nil && budget.MonthlyLimit.IsPositive() {
		alertAt := budget.AlertPercent
		if alertAt <= 0 {
			alertAt = domain.DefaultBudgetAlertPercent
		}
		projected := spentToDate.Add(amount)
		used := projected.Div(budget.MonthlyLimit).Mul(hundred).Round(1)
		check.Budget = &BudgetCheck{
			Category:     budget.Category,
			MonthlyLimit: budget.MonthlyLimit,
			SpentToDate:  spentToDate,
			UsedPercent:  used,
			Alert:        used.GreaterThanOrEqual(decimal.NewFromInt(int64(alertAt))),
			OverBudget:   projected.GreaterThan(budget.MonthlyLimit),
		}
		if check.CanAfford && check.Budget.OverBudget {
			check.Advice = "Purchase is viable but exceeds your " + budget.Category + " budget."
		}
	}
	return check, nil
}
