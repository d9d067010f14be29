package insights

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Risk is the likelihood label of reaching a goal by its deadline.
type Risk string

const (
	RiskOverdue   Risk = "OVERDUE"
	RiskCompleted Risk = "COMPLETED"
	RiskHigh      Risk = "HIGH"
	RiskMedium    Risk = "MEDIUM"
	RiskLow       Risk = "LOW"
)

var hundred = decimal.NewFromInt(100)

// GoalStatus is the computed state of a goal on a given day.
type GoalStatus struct {
	Progress      decimal.Decimal
	DaysRemaining int
	Risk          Risk
}

// ProgressPercent returns the progress rounded to one decimal for display.
func (g GoalStatus) ProgressPercent() float64 {
	return g.Progress.Round(1).InexactFloat64()
}

// GoalProgress returns saved/target as a percentage, 0 for a non-positive target.
func GoalProgress(target, saved decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return saved.Div(target).Mul(hundred)
}

// EvaluateGoal computes progress, remaining days and the risk label. Rules
// apply in order and the first match wins.
func EvaluateGoal(target, saved decimal.Decimal, deadline, today civil.Date) GoalStatus {
	progress := GoalProgress(target, saved)
	days := deadline.DaysSince(today)

	var risk Risk
	switch {
	case days < 0:
		risk = RiskOverdue
	case progress.GreaterThanOrEqual(hundred):
		risk = RiskCompleted
	case days < 30 && progress.LessThan(decimal.NewFromInt(80)):
		risk = RiskHigh
	case days < 90 && progress.LessThan(decimal.NewFromInt(50)):
		risk = RiskMedium
	default:
		risk = RiskLow
	}
	return GoalStatus{Progress: progress, DaysRemaining: days, Risk: risk}
}
