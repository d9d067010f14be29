package insights

import (
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
)

// Period is a half-open time range [Start, End).
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// ActivityWindow returns the current month when it has movements. Otherwise it
// returns the month of the most recent movement; with no movements at all it
// returns the current month.
func ActivityWindow(txs []domain.Transaction, now time.Time) Period {
	current := MonthOf(now)
	var latest time.Time
	for _, tx := range txs {
		if current.Contains(tx.Timestamp) {
			return current
		}
		if tx.Timestamp.After(latest) {
			latest = tx.Timestamp
		}
	}
	if latest.IsZero() {
		return current
	}
	return MonthOf(latest.In(now.Location()))
}

// InPeriod keeps the movements inside p, preserving order.
func InPeriod(txs []domain.Transaction, p Period) []domain.Transaction {
	var out []domain.Transaction
	for _, tx := range txs {
		if p.Contains(tx.Timestamp) {
			out = append(out, tx)
		}
	}
	return out
}
