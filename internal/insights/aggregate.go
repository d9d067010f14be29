package insights

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the debit sum and count of one category.
type CategoryTotal struct {
	CategoryID int             `json:"category_id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// Summary is the aggregate of a client's movements.
type Summary struct {
	CategoryTotals []CategoryTotal
	Income         decimal.Decimal
	Expense        decimal.Decimal
	Balance        decimal.Decimal
	// TopCategory is the category with the largest debit total, nil without debits.
	TopCategory *CategoryTotal
}

// Aggregate sums debits per category and income, expense and balance overall.
// Category totals are ordered by total descending, then by category id.
func Aggregate(items []Categorized) Summary {
	s := Summary{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	index := make(map[string]int)
	for _, it := range items {
		if !it.IsDebit() {
			s.Income = s.Income.Add(it.Amount)
			continue
		}
		s.Expense = s.Expense.Add(it.Amount)
		i, ok := index[it.Category.Name]
		if !ok {
			i = len(s.CategoryTotals)
			index[it.Category.Name] = i
			s.CategoryTotals = append(s.CategoryTotals, CategoryTotal{
				CategoryID: it.Category.ID,
				Name:       it.Category.Name,
				Total:      decimal.Zero,
			})
		}
		s.CategoryTotals[i].Total = s.CategoryTotals[i].Total.Add(it.Amount)
		s.CategoryTotals[i].Count++
	}
	s.Balance = s.Income.Sub(s.Expense)

	s.TopCategory = RankCategoryTotals(s.CategoryTotals)
	return s
}

// RankCategoryTotals sorts totals in place by total descending, then by
// category id, and returns a copy of the first one. It returns nil for no totals.
func RankCategoryTotals(totals []CategoryTotal) *CategoryTotal {
	sort.SliceStable(totals, func(i, j int) bool {
		a, b := totals[i], totals[j]
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		return a.CategoryID < b.CategoryID
	})
	if len(totals) == 0 {
		return nil
	}
	top := totals[0]
	return &top
}

// TopCategoryID returns the id of the top category, nil without debits.
func (s Summary) TopCategoryID() *int {
	if s.TopCategory == nil {
		return nil
	}
	id := s.TopCategory.CategoryID
	return &id
}

// FinancialProfile classifies the income/expense relation of a period.
type FinancialProfile struct {
	Name        string `json:"profile_name"`
	Description string `json:"profile_description"`
	Level       int    `json:"profile_level"`
}

// Profile names.
const (
	ProfileInactive  = "Inactive Account"
	ProfileImpulsive = "Impulsive Spender"
	ProfileSaver     = "Strategic Saver"
	ProfileBalanced  = "Balanced Investor"
)

var saverRatio = decimal.NewFromFloat(0.3)

// ClassifyProfile applies the profile rules in order; the first match wins.
func ClassifyProfile(income, expense decimal.Decimal) FinancialProfile {
	switch {
	case income.IsZero():
		return FinancialProfile{Name: ProfileInactive, Description: "No income was recorded in the period.", Level: 0}
	case expense.GreaterThan(income):
		return FinancialProfile{Name: ProfileImpulsive, Description: "You spent more than you earned.", Level: 1}
	case expense.LessThan(income.Mul(saverRatio)):
		return FinancialProfile{Name: ProfileSaver, Description: "You kept most of what you earned.", Level: 3}
	default:
		return FinancialProfile{Name: ProfileBalanced, Description: "Your spending stays within your income.", Level: 2}
	}
}

// Profile classifies the summary.
func (s Summary) Profile() FinancialProfile {
	return ClassifyProfile(s.Income, s.Expense)
}
