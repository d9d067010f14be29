package insights

import (
	"github.com/dvloznov/banking-coach/internal/domain"
)

// Categorized is a transaction annotated with its resolved category.
type Categorized struct {
	domain.Transaction
	Category domain.Category
}

// Resolver assigns categories to transactions. A known merchant category code
// wins; otherwise the description goes through the keyword categorizer.
type Resolver struct {
	byMCC       map[string]domain.Category
	categorizer *Categorizer
}

// NewResolver builds a resolver from a category table.
func NewResolver(categories []domain.Category) *Resolver {
	byMCC := make(map[string]domain.Category)
	for _, cat := range categories {
		for _, mcc := range cat.MCCs {
			if _, taken := byMCC[mcc]; !taken {
				byMCC[mcc] = cat
			}
		}
	}
	return &Resolver{
		byMCC:       byMCC,
		categorizer: NewCategorizer(categories),
	}
}

// Resolve returns the category for a single transaction.
func (r *Resolver) Resolve(tx domain.Transaction) domain.Category {
	if tx.MCC != "" {
		if cat, ok := r.byMCC[tx.MCC]; ok {
			return cat
		}
	}
	return r.categorizer.Categorize(tx.Description)
}

// Annotate resolves every transaction, preserving order.
func (r *Resolver) Annotate(txs []domain.Transaction) []Categorized {
	out := make([]Categorized, len(txs))
	for i, tx := range txs {
		out[i] = Categorized{Transaction: tx, Category: r.Resolve(tx)}
	}
	return out
}

// Categorizer exposes the keyword categorizer used as fallback.
func (r *Resolver) Categorizer() *Categorizer {
	return r.categorizer
}
