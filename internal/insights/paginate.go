package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// DefaultPageSize is used when the request does not set a size.
	DefaultPageSize = 15
	// MaxPageSize bounds a single page.
	MaxPageSize = 100
)

// PageRequest selects one page of movements of a single category.
type PageRequest struct {
	Category string
	Cursor   *domain.TxID // last id seen; nil for the first page
	Size     int
}

// PageItem is a movement as returned to the app. Amount is negative for debits.
type PageItem struct {
	ID          string          `json:"id"`
	Reference   string          `json:"reference"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Channel     string          `json:"channel,omitempty"`
}

// Page is one slice of a category's movements, newest first.
type Page struct {
	Items      []PageItem `json:"items"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// EffectivePageSize applies the default to a non-positive size and caps it at
// MaxPageSize.
func EffectivePageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Paginate filters items by exact category name, orders them by id descending
// and returns the page after the cursor. Ownership of the account must be
// checked by the caller.
func Paginate(items []Categorized, req PageRequest) (Page, error) {
	if strings.TrimSpace(req.Category) == "" {
		return Page{}, fmt.Errorf("Paginate: %w: category is required", domain.ErrInvalidInput)
	}
	size := EffectivePageSize(req.Size)

	var eligible []Categorized
	for _, it := range items {
		if it.Category.Name != req.Category {
			continue
		}
		if req.Cursor != nil && !it.ID.Less(*req.Cursor) {
			continue
		}
		eligible = append(eligible, it)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[j].ID.Less(eligible[i].ID)
	})

	// One extra row tells whether another page exists.
	if len(eligible) > size+1 {
		eligible = eligible[:size+1]
	}
	page := Page{Items: make([]PageItem, 0, size)}
	if len(eligible) > size {
		page.HasMore = true
		eligible = eligible[:size]
	}
	for _, it := range eligible {
		page.Items = append(page.Items, PageItem{
			ID:          it.ID.String(),
			Reference:   it.Reference,
			Timestamp:   it.Timestamp,
			Description: it.Description,
			Amount:      it.SignedAmount(),
			Currency:    it.Currency,
			Category:    it.Category.Name,
			Channel:     it.Channel,
		})
	}
	if page.HasMore {
		page.NextCursor = eligible[len(eligible)-1].ID.String()
	}
	return page, nil
}
