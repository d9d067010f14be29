package insights

import (
	"strings"

	"github.com/dvloznov/banking-coach/internal/domain"
)

// Categorizer maps free-text descriptions to categories by keyword.
// Categories are tried in table order, so earlier entries win ties.
type Categorizer struct {
	categories []domain.Category
	keywords   [][]string
	fallback   domain.Category
}

// NewCategorizer builds a categorizer over an ordered category table. A category
// named OTHER in the table becomes the fallback; otherwise a bare OTHER is used.
func NewCategorizer(categories []domain.Category) *Categorizer {
	c := &Categorizer{fallback: domain.Category{Name: domain.OtherCategory}}
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, domain.OtherCategory) {
			c.fallback = cat
			continue
		}
		upper := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			if kw = strings.ToUpper(kw); kw != "" {
				upper = append(upper, kw)
			}
		}
		c.categories = append(c.categories, cat)
		c.keywords = append(c.keywords, upper)
	}
	return c
}

// Categorize returns the first category with a keyword contained in description.
func (c *Categorizer) Categorize(description string) domain.Category {
	text := strings.ToUpper(description)
	for i, cat := range c.categories {
		for _, kw := range c.keywords[i] {
			if strings.Contains(text, kw) {
				return cat
			}
		}
	}
	return c.fallback
}

// Fallback returns the category used when nothing matches.
func (c *Categorizer) Fallback() domain.Category {
	return c.fallback
}

// DefaultCategories is the built-in keyword table.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{
			ID:       1,
			Name:     "FOOD",
			Keywords: []string{"RESTAURANT", "MARKET", "SUPER", "BURGER", "PIZZA", "STARBUCKS", "KFC"},
			MCCs:     []string{"5411", "5812", "5814"},
			Icon:     "food",
			Color:    "#F4A261",
		},
		{
			ID:       2,
			Name:     "TRANSPORT",
			Keywords: []string{"UBER", "CABIFY", "GAS STATION", "TOLL", "TAXI", "METRO"},
			MCCs:     []string{"4111", "4121", "5541"},
			Icon:     "transport",
			Color:    "#2A9D8F",
		},
		{
			ID:       3,
			Name:     "UTILITIES",
			Keywords: []string{"ELECTRIC", "WATER", "PHONE", "INTERNET", "NETFLIX", "SPOTIFY"},
			MCCs:     []string{"4814", "4899", "4900"},
			Icon:     "utilities",
			Color:    "#264653",
		},
		{
			ID:       4,
			Name:     "HEALTH",
			Keywords: []string{"PHARMACY", "CLINIC", "HOSPITAL", "DOCTOR"},
			MCCs:     []string{"5912", "8011", "8062"},
			Icon:     "health",
			Color:    "#E76F51",
		},
		{
			ID:       5,
			Name:     "CASH",
			Keywords: []string{"ATM", "CASH WITHDRAWAL", "WITHDRAWAL"},
			MCCs:     []string{"6011"},
			Icon:     "cash",
			Color:    "#8AB17D",
		},
		{
			ID:    6,
			Name:  domain.OtherCategory,
			Icon:  "other",
			Color: "#9E9E9E",
		},
	}
}
