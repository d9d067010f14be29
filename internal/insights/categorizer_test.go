package insights

import (
	"testing"

	"github.com/dvloznov/banking-coach/internal/domain"
)

func TestCategorizer_Categorize(t *testing.T) {
	c := NewCategorizer(DefaultCategories())

	tests := []struct {
		description string
		want        string
	}{
		{"POS STARBUCKS MIRAFLORES", "FOOD"},
		{"pos starbucks miraflores", "FOOD"},
		{"Uber *trip 8812", "TRANSPORT"},
		{"NETFLIX.COM", "UTILITIES"},
		{"FARMA PHARMACY 24H", "HEALTH"},
		{"ATM LARCO 201", "CASH"},
		{"TRANSFER TO J. PEREZ", domain.OtherCategory},
		{"", domain.OtherCategory},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got := c.Categorize(tt.description)
			if got.Name != tt.want {
				t.Errorf("Categorize(%q) = %q, want %q", tt.description, got.Name, tt.want)
			}
		})
	}
}

func TestCategorizer_TableOrderWinsTies(t *testing.T) {
	// "UBER EATS PIZZA" matches FOOD (PIZZA) and TRANSPORT (UBER); FOOD comes first.
	c := NewCategorizer(DefaultCategories())
	if got := c.Categorize("UBER EATS PIZZA"); got.Name != "FOOD" {
		t.Errorf("Categorize() = %q, want FOOD", got.Name)
	}

	reversed := NewCategorizer([]domain.Category{
		{ID: 2, Name: "TRANSPORT", Keywords: []string{"uber"}},
		{ID: 1, Name: "FOOD", Keywords: []string{"pizza"}},
	})
	if got := reversed.Categorize("UBER EATS PIZZA"); got.Name != "TRANSPORT" {
		t.Errorf("Categorize() with reversed table = %q, want TRANSPORT", got.Name)
	}
}

func TestCategorizer_Deterministic(t *testing.T) {
	c := NewCategorizer(DefaultCategories())
	first := c.Categorize("Market Wong Benavides")
	for i := 0; i < 10; i++ {
		if got := c.Categorize("Market Wong Benavides"); got.Name != first.Name {
			t.Fatalf("run %d: got %q, want %q", i, got.Name, first.Name)
		}
	}
}

func TestCategorizer_FallbackWithoutOtherEntry(t *testing.T) {
	c := NewCategorizer([]domain.Category{{ID: 1, Name: "FOOD", Keywords: []string{"PIZZA"}}})
	got := c.Categorize("BOOKSTORE")
	if got.Name != domain.OtherCategory || got.ID != 0 {
		t.Errorf("Categorize() = %+v, want bare OTHER", got)
	}
}

func TestResolver_MCCWinsOverKeywords(t *testing.T) {
	r := NewResolver(DefaultCategories())

	tests := []struct {
		name string
		tx   domain.Transaction
		want string
	}{
		{"known mcc", domain.Transaction{MCC: "5912", Description: "UBER"}, "HEALTH"},
		{"unknown mcc falls back to keywords", domain.Transaction{MCC: "9999", Description: "UBER"}, "TRANSPORT"},
		{"no mcc", domain.Transaction{Description: "KFC"}, "FOOD"},
		{"nothing matches", domain.Transaction{Description: "TRANSFER"}, domain.OtherCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.tx); got.Name != tt.want {
				t.Errorf("Resolve() = %q, want %q", got.Name, tt.want)
			}
		})
	}
}
