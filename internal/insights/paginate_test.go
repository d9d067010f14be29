package insights

import (
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/shopspring/decimal"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// foodRows returns n FOOD debits with strictly increasing ids.
func foodRows(n int) []Categorized {
	food := domain.Category{ID: 1, Name: "FOOD"}
	rows := make([]Categorized, 0, n)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		rows = append(rows, Categorized{
			Transaction: domain.Transaction{
				ID:          domain.TxID{Timestamp: ts, Seq: int64(i)},
				Timestamp:   ts,
				Direction:   domain.DirectionDebit,
				Amount:      decimal.NewFromInt(int64(10 + i)),
				Description: "MARKET",
			},
			Category: food,
		})
	}
	return rows
}

func TestPaginate_FirstPageHasMore(t *testing.T) {
	page, err := Paginate(foodRows(16), PageRequest{Category: "FOOD", Size: 15})
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(page.Items) != 15 {
		t.Errorf("len(Items) = %d, want 15", len(page.Items))
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true")
	}
	if page.NextCursor != page.Items[14].ID {
		t.Errorf("NextCursor = %q, want last item id %q", page.NextCursor, page.Items[14].ID)
	}
}

func TestPaginate_DefaultSize(t *testing.T) {
	page, err := Paginate(foodRows(20), PageRequest{Category: "FOOD"})
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(page.Items) != DefaultPageSize || !page.HasMore {
		t.Errorf("got %d items, has_more=%v; want %d, true", len(page.Items), page.HasMore, DefaultPageSize)
	}
}

func TestPaginate_CursorAtSmallestIDIsEmpty(t *testing.T) {
	rows := foodRows(16)
	smallest := rows[0].ID

	page, err := Paginate(rows, PageRequest{Category: "FOOD", Cursor: &smallest, Size: 15})
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(page.Items) != 0 || page.HasMore {
		t.Errorf("got %d items, has_more=%v; want 0, false", len(page.Items), page.HasMore)
	}
}

func TestPaginate_WalksAllPagesDescending(t *testing.T) {
	rows := foodRows(16)
	var seen []string
	var cursor *domain.TxID
	for i := 0; i < 5; i++ {
		page, err := Paginate(rows, PageRequest{Category: "FOOD", Cursor: cursor, Size: 5})
		if err != nil {
			t.Fatalf("Paginate() error = %v", err)
		}
		for _, it := range page.Items {
			seen = append(seen, it.ID)
		}
		if !page.HasMore {
			break
		}
		next, err := domain.ParseTxID(page.NextCursor)
		if err != nil {
			t.Fatalf("ParseTxID(%q) error = %v", page.NextCursor, err)
		}
		cursor = &next
	}

	if len(seen) != 16 {
		t.Fatalf("saw %d items, want 16", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		prev, _ := domain.ParseTxID(seen[i-1])
		cur, _ := domain.ParseTxID(seen[i])
		if !cur.Less(prev) {
			t.Fatalf("items not strictly descending at %d: %s then %s", i, seen[i-1], seen[i])
		}
	}
}

func TestPaginate_SignsAndFilter(t *testing.T) {
	ts := base
	rows := []Categorized{
		{Transaction: domain.Transaction{ID: domain.TxID{Timestamp: ts, Seq: 1}, Direction: domain.DirectionDebit, Amount: decimal.NewFromInt(30)}, Category: domain.Category{Name: "FOOD"}},
		{Transaction: domain.Transaction{ID: domain.TxID{Timestamp: ts, Seq: 2}, Direction: domain.DirectionCredit, Amount: decimal.NewFromInt(5)}, Category: domain.Category{Name: "FOOD"}},
		{Transaction: domain.Transaction{ID: domain.TxID{Timestamp: ts, Seq: 3}, Direction: domain.DirectionDebit, Amount: decimal.NewFromInt(70)}, Category: domain.Category{Name: "TRANSPORT"}},
	}

	page, err := Paginate(rows, PageRequest{Category: "FOOD"})
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(page.Items))
	}
	// Same timestamp: sequence decides, newest first.
	if !page.Items[0].Amount.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Items[0].Amount = %s, want 5 (credit stays positive)", page.Items[0].Amount)
	}
	if !page.Items[1].Amount.Equal(decimal.NewFromInt(-30)) {
		t.Errorf("Items[1].Amount = %s, want -30 (debit negated)", page.Items[1].Amount)
	}
}

func TestPaginate_CategoryRequired(t *testing.T) {
	_, err := Paginate(foodRows(3), PageRequest{Category: "  "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Paginate() error = %v, want ErrInvalidInput", err)
	}
}

func TestPaginate_CategoryIsExactMatch(t *testing.T) {
	page, err := Paginate(foodRows(3), PageRequest{Category: "food"})
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0 for a differently cased name", len(page.Items))
	}
}

func TestTxID_RoundTripOrdering(t *testing.T) {
	// Sequence 10 must sort after 9 even though "10" < "9" as text.
	a := domain.TxID{Timestamp: base, Seq: 9}
	b := domain.TxID{Timestamp: base, Seq: 10}
	if !a.Less(b) {
		t.Error("seq 9 should sort before seq 10")
	}

	parsed, err := domain.ParseTxID(b.String())
	if err != nil {
		t.Fatalf("ParseTxID() error = %v", err)
	}
	if !parsed.Timestamp.Equal(b.Timestamp) || parsed.Seq != b.Seq {
		t.Errorf("ParseTxID(%q) = %+v, want %+v", b.String(), parsed, b)
	}

	for _, bad := range []string{"", "abc", "123", "1.x", "x.1", "1.-4"} {
		if _, err := domain.ParseTxID(bad); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("ParseTxID(%q) error = %v, want ErrInvalidInput", bad, err)
		}
	}
}

func TestEffectivePageSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultPageSize},
		{-3, DefaultPageSize},
		{7, 7},
		{MaxPageSize, MaxPageSize},
		{MaxPageSize + 1, MaxPageSize},
	}
	for _, tt := range tests {
		if got := EffectivePageSize(tt.in); got != tt.want {
			t.Errorf("EffectivePageSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
