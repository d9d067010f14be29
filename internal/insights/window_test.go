package insights

import (
	"testing"
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
)

func at(y int, m time.Month, d int) domain.Transaction {
	return domain.Transaction{Timestamp: time.Date(y, m, d, 12, 0, 0, 0, time.UTC)}
}

func TestActivityWindow(t *testing.T) {
	now := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		txs       []domain.Transaction
		wantStart time.Time
	}{
		{
			name:      "current month has movements",
			txs:       []domain.Transaction{at(2024, 3, 2), at(2024, 5, 1)},
			wantStart: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "falls back to month of latest movement",
			txs:       []domain.Transaction{at(2024, 1, 31), at(2024, 3, 15), at(2024, 2, 10)},
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "no movements keeps current month",
			txs:       nil,
			wantStart: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActivityWindow(tt.txs, now)
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(tt.wantStart.AddDate(0, 1, 0)) {
				t.Errorf("End = %v, want one month after start", got.End)
			}
		})
	}
}

func TestInPeriod(t *testing.T) {
	p := MonthOf(time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC))
	txs := []domain.Transaction{
		at(2024, 1, 31),
		{Timestamp: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		at(2024, 2, 29),
		{Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	got := InPeriod(txs, p)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (start inclusive, end exclusive)", len(got))
	}
}
