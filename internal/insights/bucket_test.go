package insights

import (
	"testing"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/shopspring/decimal"
)

func TestClassifyAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   Bucket
	}{
		{"0", BucketSmall},
		{"49.99", BucketSmall},
		{"50.00", BucketMedium},
		{"120", BucketMedium},
		{"200.00", BucketMedium},
		{"200.01", BucketLarge},
		{"5000", BucketLarge},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := ClassifyAmount(decimal.RequireFromString(tt.amount))
			if got != tt.want {
				t.Errorf("ClassifyAmount(%s) = %s, want %s", tt.amount, got, tt.want)
			}
		})
	}
}

func TestCountBuckets_IgnoresCredits(t *testing.T) {
	txs := []domain.Transaction{
		debit("10"),
		debit("50"),
		debit("200"),
		debit("200.01"),
		credit("3000"),
	}

	got := CountBuckets(txs)
	want := BucketCounts{Small: 1, Medium: 2, Large: 1}
	if got != want {
		t.Errorf("CountBuckets() = %+v, want %+v", got, want)
	}
	if got.Total() != 4 {
		t.Errorf("Total() = %d, want 4", got.Total())
	}
}

func debit(amount string) domain.Transaction {
	return domain.Transaction{Direction: domain.DirectionDebit, Amount: decimal.RequireFromString(amount)}
}

func credit(amount string) domain.Transaction {
	return domain.Transaction{Direction: domain.DirectionCredit, Amount: decimal.RequireFromString(amount)}
}
