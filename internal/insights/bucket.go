package insights

import (
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/shopspring/decimal"
)

// Bucket is the size band of a movement amount.
type Bucket string

const (
	BucketSmall  Bucket = "small"
	BucketMedium Bucket = "medium"
	BucketLarge  Bucket = "large"
)

var (
	mediumFloor   = decimal.NewFromInt(50)
	mediumCeiling = decimal.NewFromInt(200)
)

// ClassifyAmount puts an amount in its band: below 50 is small, 50 to 200
// inclusive is medium, above 200 is large.
func ClassifyAmount(amount decimal.Decimal) Bucket {
	switch {
	case amount.LessThan(mediumFloor):
		return BucketSmall
	case amount.LessThanOrEqual(mediumCeiling):
		return BucketMedium
	default:
		return BucketLarge
	}
}

// BucketCounts holds the number of movements per band for a period.
type BucketCounts struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

// Total returns the number of counted movements.
func (b BucketCounts) Total() int {
	return b.Small + b.Medium + b.Large
}

// Add counts one amount.
func (b *BucketCounts) Add(amount decimal.Decimal) {
	switch ClassifyAmount(amount) {
	case BucketSmall:
		b.Small++
	case BucketMedium:
		b.Medium++
	default:
		b.Large++
	}
}

// CountBuckets counts the debit movements of txs by band. Credits are not spending.
func CountBuckets(txs []domain.Transaction) BucketCounts {
	var counts BucketCounts
	for _, tx := range txs {
		if tx.IsDebit() {
			counts.Add(tx.Amount)
		}
	}
	return counts
}
