package insights

import (
	"errors"
	"testing"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/shopspring/decimal"
)

func TestCheckPurchase(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name          string
		amount        string
		liquidity     string
		wantAfford    bool
		wantRemaining string
		wantAdvice    string
	}{
		{"affordable", "300", "1250.75", true, "950.75", "Purchase is viable."},
		{"exactly the balance", "100", "100", true, "0", "Purchase is viable."},
		{"too expensive", "2000", "1250.75", false, "1250.75", "Insufficient balance."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckPurchase(d(tt.amount), d(tt.liquidity), nil, decimal.Zero)
			if err != nil {
				t.Fatalf("CheckPurchase() error = %v", err)
			}
			if got.CanAfford != tt.wantAfford {
				t.Errorf("CanAfford = %v, want %v", got.CanAfford, tt.wantAfford)
			}
			if !got.RemainingBalance.Equal(d(tt.wantRemaining)) {
				t.Errorf("RemainingBalance = %s, want %s", got.RemainingBalance, tt.wantRemaining)
			}
			if got.Advice != tt.wantAdvice {
				t.Errorf("Advice = %q, want %q", got.Advice, tt.wantAdvice)
			}
			if got.Budget != nil {
				t.Error("Budget should be nil without a budget")
			}
		})
	}
}

func TestCheckPurchase_Budget(t *testing.T) {
	budget := &domain.Budget{Category: "FOOD", MonthlyLimit: decimal.NewFromInt(500)}

	got, err := CheckPurchase(decimal.NewFromInt(150), decimal.NewFromInt(2000), budget, decimal.NewFromInt(400))
	if err != nil {
		t.Fatalf("CheckPurchase() error = %v", err)
	}
	if got.Budget == nil {
		t.Fatal("Budget = nil")
	}
	if !got.Budget.UsedPercent.Equal(decimal.NewFromInt(110)) {
		t.Errorf("UsedPercent = %s, want 110", got.Budget.UsedPercent)
	}
	if !got.Budget.Alert || !got.Budget.OverBudget {
		t.Errorf("Alert=%v OverBudget=%v, want both true", got.Budget.Alert, got.Budget.OverBudget)
	}
	if got.Advice != "Purchase is viable but exceeds your FOOD budget." {
		t.Errorf("Advice = %q", got.Advice)
	}

	got, err = CheckPurchase(decimal.NewFromInt(50), decimal.NewFromInt(2000), budget, decimal.NewFromInt(300))
	if err != nil {
		t.Fatalf("CheckPurchase() error = %v", err)
	}
	// 350/500 = 70% is under the default 80% alert threshold.
	if got.Budget.Alert || got.Budget.OverBudget {
		t.Errorf("Alert=%v OverBudget=%v, want both false", got.Budget.Alert, got.Budget.OverBudget)
	}
}

func TestCheckPurchase_RejectsNonPositive(t *testing.T) {
	for _, amount := range []int64{0, -5} {
		_, err := CheckPurchase(decimal.NewFromInt(amount), decimal.NewFromInt(100), nil, decimal.Zero)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("CheckPurchase(%d) error = %v, want ErrInvalidInput", amount, err)
		}
	}
}
