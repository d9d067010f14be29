package corebanking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestCICSClient_GlobalPosition(t *testing.T) {
	var gotPath, gotClient string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotClient = req["CLIENT-CODE"]
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ACCOUNT-TABLE": [{"ACC-NUMBER": "191-0001 ", "ACC-CURRENCY": "PEN", "ACC-BALANCE": "1500.25"}],
			"CARD-TABLE": [{"CARD-NUMBER": "4557000000001234", "CARD-ACCOUNT-LINK": "191-0001"}]
		}`))
	}))
	defer server.Close()

	c := NewCICSClient(server.URL+"/", time.Second, zerolog.Nop())
	pos, err := c.GlobalPosition(context.Background(), "C0001")
	if err != nil {
		t.Fatalf("GlobalPosition() error = %v", err)
	}
	if gotPath != "/TRX001" || gotClient != "C0001" {
		t.Errorf("request path=%q client=%q", gotPath, gotClient)
	}
	if len(pos.Accounts) != 1 || pos.Accounts[0].Number != "191-0001" {
		t.Fatalf("Accounts = %+v", pos.Accounts)
	}
	if !pos.Accounts[0].Balance.Equal(decimal.RequireFromString("1500.25")) {
		t.Errorf("Balance = %s, want 1500.25", pos.Accounts[0].Balance)
	}

	rows := insights.Reconcile(pos.Accounts, pos.Cards)
	if rows[0].MaskedCard == nil || *rows[0].MaskedCard != "4557 **** **** 1234" {
		t.Errorf("MaskedCard = %v", rows[0].MaskedCard)
	}
}

func TestCICSClient_Movements(t *testing.T) {
	var got movementsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{
			"MOVEMENT-TABLE": [{"MOV-ID": "1714557600000000000.3", "MOV-TIMESTAMP": "2024-05-01T10:00:00Z",
				"MOV-DESCRIPTION": "KFC  ", "MOV-AMOUNT": -12.5, "MOV-CURRENCY": "PEN", "MOV-CATEGORY": "FOOD"}],
			"HAS-MORE": true, "NEXT-CURSOR": "1714557600000000000.3"
		}`))
	}))
	defer server.Close()

	cursor := domain.TxID{Timestamp: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Seq: 7}
	c := NewCICSClient(server.URL, time.Second, zerolog.Nop())
	page, err := c.CategoryMovements(context.Background(), "C0001", "191-0001", insights.PageRequest{Category: "FOOD", Cursor: &cursor, Size: 15})
	if err != nil {
		t.Fatalf("CategoryMovements() error = %v", err)
	}
	if got.Cursor != cursor.String() || got.PageSize != 15 || got.Category != "FOOD" {
		t.Errorf("request = %+v", got)
	}
	if len(page.Items) != 1 || page.Items[0].Description != "KFC" || !page.HasMore {
		t.Errorf("page = %+v", page)
	}
	if !page.Items[0].Amount.Equal(decimal.RequireFromString("-12.5")) {
		t.Errorf("Amount = %s, want -12.5", page.Items[0].Amount)
	}
}

func TestCICSClient_MovementsPageSize(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		returned int
		wantSize int
		wantLen  int
		wantMore bool
	}{
		{"zero uses default", 0, 3, insights.DefaultPageSize, 3, false},
		{"above max is capped", 500, 2, insights.MaxPageSize, 2, false},
		{"extra rows are cut", 2, 4, 2, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got movementsRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&got)
				rec := movementsRecord{}
				for i := 0; i < tt.returned; i++ {
					rec.Movements = append(rec.Movements, movementRecord{
						ID:       fmt.Sprintf("171455760000000000%d.1", 9-i),
						Amount:   decimal.RequireFromString("-1"),
						Category: "FOOD",
					})
				}
				_ = json.NewEncoder(w).Encode(rec)
			}))
			defer server.Close()

			c := NewCICSClient(server.URL, time.Second, zerolog.Nop())
			page, err := c.CategoryMovements(context.Background(), "C0001", "191-0001", insights.PageRequest{Category: "FOOD", Size: tt.size})
			if err != nil {
				t.Fatalf("CategoryMovements() error = %v", err)
			}
			if got.PageSize != tt.wantSize {
				t.Errorf("PAGE-SIZE = %d, want %d", got.PageSize, tt.wantSize)
			}
			if len(page.Items) != tt.wantLen || page.HasMore != tt.wantMore {
				t.Errorf("page has %d items, has_more=%v; want %d, %v", len(page.Items), page.HasMore, tt.wantLen, tt.wantMore)
			}
			if tt.wantMore && page.NextCursor != page.Items[len(page.Items)-1].ID {
				t.Errorf("NextCursor = %q, want last item id", page.NextCursor)
			}
		})
	}
}

func TestCICSClient_Profile360(t *testing.T) {
	tests := []struct {
		name        string
		income      string
		wantProfile string
		wantLevel   int
	}{
		{"no income is inactive", "0", insights.ProfileInactive, 0},
		{"spending above income", "100", insights.ProfileImpulsive, 1},
		{"balanced", "200", insights.ProfileBalanced, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{
					"INCOME": ` + tt.income + `, "EXPENSE": 120.50, "BALANCE": 0,
					"PROFILE-NAME": "Legacy Label", "PROFILE-LEVEL": 9,
					"CATEGORY-TABLE": [
						{"CAT-ID": 4, "CAT-NAME": "UTILITIES", "CAT-TOTAL": 20, "CAT-COUNT": 1},
						{"CAT-ID": 3, "CAT-NAME": "TRANSPORT", "CAT-TOTAL": 100.50, "CAT-COUNT": 2},
						{"CAT-ID": 1, "CAT-NAME": "FOOD", "CAT-TOTAL": 100.50, "CAT-COUNT": 3}
					]
				}`))
			}))
			defer server.Close()

			c := NewCICSClient(server.URL, time.Second, zerolog.Nop())
			p, err := c.Profile360(context.Background(), "C0001")
			if err != nil {
				t.Fatalf("Profile360() error = %v", err)
			}
			if p.Profile.Name != tt.wantProfile || p.Profile.Level != tt.wantLevel {
				t.Errorf("Profile = %+v, want %s level %d", p.Profile, tt.wantProfile, tt.wantLevel)
			}
			// Largest total wins; the tie goes to the lower id.
			if p.TopCategory == nil || p.TopCategory.Name != "FOOD" {
				t.Fatalf("TopCategory = %+v, want FOOD", p.TopCategory)
			}
			if p.CategoryTotals[0].Name != "FOOD" || p.CategoryTotals[2].Name != "UTILITIES" {
				t.Errorf("CategoryTotals order = %+v", p.CategoryTotals)
			}
		})
	}
}

func TestCICSClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{}`, domain.ErrNotFound},
		{"bad request", http.StatusBadRequest, `{}`, domain.ErrInvalidInput},
		{"abend", http.StatusInternalServerError, `ABEND ASRA`, domain.ErrUpstreamUnavailable},
		{"garbled reply", http.StatusOK, `not json`, domain.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewCICSClient(server.URL, time.Second, zerolog.Nop())
			_, err := c.FindClient(context.Background(), "12345678")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("FindClient() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCICSClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewCICSClient(url, time.Second, zerolog.Nop())
	if _, err := c.Profile360(context.Background(), "C0001"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("Profile360() error = %v, want ErrUpstreamUnavailable", err)
	}
}

type recordedCall struct {
	trx string
	err error
}

type fakeRecorder struct{ calls []recordedCall }

func (f *fakeRecorder) RecordCoreCall(trx string, err error, _ time.Duration) {
	f.calls = append(f.calls, recordedCall{trx, err})
}

func TestInstrument(t *testing.T) {
	rec := &fakeRecorder{}
	gw := Instrument(newTestSimulator(&MockRecordSource{}, time.Now()), rec)

	_, err := gw.FindClient(context.Background(), "000")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FindClient() error = %v", err)
	}
	_, _ = gw.GlobalPosition(context.Background(), "C0001")

	if len(rec.calls) != 2 {
		t.Fatalf("recorded %d calls, want 2", len(rec.calls))
	}
	if rec.calls[0].trx != TrxClientLookup || !errors.Is(rec.calls[0].err, domain.ErrNotFound) {
		t.Errorf("first call = %+v", rec.calls[0])
	}
	if rec.calls[1].trx != TrxGlobalPosition || rec.calls[1].err != nil {
		t.Errorf("second call = %+v", rec.calls[1])
	}
}
