package postgres

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/banking-coach/internal/domain"
)

func TestGoalModelRoundTrip(t *testing.T) {
	g := domain.Goal{
		ID:       7,
		UserID:   "C0001",
		Title:    "Laptop",
		Target:   decimal.RequireFromString("3500.00"),
		Saved:    decimal.RequireFromString("1200.50"),
		Deadline: civil.Date{Year: 2024, Month: time.December, Day: 24},
		Status:   domain.GoalInProgress,
	}

	got := goalModelFrom(g).toDomain()

	if got.Deadline != g.Deadline {
		t.Errorf("Deadline = %v, want %v", got.Deadline, g.Deadline)
	}
	if !got.Target.Equal(g.Target) || !got.Saved.Equal(g.Saved) {
		t.Errorf("amounts = %s/%s, want %s/%s", got.Saved, got.Target, g.Saved, g.Target)
	}
	if got.Title != g.Title || got.UserID != g.UserID {
		t.Errorf("got %+v", got)
	}
}

func TestTableNames(t *testing.T) {
	tests := []struct {
		model interface{ TableName() string }
		want  string
	}{
		{UserModel{}, "users"},
		{RevokedTokenModel{}, "token_blocklist"},
		{GoalModel{}, "goals"},
		{BudgetModel{}, "budgets"},
		{ArchetypeModel{}, "archetypes"},
		{AppLogModel{}, "app_logs"},
		{ModelConfigModel{}, "model_configs"},
		{TrainedModelModel{}, "trained_models"},
	}
	for _, tt := range tests {
		if got := tt.model.TableName(); got != tt.want {
			t.Errorf("TableName() = %q, want %q", got, tt.want)
		}
	}
	if len(Models()) != len(tests) {
		t.Errorf("Models() has %d entries, want %d", len(Models()), len(tests))
	}
}

func TestTrainedModelRoundTrip(t *testing.T) {
	m := domain.TrainedModel{
		ID:         3,
		Version:    "v1.0.0",
		Filename:   "kmeans.pkl",
		URI:        "gs://bucket/models/v1.0.0/abc-kmeans.pkl",
		Size:       2048,
		UploadedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if got := trainedModelFrom(m).toDomain(); got != m {
		t.Errorf("round trip = %+v, want %+v", got, m)
	}
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	if _, err := Open("", zerolog.Nop()); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
