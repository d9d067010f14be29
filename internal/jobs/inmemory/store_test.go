package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	job := &jobs.Job{
		JobID:  "job-1",
		Type:   jobs.JobTypeExportStatement,
		UserID: "C0001",
		Params: map[string]string{"account": "191-45781236-0-01"},
		Status: jobs.JobStatusPending,
	}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob() error = %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	job.Params["account"] = "changed"

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Param("account") != "191-45781236-0-01" {
		t.Errorf("Param(account) = %q, stored job was modified externally", got.Param("account"))
	}
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if err := store.SaveJob(ctx, &jobs.Job{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SaveJob(no id) error = %v, want ErrInvalidInput", err)
	}
	if _, err := store.GetJob(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetJob(missing) error = %v, want ErrNotFound", err)
	}
	if err := store.UpdateJobStatus(ctx, "missing", jobs.JobStatusFailed, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateJobStatus(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	seed := []*jobs.Job{
		{JobID: "a", UserID: "C0001", Type: jobs.JobTypeExportStatement, Status: jobs.JobStatusCompleted, CreatedAt: base},
		{JobID: "b", UserID: "C0001", Type: jobs.JobTypeRefreshArchetype, Status: jobs.JobStatusPending, CreatedAt: base.Add(time.Minute)},
		{JobID: "c", UserID: "C0002", Type: jobs.JobTypeExportStatement, Status: jobs.JobStatusPending, CreatedAt: base.Add(2 * time.Minute)},
		{JobID: "d", UserID: "C0001", Type: jobs.JobTypeSyncGoals, Status: jobs.JobStatusFailed, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, j := range seed {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob(%s) error = %v", j.JobID, err)
		}
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{"all newest first", jobs.JobFilter{}, []string{"d", "c", "b", "a"}},
		{"by user", jobs.JobFilter{UserID: "C0001"}, []string{"d", "b", "a"}},
		{"by type", jobs.JobFilter{Type: jobs.JobTypeExportStatement}, []string{"c", "a"}},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusPending}, []string{"c", "b"}},
		{"limit", jobs.JobFilter{Limit: 2}, []string{"d", "c"}},
		{"offset", jobs.JobFilter{Offset: 3}, []string{"a"}},
		{"offset past end", jobs.JobFilter{Offset: 10}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListJobs() returned %d jobs, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].JobID != id {
					t.Errorf("job[%d] = %s, want %s", i, got[i].JobID, id)
				}
			}
		})
	}
}

func TestStore_UpdateJobStatus(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.SaveJob(ctx, &jobs.Job{JobID: "j", Status: jobs.JobStatusRunning})

	if err := store.UpdateJobStatus(ctx, "j", jobs.JobStatusFailed, "boom"); err != nil {
		t.Fatalf("UpdateJobStatus() error = %v", err)
	}
	got, _ := store.GetJob(ctx, "j")
	if got.Status != jobs.JobStatusFailed || got.Error != "boom" {
		t.Errorf("job = %+v, want failed/boom", got)
	}
}

func TestStore_Prune(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Now()
	old := now.Add(-48 * time.Hour)
	recent := now.Add(-time.Hour)

	_ = store.SaveJob(ctx, &jobs.Job{JobID: "old-done", Status: jobs.JobStatusCompleted, CompletedAt: &old})
	_ = store.SaveJob(ctx, &jobs.Job{JobID: "old-failed", Status: jobs.JobStatusFailed, CompletedAt: &old})
	_ = store.SaveJob(ctx, &jobs.Job{JobID: "old-retrying", Status: jobs.JobStatusRetrying, CompletedAt: &old})
	_ = store.SaveJob(ctx, &jobs.Job{JobID: "recent-done", Status: jobs.JobStatusCompleted, CompletedAt: &recent})
	_ = store.SaveJob(ctx, &jobs.Job{JobID: "pending", Status: jobs.JobStatusPending})

	if n := store.Prune(now.Add(-24 * time.Hour)); n != 2 {
		t.Errorf("Prune() = %d, want 2", n)
	}
	for _, id := range []string{"old-done", "old-failed"} {
		if _, err := store.GetJob(ctx, id); err == nil {
			t.Errorf("job %s should have been pruned", id)
		}
	}
	for _, id := range []string{"old-retrying", "recent-done", "pending"} {
		if _, err := store.GetJob(ctx, id); err != nil {
			t.Errorf("job %s should be kept: %v", id, err)
		}
	}
}
