package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
	"github.com/dvloznov/banking-coach/internal/jobs"
	"github.com/dvloznov/banking-coach/internal/logger"
	"github.com/dvloznov/banking-coach/internal/notionsync"
)

// ErrNotConfigured is returned by jobs whose backing service is not set up.
var ErrNotConfigured = errors.New("service not configured")

// GoalSyncer mirrors a user's goals to an external board.
type GoalSyncer interface {
	SyncGoals(ctx context.Context, userID string, dryRun bool) (notionsync.Result, error)
}

// JobRecorder observes job attempts.
type JobRecorder interface {
	RecordJob(jobType string, err error)
}

// Deps are the collaborators of the job handlers. Exporter, Goals and
// Recorder may be nil.
type Deps struct {
	Statements StatementSource
	Core       ProfileSource
	Archetypes ArchetypeStore
	Resolver   *insights.Resolver
	Exporter   StatementExporter
	Goals      GoalSyncer
	Recorder   JobRecorder
	Now        func() time.Time
}

// NewStatementExportPipeline builds the steps of a statement export.
func NewStatementExportPipeline(d Deps) *Pipeline {
	return NewPipeline(
		&FetchMovementsStep{Source: d.Statements},
		&SelectPeriodStep{Now: d.now},
		&CategorizeStep{Resolver: d.Resolver},
		&BuildStatementStep{Now: d.now},
		&UploadStatementStep{Exporter: d.Exporter},
	)
}

// NewArchetypeRefreshPipeline builds the steps of an archetype refresh.
func NewArchetypeRefreshPipeline(d Deps) *Pipeline {
	return NewPipeline(
		&LoadProfileStep{Core: d.Core},
		&AssignArchetypeStep{Store: d.Archetypes},
		&StoreArchetypeStep{Store: d.Archetypes},
	)
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// NewRouter registers a handler for every job type.
func NewRouter(d Deps) *jobs.Router {
	r := jobs.NewRouter()

	r.Handle(jobs.JobTypeExportStatement, d.observe(func(ctx context.Context, job *jobs.Job) error {
		if d.Exporter == nil {
			return fmt.Errorf("export statement: %w: no statement bucket", ErrNotConfigured)
		}
		return NewStatementExportPipeline(d).Execute(ctx, NewState(job))
	}))

	r.Handle(jobs.JobTypeRefreshArchetype, d.observe(func(ctx context.Context, job *jobs.Job) error {
		return NewArchetypeRefreshPipeline(d).Execute(ctx, NewState(job))
	}))

	r.Handle(jobs.JobTypeSyncGoals, d.observe(func(ctx context.Context, job *jobs.Job) error {
		if d.Goals == nil {
			return fmt.Errorf("sync goals: %w: no Notion database", ErrNotConfigured)
		}
		dryRun, _ := strconv.ParseBool(job.Param(ParamDryRun))
		res, err := d.Goals.SyncGoals(ctx, job.UserID, dryRun)
		if err != nil {
			return err
		}
		job.SetResult("created", strconv.Itoa(res.Created))
		job.SetResult("updated", strconv.Itoa(res.Updated))
		job.SetResult("archived", strconv.Itoa(res.Archived))
		job.SetResult("failed", strconv.Itoa(res.Failed))
		return nil
	}))

	return r
}

// observe logs and records every attempt of h.
func (d Deps) observe(h jobs.JobHandler) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.Job) error {
		log := logger.FromContext(ctx).With().
			Str("job_id", job.JobID).
			Str("job_type", string(job.Type)).
			Str("user_id", job.UserID).
			Int("attempt", job.RetryCount+1).
			Logger()
		ctx = logger.WithContext(ctx, log)

		start := time.Now()
		err := h(ctx, job)
		if d.Recorder != nil {
			d.Recorder.RecordJob(string(job.Type), err)
		}
		if err != nil {
			log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Job failed")
			if permanent(err) {
				return jobs.Permanent(err)
			}
			return err
		}
		log.Info().Dur("duration", time.Since(start)).Msg("Job completed")
		return nil
	}
}

// permanent reports whether a job error will not go away on retry.
func permanent(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, ErrNotConfigured)
}
