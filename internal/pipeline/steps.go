package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/banking-coach/internal/corebanking"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/gcsexport"
	"github.com/dvloznov/banking-coach/internal/insights"
)

// Job parameter and result keys.
const (
	ParamAccountNumber = "account_number"
	ParamMonth         = "month"
	ParamDryRun        = "dry_run"

	ResultURI       = "uri"
	ResultLines     = "lines"
	ResultArchetype = "archetype"
	ResultLevel     = "level"
)

// MonthLayout is the format of the month parameter.
const MonthLayout = "2006-01"

// StatementSource reads the account and movements a statement is built from.
type StatementSource interface {
	GetAccount(ctx context.Context, number string) (domain.Account, error)
	ListMovements(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
}

// StatementExporter stores a built statement and returns where it went.
type StatementExporter interface {
	Export(ctx context.Context, s gcsexport.Statement) (string, error)
}

// ProfileSource computes the 360 profile of a client.
type ProfileSource interface {
	Profile360(ctx context.Context, clientCode string) (corebanking.Profile360, error)
}

// ArchetypeStore reads the archetype configuration and stores user archetypes.
type ArchetypeStore interface {
	ListArchetypes(ctx context.Context) ([]domain.Archetype, error)
	UpdateArchetype(ctx context.Context, id, archetype string, level int) error
}

// FetchMovementsStep loads the account, checks it belongs to the job's user
// and reads its movements.
type FetchMovementsStep struct {
	Source StatementSource
}

func (s *FetchMovementsStep) Execute(ctx context.Context, state *PipelineState) error {
	number := state.Job.Param(ParamAccountNumber)
	if number == "" {
		return fmt.Errorf("FetchMovementsStep: %w: %s is required", domain.ErrInvalidInput, ParamAccountNumber)
	}
	acc, err := s.Source.GetAccount(ctx, number)
	if err != nil {
		return fmt.Errorf("FetchMovementsStep: get account: %w", err)
	}
	if acc.ClientCode != state.Job.UserID {
		return fmt.Errorf("FetchMovementsStep: account %s: %w", number, domain.ErrNotFound)
	}
	movements, err := s.Source.ListMovements(ctx, number)
	if err != nil {
		return fmt.Errorf("FetchMovementsStep: list movements: %w", err)
	}
	state.Account = acc
	state.Movements = movements
	return nil
}

// SelectPeriodStep picks the statement month: the month parameter when set,
// otherwise the activity window of the movements.
type SelectPeriodStep struct {
	Now func() time.Time
}

func (s *SelectPeriodStep) Execute(ctx context.Context, state *PipelineState) error {
	if month := state.Job.Param(ParamMonth); month != "" {
		t, err := time.ParseInLocation(MonthLayout, month, time.UTC)
		if err != nil {
			return fmt.Errorf("SelectPeriodStep: %w: month %q", domain.ErrInvalidInput, month)
		}
		state.Period = insights.MonthOf(t)
		return nil
	}
	state.Period = insights.ActivityWindow(state.Movements, s.Now())
	return nil
}

// CategorizeStep resolves the category of every movement.
type CategorizeStep struct {
	Resolver *insights.Resolver
}

func (s *CategorizeStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Items = s.Resolver.Annotate(state.Movements)
	return nil
}

// BuildStatementStep totals the period into a statement.
type BuildStatementStep struct {
	Now func() time.Time
}

func (s *BuildStatementStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Statement = gcsexport.BuildStatement(state.Job.UserID, state.Account, state.Items, state.Period, s.Now())
	state.Job.SetResult(ResultLines, fmt.Sprint(len(state.Statement.Lines)))
	return nil
}

// UploadStatementStep exports the statement and records its URI on the job.
type UploadStatementStep struct {
	Exporter StatementExporter
}

func (s *UploadStatementStep) Execute(ctx context.Context, state *PipelineState) error {
	uri, err := s.Exporter.Export(ctx, state.Statement)
	if err != nil {
		return fmt.Errorf("UploadStatementStep: %w", err)
	}
	state.Job.SetResult(ResultURI, uri)
	return nil
}

// LoadProfileStep computes the 360 profile of the job's user.
type LoadProfileStep struct {
	Core ProfileSource
}

func (s *LoadProfileStep) Execute(ctx context.Context, state *PipelineState) error {
	p, err := s.Core.Profile360(ctx, state.Job.UserID)
	if err != nil {
		return fmt.Errorf("LoadProfileStep: %w", err)
	}
	state.Profile = p
	return nil
}

// AssignArchetypeStep assigns the archetype for the profile.
type AssignArchetypeStep struct {
	Store ArchetypeStore
}

func (s *AssignArchetypeStep) Execute(ctx context.Context, state *PipelineState) error {
	archetypes, err := s.Store.ListArchetypes(ctx)
	if err != nil {
		return fmt.Errorf("AssignArchetypeStep: list archetypes: %w", err)
	}
	table := insights.NewArchetypeTable(archetypes, insights.DefaultArchetypeAnimal)
	state.Archetype = insights.AssignArchetype(table, state.Profile.TopCategoryID(), state.Profile.Buckets)
	return nil
}

// StoreArchetypeStep saves the archetype on the user.
type StoreArchetypeStep struct {
	Store ArchetypeStore
}

func (s *StoreArchetypeStep) Execute(ctx context.Context, state *PipelineState) error {
	a := state.Archetype
	if err := s.Store.UpdateArchetype(ctx, state.Job.UserID, a.Label, a.Level); err != nil {
		return fmt.Errorf("StoreArchetypeStep: %w", err)
	}
	state.Job.SetResult(ResultArchetype, a.Label)
	state.Job.SetResult(ResultLevel, fmt.Sprint(a.Level))
	return nil
}
