// Package pipeline runs background jobs as a sequence of steps sharing state.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/banking-coach/internal/corebanking"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/gcsexport"
	"github.com/dvloznov/banking-coach/internal/insights"
	"github.com/dvloznov/banking-coach/internal/jobs"
)

// PipelineStep represents a single step in a job pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	Job *jobs.Job

	// Statement export.
	Account   domain.Account
	Period    insights.Period
	Movements []domain.Transaction
	Items     []insights.Categorized
	Statement gcsexport.Statement

	// Archetype refresh.
	Profile   corebanking.Profile360
	Archetype insights.ArchetypeResult
}

// NewState starts the state of a job run.
func NewState(job *jobs.Job) *PipelineState {
	return &PipelineState{Job: job}
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
