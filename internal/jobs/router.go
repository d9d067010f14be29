package jobs

import (
	"context"
	"fmt"

	"github.com/dvloznov/banking-coach/internal/domain"
)

// Router dispatches jobs to the handler registered for their type.
type Router struct {
	handlers map[JobType]JobHandler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[JobType]JobHandler)}
}

// Handle registers h for jobs of type t, replacing any previous handler.
func (r *Router) Handle(t JobType, h JobHandler) {
	r.handlers[t] = h
}

// Dispatch is a JobHandler that routes by job type.
func (r *Router) Dispatch(ctx context.Context, job *Job) error {
	h, ok := r.handlers[job.Type]
	if !ok {
		return fmt.Errorf("Dispatch: %w: no handler for job type %q", domain.ErrInvalidInput, job.Type)
	}
	return h(ctx, job)
}
