package corebanking

import (
	"context"
	"time"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
)

// CallRecorder observes gateway calls. The metrics collector implements it.
type CallRecorder interface {
	RecordCoreCall(trx string, err error, duration time.Duration)
}

type instrumented struct {
	next Gateway
	rec  CallRecorder
}

// Instrument wraps a gateway so that every transaction is reported to rec.
func Instrument(next Gateway, rec CallRecorder) Gateway {
	return &instrumented{next: next, rec: rec}
}

func (g *instrumented) observe(trx string, start time.Time, err error) {
	g.rec.RecordCoreCall(trx, err, time.Since(start))
}

func (g *instrumented) FindClient(ctx context.Context, dni string) (domain.Client, error) {
	start := time.Now()
	c, err := g.next.FindClient(ctx, dni)
	g.observe(TrxClientLookup, start, err)
	return c, err
}

func (g *instrumented) GlobalPosition(ctx context.Context, clientCode string) (GlobalPosition, error) {
	start := time.Now()
	pos, err := g.next.GlobalPosition(ctx, clientCode)
	g.observe(TrxGlobalPosition, start, err)
	return pos, err
}

func (g *instrumented) AccountDetail(ctx context.Context, clientCode, number string) (AccountDetail, error) {
	start := time.Now()
	d, err := g.next.AccountDetail(ctx, clientCode, number)
	g.observe(TrxAccountDetail, start, err)
	return d, err
}

func (g *instrumented) CategoryMovements(ctx context.Context, clientCode, number string, req insights.PageRequest) (insights.Page, error) {
	start := time.Now()
	p, err := g.next.CategoryMovements(ctx, clientCode, number, req)
	g.observe(TrxMovements, start, err)
	return p, err
}

func (g *instrumented) Profile360(ctx context.Context, clientCode string) (Profile360, error) {
	start := time.Now()
	p, err := g.next.Profile360(ctx, clientCode)
	g.observe(TrxProfile360, start, err)
	return p, err
}
