package scheduler

import (
	"context"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Engine runs the oracle first and falls back to the allocator for the whole
// class set whenever the oracle is absent, fails or proposes an invalid schedule.
// Oracle and allocator output are never merged.
type Engine struct {
	oracle    *OracleAdapter
	allocator *Allocator
}

// NewEngine wires an engine. oracle may be nil.
func NewEngine(oracle *OracleAdapter, allocator *Allocator) *Engine {
	if allocator == nil {
		allocator = NewAllocator(0, DefaultDurationTolerance)
	}
	return &Engine{oracle: oracle, allocator: allocator}
}

// Run produces a conflict-free, possibly partial, schedule. The only error it
// returns is a precondition failure.
func (e *Engine) Run(ctx context.Context, p Problem) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	outcome := e.oracle.TryOracle(ctx, p)
	if outcome.OK() {
		return Result{
			Strategy:    models.GenerationStrategyOracle,
			Sessions:    outcome.Sessions,
			Unscheduled: Unscheduled(p.Classes, outcome.Sessions),
			Oracle:      outcome,
		}, nil
	}

	result, err := e.allocator.Allocate(p)
	if err != nil {
		return Result{}, err
	}
	result.Oracle = outcome
	return result, nil
}
