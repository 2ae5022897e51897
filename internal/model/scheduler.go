package model

import (
	"context"
	"time"

	"github.com/hokkyo/timetable/internal/sat"
)

// DefaultMaxAttempts bounds the backtracking backend when the caller does
// not set a budget.
const DefaultMaxAttempts uint64 = 2_000_000

// Config carries the per-run search budget. Zero values fall back to
// defaults; a Timeout of zero means the run is bounded by MaxAttempts (and
// the caller's context) only.
type Config struct {
	MaxAttempts uint64
	Timeout     time.Duration
	// Seed fixes the candidate diversification order of the backtracking
	// backend, making runs reproducible.
	Seed int64
}

func (c Config) maxAttempts() uint64 {
	if c.MaxAttempts == 0 {
		return DefaultMaxAttempts
	}
	return c.MaxAttempts
}

// Scheduler turns an entity snapshot into a timetable or a diagnosed
// failure. The two backends are semantically interchangeable: any schedule
// one accepts, the other accepts as well.
type Scheduler interface {
	Schedule(ctx context.Context, snapshot *Snapshot, config Config) Result
}

// NewSATScheduler returns the primary backend: the placement problem is
// encoded into CNF and handed to a general SAT solver.
func NewSATScheduler(solver sat.Solver) Scheduler {
	return &satScheduler{solver: solver}
}

// NewBacktrackScheduler returns the fallback backend: iterative depth-first
// search over the constraint engine with most-constrained-first ordering.
func NewBacktrackScheduler() Scheduler {
	return &backtrackScheduler{}
}
