// SPDX-License-Identifier: MIT

package counter

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Sentinel errors.
var (
	// ErrInfeasible indicates no nonnegative integer press plan meets every count.
	ErrInfeasible = errors.New("counter: infeasible")

	// ErrTimeout indicates the backend exceeded its time budget.
	ErrTimeout = errors.New("counter: optimizer timeout")

	// ErrDimensionMismatch indicates a button whose length differs from len(counts).
	ErrDimensionMismatch = errors.New("counter: dimension mismatch")

	// ErrNegativeCount indicates a target count below zero.
	ErrNegativeCount = errors.New("counter: negative target count")

	// ErrBackendResult indicates a backend returned a plan that violates the problem.
	ErrBackendResult = errors.New("counter: backend returned an invalid plan")

	// ErrBadTimeout indicates WithTimeout was given a negative duration.
	ErrBadTimeout = errors.New("counter: timeout must be non-negative")
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 30 * time.Second

// Phase identifies a step of a counter solve.
type Phase int

const (
	// PhaseFormulated fires once the problem is built and degenerate outputs settled.
	PhaseFormulated Phase = iota
	// PhaseOptimized fires once a verified optimum is available.
	PhaseOptimized
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseFormulated:
		return "formulated"
	case PhaseOptimized:
		return "optimized"
	default:
		return "unknown"
	}
}

// Result is a backend answer: one value per problem variable.
type Result struct {
	Values []int
}

// Backend minimises Σ x over a Problem.
//
// Implementations must return ErrInfeasible (possibly wrapped) when no
// integer point exists, must stop promptly once ctx is done and return
// ctx.Err() (possibly wrapped) in that case, and must not retain p.
type Backend interface {
	Name() string
	Minimize(ctx context.Context, p *Problem) (Result, error)
}

// Solution is a verified optimal press plan.
type Solution struct {
	// Presses has one entry per button.
	Presses []int

	// Total is Σ Presses.
	Total int

	// Backend names the optimiser used; empty when formulation settled the problem.
	Backend string
}

// Options configures a Solver.
type Options struct {
	Backend   Backend
	Timeout   time.Duration
	Logger    *slog.Logger
	PhaseHook func(Phase)
}

// Option represents a functional option for configuring a Solver.
type Option func(*Options)

// DefaultOptions returns the defaults: PseudoBoolean backend, DefaultTimeout,
// discarding logger, no hook.
func DefaultOptions() Options {
	return Options{
		Backend: NewPseudoBoolean(),
		Timeout: DefaultTimeout,
		Logger:  slog.New(slog.DiscardHandler),
	}
}

// WithBackend selects the optimiser. A nil backend keeps the default.
func WithBackend(b Backend) Option {
	return func(o *Options) {
		if b != nil {
			o.Backend = b
		}
	}
}

// WithTimeout bounds each backend call; 0 disables the bound.
// Panics if d < 0.
func WithTimeout(d time.Duration) Option {
	if d < 0 {
		panic(ErrBadTimeout.Error())
	}

	return func(o *Options) { o.Timeout = d }
}

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithPhaseHook registers fn to be called on every phase transition.
func WithPhaseHook(fn func(Phase)) Option {
	return func(o *Options) { o.PhaseHook = fn }
}
