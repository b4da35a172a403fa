// SPDX-License-Identifier: MIT

package gf2

import (
	"errors"
	"log/slog"

	"github.com/jfkriz/togglesolve/bitvec"
)

// Sentinel errors returned by Solve.
var (
	// ErrNoSolution indicates the target is not in the GF(2) span of the buttons.
	ErrNoSolution = errors.New("gf2: target not in span of buttons")

	// ErrDimensionMismatch indicates a button whose length differs from the target's.
	ErrDimensionMismatch = errors.New("gf2: dimension mismatch")

	// ErrTooManyFreeVars indicates the enumeration bound was exceeded.
	ErrTooManyFreeVars = errors.New("gf2: too many free variables")

	// ErrBadMaxFreeVars indicates WithMaxFreeVars was given a value outside [0, FreeVarCeiling].
	ErrBadMaxFreeVars = errors.New("gf2: MaxFreeVars must be in [0, 62]")

	// ErrBadParallelism indicates WithParallelism was given a value below 1.
	ErrBadParallelism = errors.New("gf2: Parallelism must be positive")
)

// FreeVarCeiling is the hard limit on enumerated free variables: masks are
// uint64 and 2^62 keeps every chunk boundary representable.
const FreeVarCeiling = 62

// DefaultMaxFreeVars is the default enumeration bound (2^24 masks).
const DefaultMaxFreeVars = 24

// checkEvery is the mask interval between context polls.
const checkEvery = 4096

// Phase identifies a step of a boolean solve.
type Phase int

const (
	// PhaseMatrixBuilt fires once the augmented matrix exists.
	PhaseMatrixBuilt Phase = iota
	// PhaseEliminated fires after Gauss–Jordan reduction and the consistency check.
	PhaseEliminated
	// PhaseUnique fires when the minimum needs no enumeration.
	PhaseUnique
	// PhaseEnumerated fires after the free-variable enumeration completes.
	PhaseEnumerated
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseMatrixBuilt:
		return "matrix-built"
	case PhaseEliminated:
		return "eliminated"
	case PhaseUnique:
		return "unique"
	case PhaseEnumerated:
		return "enumerated"
	default:
		return "unknown"
	}
}

// ExcessPolicy selects what happens when the free-variable count exceeds MaxFreeVars.
type ExcessPolicy int

const (
	// Reject fails the solve with ErrTooManyFreeVars.
	Reject ExcessPolicy = iota
	// Warn logs a warning and enumerates anyway, up to FreeVarCeiling.
	Warn
)

// Solution is the result of a successful solve.
type Solution struct {
	// Assignment has one bit per button; set means "press once".
	Assignment bitvec.Vector

	// Weight is Assignment.Weight(), the number of presses.
	Weight int

	// Rank is the number of pivot columns found by elimination.
	Rank int

	// FreeVars is the number of non-pivot columns (B − Rank).
	FreeVars int

	// Coupled is the number of free columns that were actually enumerated.
	Coupled int

	// Masks is the number of free-variable masks evaluated (1 when unique).
	Masks uint64
}

// Options configures Solve.
type Options struct {
	MaxFreeVars  int
	ExcessPolicy ExcessPolicy
	Parallelism  int
	Logger       *slog.Logger
	PhaseHook    func(Phase)
}

// Option represents a functional option for configuring Solve.
type Option func(*Options)

// DefaultOptions returns the defaults: MaxFreeVars=24, Reject, sequential,
// discarding logger, no hook.
func DefaultOptions() Options {
	return Options{
		MaxFreeVars:  DefaultMaxFreeVars,
		ExcessPolicy: Reject,
		Parallelism:  1,
		Logger:       slog.New(slog.DiscardHandler),
	}
}

// WithMaxFreeVars bounds the number of enumerated free variables.
// Panics if n is outside [0, FreeVarCeiling].
func WithMaxFreeVars(n int) Option {
	if n < 0 || n > FreeVarCeiling {
		panic(ErrBadMaxFreeVars.Error())
	}

	return func(o *Options) { o.MaxFreeVars = n }
}

// WithExcessPolicy selects Reject or Warn for oversized enumerations.
func WithExcessPolicy(p ExcessPolicy) Option {
	return func(o *Options) { o.ExcessPolicy = p }
}

// WithParallelism evaluates the mask range in p concurrent chunks.
// Panics if p < 1.
func WithParallelism(p int) Option {
	if p < 1 {
		panic(ErrBadParallelism.Error())
	}

	return func(o *Options) { o.Parallelism = p }
}

// WithLogger sets the logger used for excess warnings and debug traces.
// A nil logger keeps the default.
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

func gatherOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func (o *Options) phase(p Phase) {
	if o.PhaseHook != nil {
		o.PhaseHook(p)
	}
}
