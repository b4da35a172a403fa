// SPDX-License-Identifier: MIT

package counter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jfkriz/togglesolve/bitvec"
)

// Solver formulates counter problems and delegates them to a Backend.
// A Solver holds no per-solve state and is safe for concurrent use as long
// as its Backend is.
type Solver struct {
	opts Options
}

// NewSolver returns a Solver configured by opts.
func NewSolver(opts ...Option) *Solver {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Solver{opts: o}
}

// Backend returns the configured optimiser.
func (s *Solver) Backend() Backend { return s.opts.Backend }

// with returns the Solver's options overridden by per-call opts.
func (s *Solver) with(opts []Option) Options {
	o := s.opts
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

// Solve returns a minimum-total press plan reaching counts exactly. opts
// override the Solver's options for this call only (typically a PhaseHook).
//
// Errors: those of Formulate, ErrTimeout when the backend overruns its
// budget, ErrInfeasible, ErrBackendResult, or the caller's context error.
func (s *Solver) Solve(ctx context.Context, counts []int, buttons []bitvec.Vector, opts ...Option) (Solution, error) {
	o := s.with(opts)

	// Stage 1: formulation; degenerate outputs never reach the backend.
	p, err := Formulate(counts, buttons)
	if err != nil {
		return Solution{}, err
	}
	o.phase(PhaseFormulated)

	if p.Settled() {
		o.phase(PhaseOptimized)

		return Solution{Presses: make([]int, len(buttons))}, nil
	}

	// Stage 2: bounded backend call.
	var (
		be     = o.Backend
		cctx   = ctx
		cancel context.CancelFunc
		start  = time.Now()
	)
	if o.Timeout > 0 {
		cctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}
	res, err := be.Minimize(cctx, p)
	elapsed := time.Since(start)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return Solution{}, fmt.Errorf("%s: %w", be.Name(), ctx.Err())
		case errors.Is(err, context.DeadlineExceeded):
			o.Logger.Warn("counter: backend timed out",
				slog.String("backend", be.Name()),
				slog.Duration("timeout", o.Timeout))

			return Solution{}, fmt.Errorf("%s after %s: %w", be.Name(), o.Timeout, ErrTimeout)
		default:
			return Solution{}, fmt.Errorf("%s: %w", be.Name(), err)
		}
	}

	// Stage 3: never trust a backend blindly.
	if err = p.Check(res.Values); err != nil {
		return Solution{}, fmt.Errorf("%s: %w", be.Name(), err)
	}
	if err = Verify(counts, buttons, res.Values); err != nil {
		return Solution{}, fmt.Errorf("%s: %w", be.Name(), err)
	}
	total := 0
	for _, x := range res.Values {
		total += x
	}
	o.phase(PhaseOptimized)
	o.Logger.Debug("counter: solved",
		slog.String("backend", be.Name()),
		slog.Int("vars", p.NumVars),
		slog.Int("constraints", len(p.Constraints)),
		slog.Int("total", total),
		slog.Duration("elapsed", elapsed))

	return Solution{Presses: res.Values, Total: total, Backend: be.Name()}, nil
}
