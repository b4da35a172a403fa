// SPDX-License-Identifier: MIT

package gf2

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jfkriz/togglesolve/bitvec"
)

// Solve returns the minimum-weight press plan for target over buttons.
// It is SolveContext with context.Background().
func Solve(target bitvec.Vector, buttons []bitvec.Vector, opts ...Option) (Solution, error) {
	return SolveContext(context.Background(), target, buttons, opts...)
}

// SolveContext returns the minimum-weight press plan for target over buttons.
//
// Contracts:
//   - every button must have target.Len() bits;
//   - inputs are read only; on any error nothing visible to the caller changed.
//
// Errors: ErrDimensionMismatch, ErrNoSolution, ErrTooManyFreeVars, or the
// context error (wrapped) if ctx ends during enumeration.
func SolveContext(ctx context.Context, target bitvec.Vector, buttons []bitvec.Vector, opts ...Option) (Solution, error) {
	o := gatherOptions(opts)

	if err := validate(target, buttons); err != nil {
		return Solution{}, err
	}

	// Stage 1: augmented matrix.
	s := buildAugmented(target, buttons)
	o.phase(PhaseMatrixBuilt)

	// Stage 2: reduction and consistency.
	if err := s.eliminate(); err != nil {
		return Solution{}, err
	}
	o.phase(PhaseEliminated)

	coupled, inert := s.freeColumns()
	f := len(coupled)
	if f > o.MaxFreeVars {
		if o.ExcessPolicy == Reject || f > FreeVarCeiling {
			return Solution{}, fmt.Errorf("%d coupled free variables, limit %d: %w",
				f, o.MaxFreeVars, ErrTooManyFreeVars)
		}
		o.Logger.Warn("gf2: enumerating beyond configured bound",
			slog.Int("free_vars", f),
			slog.Int("max_free_vars", o.MaxFreeVars))
	}

	// Stage 3: pick the best mask over the coupled free columns.
	rhs, coef := s.compile(coupled)
	var (
		best   candidate
		masks  uint64
		err    error
		unique = f == 0
	)
	if unique {
		best = candidate{mask: 0, weight: evaluate(0, rhs, coef)}
		masks = 1
	} else {
		best, masks, err = search(ctx, f, rhs, coef, o.Parallelism)
		if err != nil {
			return Solution{}, err
		}
	}

	// Stage 4: back-substitute the winning mask.
	x := assemble(s, coupled, best.mask, rhs, coef)
	if unique {
		o.phase(PhaseUnique)
	} else {
		o.phase(PhaseEnumerated)
	}
	o.Logger.Debug("gf2: solved",
		slog.Int("rank", s.rank()),
		slog.Int("free_vars", len(coupled)+len(inert)),
		slog.Int("coupled", f),
		slog.Int("weight", best.weight))

	return Solution{
		Assignment: x,
		Weight:     x.Weight(),
		Rank:       s.rank(),
		FreeVars:   len(coupled) + len(inert),
		Coupled:    f,
		Masks:      masks,
	}, nil
}

// assemble expands a mask into a full press plan: coupled free columns from
// the mask, pivot columns by back-substitution, inert columns unpressed.
func assemble(s *system, coupled []int, mask uint64, rhs []bool, coef []uint64) bitvec.Vector {
	var (
		x = make([]bool, s.nVars)
		j int
		r int
	)
	for j = range coupled {
		x[coupled[j]] = mask>>uint(j)&1 == 1
	}
	for r = range s.pivots {
		x[s.pivots[r]] = pivotValue(rhs[r], coef[r], mask)
	}

	return bitvec.FromBools(x)
}

// Apply returns the XOR of the buttons selected by plan, i.e. the light
// pattern reached from all-off. It is the checker for Solve's contract.
func Apply(buttons []bitvec.Vector, plan bitvec.Vector, outputs int) (bitvec.Vector, error) {
	if plan.Len() != len(buttons) {
		return bitvec.Vector{}, fmt.Errorf("plan has %d bits for %d buttons: %w",
			plan.Len(), len(buttons), ErrDimensionMismatch)
	}
	acc, err := bitvec.New(outputs)
	if err != nil {
		return bitvec.Vector{}, err
	}
	for _, i := range plan.Indices() {
		if err = acc.XorAssign(buttons[i]); err != nil {
			return bitvec.Vector{}, fmt.Errorf("button %d: %w", i, ErrDimensionMismatch)
		}
	}

	return acc, nil
}
