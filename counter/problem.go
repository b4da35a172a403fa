// SPDX-License-Identifier: MIT

package counter

import (
	"fmt"

	"github.com/jfkriz/togglesolve/bitvec"
)

// Constraint is one equality Σ_{v ∈ Vars} x_v = Target for output Output.
// Vars lists only variables that are not fixed at zero.
type Constraint struct {
	Output int
	Vars   []int
	Target int
}

// Problem is the integer program handed to a Backend: NumVars variables in
// [0, Upper[v]], the Constraints, and the objective Σ x.
//
// Variables with Upper[v] == 0 are fixed and appear in no constraint.
type Problem struct {
	NumVars     int
	Upper       []int
	Constraints []Constraint
}

// Settled reports whether formulation already decided the problem: with no
// constraint left, every variable is fixed at 0.
func (p *Problem) Settled() bool { return len(p.Constraints) == 0 }

// Live returns the variables that are not fixed at zero, ascending.
func (p *Problem) Live() []int {
	var out []int
	for v := 0; v < p.NumVars; v++ {
		if p.Upper[v] > 0 {
			out = append(out, v)
		}
	}

	return out
}

// Check reports whether values is a feasible point of p.
func (p *Problem) Check(values []int) error {
	if len(values) != p.NumVars {
		return fmt.Errorf("%d values for %d variables: %w", len(values), p.NumVars, ErrBackendResult)
	}
	for v, x := range values {
		if x < 0 || x > p.Upper[v] {
			return fmt.Errorf("x%d=%d outside [0,%d]: %w", v, x, p.Upper[v], ErrBackendResult)
		}
	}
	for _, c := range p.Constraints {
		sum := 0
		for _, v := range c.Vars {
			sum += values[v]
		}
		if sum != c.Target {
			return fmt.Errorf("output %d reaches %d, want %d: %w", c.Output, sum, c.Target, ErrBackendResult)
		}
	}

	return nil
}

// Formulate builds the Problem for counts over buttons.
//
// Contracts:
//   - every button has len(counts) bits; every count is ≥ 0.
//
// Errors: ErrDimensionMismatch, ErrNegativeCount, and ErrInfeasible when an
// output with a positive count has no wired button that can still move.
//
// Complexity: O(L·B).
func Formulate(counts []int, buttons []bitvec.Vector) (*Problem, error) {
	var (
		l    = len(counts)
		b    = len(buttons)
		o, i int
	)
	for i = range buttons {
		if buttons[i].Len() != l {
			return nil, fmt.Errorf("button %d has length %d, want %d: %w",
				i, buttons[i].Len(), l, ErrDimensionMismatch)
		}
	}
	for o = range counts {
		if counts[o] < 0 {
			return nil, fmt.Errorf("output %d count %d: %w", o, counts[o], ErrNegativeCount)
		}
	}

	// Stage 1: upper bound per button = min count over its outputs; an
	// unwired button is useless and fixed at 0.
	p := &Problem{NumVars: b, Upper: make([]int, b)}
	for i = 0; i < b; i++ {
		wired := false
		for o = 0; o < l; o++ {
			if !buttons[i].Bit(o) {
				continue
			}
			if !wired || counts[o] < p.Upper[i] {
				p.Upper[i] = counts[o]
			}
			wired = true
		}
	}

	// Stage 2: one equality per output over its live buttons.
	for o = 0; o < l; o++ {
		var vars []int
		for i = 0; i < b; i++ {
			if buttons[i].Bit(o) && p.Upper[i] > 0 {
				vars = append(vars, i)
			}
		}
		if len(vars) == 0 {
			if counts[o] > 0 {
				return nil, fmt.Errorf("output %d needs %d but no button can reach it: %w",
					o, counts[o], ErrInfeasible)
			}

			continue // 0 = 0
		}
		p.Constraints = append(p.Constraints, Constraint{Output: o, Vars: vars, Target: counts[o]})
	}

	return p, nil
}

// Verify checks presses against the raw equations: every press count is
// nonnegative and every output receives exactly its count.
func Verify(counts []int, buttons []bitvec.Vector, presses []int) error {
	if len(presses) != len(buttons) {
		return fmt.Errorf("%d presses for %d buttons: %w", len(presses), len(buttons), ErrDimensionMismatch)
	}
	got := make([]int, len(counts))
	for i, n := range presses {
		if n < 0 {
			return fmt.Errorf("button %d pressed %d times: %w", i, n, ErrBackendResult)
		}
		if buttons[i].Len() != len(counts) {
			return fmt.Errorf("button %d: %w", i, ErrDimensionMismatch)
		}
		for _, o := range buttons[i].Indices() {
			got[o] += n
		}
	}
	for o := range counts {
		if got[o] != counts[o] {
			return fmt.Errorf("output %d reaches %d, want %d: %w", o, got[o], counts[o], ErrBackendResult)
		}
	}

	return nil
}
