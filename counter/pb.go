// SPDX-License-Identifier: MIT

package counter

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/crillab/gophersat/solver"
)

// PseudoBoolean is a Backend that encodes the problem as a pseudo-boolean
// minimisation for github.com/crillab/gophersat.
//
// Encoding: a variable with upper bound u > 0 becomes k = bits.Len(u)
// literals ℓ₀…ℓ_{k−1} with x = Σ 2^j·ℓⱼ. Each equality is a weighted
// Eq constraint over those literals, each bound that is not a power of two
// minus one adds an LtEq, and the cost function is every literal with its
// weight 2^j. The search stops when ctx is done.
type PseudoBoolean struct{}

// NewPseudoBoolean returns the gophersat-backed optimiser.
func NewPseudoBoolean() *PseudoBoolean { return &PseudoBoolean{} }

// Name implements Backend.
func (*PseudoBoolean) Name() string { return "pb" }

// pbEncoding maps problem variables to solver literals.
type pbEncoding struct {
	lits    [][]int // lits[v][j] is the literal of bit j of x_v
	nbLits  int
	constrs []solver.PBConstr
}

// encode builds the literal layout and the constraint set.
func encode(p *Problem) *pbEncoding {
	var (
		e    = &pbEncoding{lits: make([][]int, p.NumVars)}
		next = 1 // gophersat literals are 1-based
		v, j int
	)
	for v = 0; v < p.NumVars; v++ {
		u := p.Upper[v]
		if u <= 0 {
			continue
		}
		k := bits.Len(uint(u))
		e.lits[v] = make([]int, k)
		for j = 0; j < k; j++ {
			e.lits[v][j] = next
			next++
		}
		if u != 1<<uint(k)-1 {
			// LtEq negates its literals in place.
			e.constrs = append(e.constrs, solver.LtEq(append([]int(nil), e.lits[v]...), powers(k), u))
		}
	}
	e.nbLits = next - 1

	for _, c := range p.Constraints {
		var lits, weights []int
		for _, v = range c.Vars {
			lits = append(lits, e.lits[v]...)
			weights = append(weights, powers(len(e.lits[v]))...)
		}
		e.constrs = append(e.constrs, solver.Eq(lits, weights, c.Target)...)
	}

	return e
}

// powers returns [1, 2, 4, …, 2^(k−1)].
func powers(k int) []int {
	out := make([]int, k)
	for j := range out {
		out[j] = 1 << uint(j)
	}

	return out
}

// costFunc returns the objective Σ x as weighted solver literals.
func (e *pbEncoding) costFunc() ([]solver.Lit, []int) {
	var (
		lits    = make([]solver.Lit, 0, e.nbLits)
		weights = make([]int, 0, e.nbLits)
	)
	for _, vl := range e.lits {
		for j, id := range vl {
			lits = append(lits, solver.IntToLit(int32(id)))
			weights = append(weights, 1<<uint(j))
		}
	}

	return lits, weights
}

// decode reads variable values out of a solver model (model[id-1] is literal id).
func (e *pbEncoding) decode(model []bool) ([]int, error) {
	values := make([]int, len(e.lits))
	for v, vl := range e.lits {
		for j, id := range vl {
			if id < 1 || id > len(model) {
				return nil, fmt.Errorf("model has %d bindings, need literal %d: %w", len(model), id, ErrBackendResult)
			}
			if model[id-1] {
				values[v] += 1 << uint(j)
			}
		}
	}

	return values, nil
}

// Minimize implements Backend.
func (b *PseudoBoolean) Minimize(ctx context.Context, p *Problem) (Result, error) {
	e := encode(p)
	if e.nbLits == 0 {
		return Result{Values: make([]int, p.NumVars)}, nil
	}

	pb := solver.ParsePBConstrs(e.constrs)
	pb.SetCostFunc(e.costFunc())
	s := solver.New(pb)

	// The solver polls stop between restarts; close it when ctx ends.
	var (
		stop = make(chan struct{})
		done = make(chan struct{})
	)
	go func() {
		select {
		case <-ctx.Done():
			close(stop)
		case <-done:
		}
	}()
	out := s.Optimal(nil, stop)
	close(done)

	if cerr := ctx.Err(); cerr != nil {
		return Result{}, cerr // an interrupted search proves nothing
	}
	switch out.Status {
	case solver.Unsat:
		return Result{}, ErrInfeasible
	case solver.Sat:
	default:
		return Result{}, fmt.Errorf("pb: status %v: %w", out.Status, ErrBackendResult)
	}

	if len(out.Model) == 0 {
		return Result{}, fmt.Errorf("pb: sat without a model: %w", ErrBackendResult)
	}
	values, err := e.decode(out.Model)
	if err != nil {
		return Result{}, err
	}

	return Result{Values: values}, nil
}
