// SPDX-License-Identifier: MIT

// Package certify re-proves lights minima with an independent SAT solver.
//
// The toggle system is encoded as a combinational circuit (one input per
// button, an XOR chain per output, a unary counter over the inputs) and
// handed to github.com/go-air/gini. A claimed minimum w is certified when
// "at most w presses" is satisfiable and "at most w-1 presses" is not.
package certify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/jfkriz/togglesolve/bitvec"
)

var (
	// ErrUnreachable indicates no press set of the claimed size reaches the target.
	ErrUnreachable = errors.New("certify: claimed minimum is unreachable")

	// ErrNotMinimal indicates a strictly smaller press set reaches the target.
	ErrNotMinimal = errors.New("certify: claimed minimum is not minimal")

	// ErrDimensionMismatch indicates a button whose length differs from the target's.
	ErrDimensionMismatch = errors.New("certify: dimension mismatch")
)

// pollEvery is the interval between context checks while gini runs.
const pollEvery = 5 * time.Millisecond

// toggleCircuit is the encoded system.
type toggleCircuit struct {
	c       *logic.C
	presses []z.Lit // presses[j]: button j is pressed
	atLeast []z.Lit // atLeast[k]: more than k buttons are pressed
	reach   []z.Lit // reach[o]: output o ends in its target state
}

// build encodes target and buttons, with a counter exact up to bound presses.
func build(target bitvec.Vector, buttons []bitvec.Vector, bound int) *toggleCircuit {
	var (
		l  = target.Len()
		tc = &toggleCircuit{c: logic.NewC()}
		c  = tc.c
	)
	tc.presses = make([]z.Lit, len(buttons))
	for j := range buttons {
		tc.presses[j] = c.Lit()
	}

	// Stage 1: parity per output.
	tc.reach = make([]z.Lit, l)
	for o := 0; o < l; o++ {
		parity := c.F
		for j, b := range buttons {
			if b.Bit(o) {
				parity = c.Xor(parity, tc.presses[j])
			}
		}
		if target.Bit(o) {
			tc.reach[o] = parity
		} else {
			tc.reach[o] = parity.Not()
		}
	}

	// Stage 2: sequential unary counter, atLeast[k] over the first j inputs.
	tc.atLeast = make([]z.Lit, bound+1)
	for k := range tc.atLeast {
		tc.atLeast[k] = c.F
	}
	for _, x := range tc.presses {
		for k := bound; k >= 0; k-- {
			prev := c.T
			if k > 0 {
				prev = tc.atLeast[k-1]
			}
			tc.atLeast[k] = c.Or(tc.atLeast[k], c.And(prev, x))
		}
	}

	return tc
}

// atMost returns a literal true iff at most k buttons are pressed, k <= bound.
func (tc *toggleCircuit) atMost(k int) z.Lit {
	if k < 0 {
		return tc.c.F
	}

	return tc.atLeast[k].Not()
}

// Lights reports whether weight is the minimum number of presses turning
// all-off lights into target. It returns nil when certified, ErrUnreachable
// or ErrNotMinimal when refuted, and the context error when interrupted.
func Lights(ctx context.Context, target bitvec.Vector, buttons []bitvec.Vector, weight int) error {
	for i, b := range buttons {
		if b.Len() != target.Len() {
			return fmt.Errorf("button %d has length %d, want %d: %w", i, b.Len(), target.Len(), ErrDimensionMismatch)
		}
	}
	if weight < 0 || weight > len(buttons) {
		return fmt.Errorf("weight %d with %d buttons: %w", weight, len(buttons), ErrUnreachable)
	}

	tc := build(target, buttons, weight)
	g := gini.New()
	tc.c.ToCnf(g)
	unit(g, tc.c.T)
	for _, r := range tc.reach {
		unit(g, r)
	}

	sat, err := solve(ctx, g, tc.atMost(weight))
	if err != nil {
		return err
	}
	if !sat {
		return fmt.Errorf("%d presses: %w", weight, ErrUnreachable)
	}
	if weight == 0 {
		return nil
	}

	sat, err = solve(ctx, g, tc.atMost(weight-1))
	if err != nil {
		return err
	}
	if sat {
		return fmt.Errorf("%d presses suffice: %w", weight-1, ErrNotMinimal)
	}

	return nil
}

func unit(g *gini.Gini, m z.Lit) {
	g.Add(m)
	g.Add(z.LitNull)
}

// solve runs g under assumption m, polling ctx while the search is active.
func solve(ctx context.Context, g *gini.Gini, m z.Lit) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("certify: %w", err)
	}
	g.Assume(m)
	s := g.GoSolve()

	tick := time.NewTicker(pollEvery)
	defer tick.Stop()
	for {
		if res, done := s.Test(); done {
			return res == 1, nil
		}
		select {
		case <-ctx.Done():
			s.Stop()

			return false, fmt.Errorf("certify: %w", ctx.Err())
		case <-tick.C:
		}
	}
}
