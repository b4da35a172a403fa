// SPDX-License-Identifier: MIT

package gf2

import (
	"context"
	"fmt"
	"math"
	"math/bits"

	"golang.org/x/sync/errgroup"
)

// candidate is a free-variable mask with its total plan weight.
type candidate struct {
	mask   uint64
	weight int
}

// better reports whether c beats o: lower weight, then lower mask.
func (c candidate) better(o candidate) bool {
	if c.weight != o.weight {
		return c.weight < o.weight
	}

	return c.mask < o.mask
}

// pivotValue back-substitutes one pivot variable for the given mask.
func pivotValue(rhs bool, coef, mask uint64) bool {
	return rhs != (bits.OnesCount64(coef&mask)&1 == 1)
}

// evaluate returns the weight of the plan selected by mask.
func evaluate(mask uint64, rhs []bool, coef []uint64) int {
	w := bits.OnesCount64(mask)
	for r := range rhs {
		if pivotValue(rhs[r], coef[r], mask) {
			w++
		}
	}

	return w
}

// evaluateBelow is evaluate with early exit: it returns (w, true) when the
// weight is below bound and (_, false) as soon as it cannot be.
func evaluateBelow(mask uint64, rhs []bool, coef []uint64, bound int) (int, bool) {
	w := bits.OnesCount64(mask)
	if w >= bound {
		return 0, false
	}
	for r := range rhs {
		if pivotValue(rhs[r], coef[r], mask) {
			w++
			if w >= bound {
				return 0, false
			}
		}
	}

	return w, true
}

// scan finds the best mask in [lo, hi). The first mask is always evaluated,
// so the returned candidate is valid whenever lo < hi.
func scan(ctx context.Context, lo, hi uint64, rhs []bool, coef []uint64) (candidate, error) {
	var (
		best = candidate{mask: lo, weight: evaluate(lo, rhs, coef)}
		m    uint64
		w    int
		ok   bool
	)
	for m = lo + 1; m < hi; m++ {
		if (m-lo)&(checkEvery-1) == 0 {
			if err := ctx.Err(); err != nil {
				return candidate{}, fmt.Errorf("gf2: enumeration stopped: %w", err)
			}
		}
		if w, ok = evaluateBelow(m, rhs, coef, best.weight); ok {
			best = candidate{mask: m, weight: w}
		}
	}

	return best, nil
}

// search enumerates all 2^f masks, split into up to p contiguous chunks.
// Every chunk keeps its first strict minimum and the reduction orders by
// (weight, mask), so the answer does not depend on p or on scheduling.
func search(ctx context.Context, f int, rhs []bool, coef []uint64, p int) (candidate, uint64, error) {
	total := uint64(1) << uint(f)
	if uint64(p) > total {
		p = int(total)
	}
	if p <= 1 {
		best, err := scan(ctx, 0, total, rhs, coef)

		return best, total, err
	}

	var (
		chunk   = total / uint64(p)
		results = make([]candidate, p)
		g, gctx = errgroup.WithContext(ctx)
	)
	for i := 0; i < p; i++ {
		lo := uint64(i) * chunk
		hi := lo + chunk
		if i == p-1 {
			hi = total
		}
		g.Go(func() error {
			c, err := scan(gctx, lo, hi, rhs, coef)
			if err != nil {
				return err
			}
			results[i] = c

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return candidate{}, 0, err
	}

	best := candidate{mask: math.MaxUint64, weight: math.MaxInt}
	for i := range results {
		if results[i].better(best) {
			best = results[i]
		}
	}

	return best, total, nil
}
