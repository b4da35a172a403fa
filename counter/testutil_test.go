package counter_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/jfkriz/togglesolve/bitvec"
	"github.com/jfkriz/togglesolve/counter"
	"github.com/stretchr/testify/require"
)

// backends lists every shipped optimiser; property tests run against each.
func backends() []counter.Backend {
	return []counter.Backend{counter.NewPseudoBoolean(), counter.NewSearch()}
}

// wirings expands index lists into button vectors of length n.
func wirings(t testing.TB, n int, idx ...[]int) []bitvec.Vector {
	t.Helper()
	out := make([]bitvec.Vector, len(idx))
	for i, list := range idx {
		v, err := bitvec.FromIndices(n, list)
		require.NoError(t, err)
		out[i] = v
	}

	return out
}

// countingBackend records calls and delegates to next (or blocks on ctx
// when next is nil).
type countingBackend struct {
	calls atomic.Int32
	next  counter.Backend
}

func (c *countingBackend) Name() string { return "counting" }

func (c *countingBackend) Minimize(ctx context.Context, p *counter.Problem) (counter.Result, error) {
	c.calls.Add(1)
	if c.next == nil {
		<-ctx.Done()

		return counter.Result{}, ctx.Err()
	}

	return c.next.Minimize(ctx, p)
}

// liarBackend returns all-ones regardless of the problem.
type liarBackend struct{}

func (liarBackend) Name() string { return "liar" }

func (liarBackend) Minimize(_ context.Context, p *counter.Problem) (counter.Result, error) {
	v := make([]int, p.NumVars)
	for i := range v {
		v[i] = 1
	}

	return counter.Result{Values: v}, nil
}

// bruteMin enumerates every press vector in [0, limit]^B and returns the
// smallest total meeting counts, or -1.
func bruteMin(counts []int, buttons []bitvec.Vector, limit int) int {
	best := -1
	x := make([]int, len(buttons))
	var rec func(i, sum int)
	rec = func(i, sum int) {
		if best >= 0 && sum >= best {
			return
		}
		if i == len(buttons) {
			if counter.Verify(counts, buttons, x) == nil {
				best = sum
			}
			return
		}
		for v := 0; v <= limit; v++ {
			x[i] = v
			rec(i+1, sum+v)
		}
		x[i] = 0
	}
	rec(0, 0)

	return best
}
