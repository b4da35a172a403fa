package counter_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jfkriz/togglesolve/bitvec"
	"github.com/jfkriz/togglesolve/counter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	name    string
	counts  []int
	buttons [][]int
	want    int
}

var samples = []sample{
	{"first", []int{3, 5, 4, 7}, [][]int{{3}, {1, 3}, {2}, {2, 3}, {0, 2}, {0, 1}}, 10},
	{"second", []int{7, 5, 12, 7, 2}, [][]int{{0, 2, 3, 4}, {2, 3}, {0, 4}, {0, 1, 2}, {1, 2, 3, 4}}, 12},
	{"third", []int{10, 11, 11, 5, 10, 5}, [][]int{{0, 1, 2, 3, 4}, {0, 3, 4}, {0, 1, 2, 4, 5}, {1, 2}}, 11},
}

func TestSolve_SampleMachines(t *testing.T) {
	for _, be := range backends() {
		t.Run(be.Name(), func(t *testing.T) {
			s := counter.NewSolver(counter.WithBackend(be))
			total := 0
			for _, m := range samples {
				buttons := wirings(t, len(m.counts), m.buttons...)
				sol, err := s.Solve(context.Background(), m.counts, buttons)
				require.NoError(t, err, m.name)
				require.Equal(t, m.want, sol.Total, m.name)
				require.NoError(t, counter.Verify(m.counts, buttons, sol.Presses))
				require.Equal(t, be.Name(), sol.Backend)
				total += sol.Total
			}
			require.Equal(t, 33, total)
		})
	}
}

func TestSolve_AllZeroUnwired_SkipsBackend(t *testing.T) {
	spy := &countingBackend{next: counter.NewSearch()}
	s := counter.NewSolver(counter.WithBackend(spy))

	sol, err := s.Solve(context.Background(), []int{0, 0, 0}, nil)
	require.NoError(t, err)
	require.Equal(t, 0, sol.Total)
	require.Empty(t, sol.Presses)
	require.Empty(t, sol.Backend)
	require.Zero(t, spy.calls.Load())
}

func TestSolve_PositiveUnwired_InfeasibleWithoutBackend(t *testing.T) {
	spy := &countingBackend{next: counter.NewSearch()}
	s := counter.NewSolver(counter.WithBackend(spy))
	buttons := wirings(t, 3, []int{0}, []int{0, 1})

	_, err := s.Solve(context.Background(), []int{1, 1, 4}, buttons)
	require.ErrorIs(t, err, counter.ErrInfeasible)
	require.Zero(t, spy.calls.Load())

	// Output 1 is wired, but only through a button also wired to a zero
	// target, so nothing can move it.
	_, err = s.Solve(context.Background(), []int{0, 2}, wirings(t, 2, []int{0, 1}))
	require.ErrorIs(t, err, counter.ErrInfeasible)
	require.Zero(t, spy.calls.Load())
}

func TestSolve_Infeasible_EachBackend(t *testing.T) {
	for _, be := range backends() {
		t.Run(be.Name(), func(t *testing.T) {
			s := counter.NewSolver(counter.WithBackend(be))

			// x0 = 1 and x0 = 2 at once.
			_, err := s.Solve(context.Background(), []int{1, 2}, wirings(t, 2, []int{0, 1}))
			require.ErrorIs(t, err, counter.ErrInfeasible)

			// Parity: x0+x1 = 1, x1+x2 = 1, x0+x2 = 1 has only the fractional point ½.
			_, err = s.Solve(context.Background(), []int{1, 1, 1},
				wirings(t, 3, []int{0, 2}, []int{0, 1}, []int{1, 2}))
			require.ErrorIs(t, err, counter.ErrInfeasible)
			require.NotErrorIs(t, err, counter.ErrTimeout)
		})
	}
}

func TestSolve_MatchesBruteForce(t *testing.T) {
	for _, be := range backends() {
		t.Run(be.Name(), func(t *testing.T) {
			s := counter.NewSolver(counter.WithBackend(be))
			rng := rand.New(rand.NewPCG(33, 10))
			for iter := 0; iter < 120; iter++ {
				l := 1 + rng.IntN(4)
				b := 1 + rng.IntN(4)
				idx := make([][]int, b)
				for i := range idx {
					for o := 0; o < l; o++ {
						if rng.IntN(2) == 0 {
							idx[i] = append(idx[i], o)
						}
					}
				}
				buttons := wirings(t, l, idx...)
				counts := make([]int, l)
				if rng.IntN(3) == 0 {
					for o := range counts {
						counts[o] = rng.IntN(6)
					}
				} else {
					for i := range buttons {
						n := rng.IntN(4)
						for _, o := range idx[i] {
							counts[o] += n
						}
					}
				}
				limit := 0
				for _, c := range counts {
					limit = max(limit, c)
				}

				want := bruteMin(counts, buttons, limit)
				sol, err := s.Solve(context.Background(), counts, buttons)
				if want < 0 {
					require.ErrorIs(t, err, counter.ErrInfeasible, "iter %d counts %v wiring %v", iter, counts, idx)
					continue
				}
				require.NoError(t, err, "iter %d counts %v wiring %v", iter, counts, idx)
				require.Equal(t, want, sol.Total, "iter %d counts %v wiring %v", iter, counts, idx)
				require.NoError(t, counter.Verify(counts, buttons, sol.Presses))
			}
		})
	}
}

func TestSolve_Timeout(t *testing.T) {
	blocker := &countingBackend{}
	s := counter.NewSolver(counter.WithBackend(blocker), counter.WithTimeout(20*time.Millisecond))

	_, err := s.Solve(context.Background(), []int{1}, wirings(t, 1, []int{0}))
	require.ErrorIs(t, err, counter.ErrTimeout)
	require.NotErrorIs(t, err, counter.ErrInfeasible)
	require.EqualValues(t, 1, blocker.calls.Load())
}

func TestSolve_CallerCancelIsNotTimeout(t *testing.T) {
	blocker := &countingBackend{}
	s := counter.NewSolver(counter.WithBackend(blocker), counter.WithTimeout(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Solve(ctx, []int{1}, wirings(t, 1, []int{0}))
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, counter.ErrTimeout)
}

func TestSolve_RejectsBadBackendPlan(t *testing.T) {
	s := counter.NewSolver(counter.WithBackend(liarBackend{}))
	_, err := s.Solve(context.Background(), []int{3, 3}, wirings(t, 2, []int{0, 1}))
	require.ErrorIs(t, err, counter.ErrBackendResult)
}

func TestSolve_InputErrors(t *testing.T) {
	s := counter.NewSolver(counter.WithBackend(counter.NewSearch()))

	_, err := s.Solve(context.Background(), []int{1, 2}, wirings(t, 3, []int{0}))
	require.ErrorIs(t, err, counter.ErrDimensionMismatch)

	_, err = s.Solve(context.Background(), []int{1, -2}, wirings(t, 2, []int{0}))
	require.ErrorIs(t, err, counter.ErrNegativeCount)
}

func TestSolve_PhaseHook(t *testing.T) {
	var seen []counter.Phase
	s := counter.NewSolver(
		counter.WithBackend(counter.NewSearch()),
		counter.WithPhaseHook(func(p counter.Phase) { seen = append(seen, p) }),
	)

	_, err := s.Solve(context.Background(), []int{2}, wirings(t, 1, []int{0}))
	require.NoError(t, err)
	assert.Equal(t, []counter.Phase{counter.PhaseFormulated, counter.PhaseOptimized}, seen)
	assert.Equal(t, "optimized", counter.PhaseOptimized.String())
}

func TestSolve_Deterministic(t *testing.T) {
	m := samples[1]
	for _, be := range backends() {
		s := counter.NewSolver(counter.WithBackend(be))
		buttons := wirings(t, len(m.counts), m.buttons...)
		a, err := s.Solve(context.Background(), m.counts, buttons)
		require.NoError(t, err)
		b, err := s.Solve(context.Background(), m.counts, buttons)
		require.NoError(t, err)
		require.Equal(t, a.Total, b.Total, be.Name())
	}
}

func TestOptions(t *testing.T) {
	require.Panics(t, func() { counter.WithTimeout(-time.Second) })

	s := counter.NewSolver(counter.WithBackend(nil))
	require.Equal(t, "pb", s.Backend().Name())
}

func TestVerify(t *testing.T) {
	buttons := []bitvec.Vector{bitvec.FromBools([]bool{true, true})}
	require.NoError(t, counter.Verify([]int{2, 2}, buttons, []int{2}))
	require.ErrorIs(t, counter.Verify([]int{2, 2}, buttons, []int{1}), counter.ErrBackendResult)
	require.ErrorIs(t, counter.Verify([]int{0, 0}, buttons, []int{-1}), counter.ErrBackendResult)
	require.ErrorIs(t, counter.Verify([]int{2, 2}, buttons, nil), counter.ErrDimensionMismatch)
}

func TestSolve_PerCallOptionsOverride(t *testing.T) {
	var base, call int
	s := counter.NewSolver(
		counter.WithBackend(counter.NewSearch()),
		counter.WithPhaseHook(func(counter.Phase) { base++ }),
	)

	_, err := s.Solve(context.Background(), []int{1}, wirings(t, 1, []int{0}),
		counter.WithPhaseHook(func(counter.Phase) { call++ }))
	require.NoError(t, err)
	require.Zero(t, base)
	require.Equal(t, 2, call)

	_, err = s.Solve(context.Background(), []int{1}, wirings(t, 1, []int{0}))
	require.NoError(t, err)
	require.Equal(t, 2, base)
}

func TestSolve_UpperBoundsOffPowerOfTwo(t *testing.T) {
	cases := []struct {
		name    string
		counts  []int
		buttons [][]int
		want    int
	}{
		{"single press target 2", []int{2}, [][]int{{0}}, 2},
		{"single press target 5", []int{5}, [][]int{{0}}, 5},
		{"single press target 6", []int{6}, [][]int{{0}}, 6},
		{"shared output", []int{2, 6}, [][]int{{0, 1}, {1}}, 6},
		{"bound reused across rows", []int{5, 5, 12}, [][]int{{0, 2}, {1, 2}, {2}}, 12},
	}
	for _, be := range backends() {
		t.Run(be.Name(), func(t *testing.T) {
			s := counter.NewSolver(counter.WithBackend(be))
			for _, tc := range cases {
				buttons := wirings(t, len(tc.counts), tc.buttons...)
				sol, err := s.Solve(context.Background(), tc.counts, buttons)
				require.NoError(t, err, tc.name)
				assert.Equal(t, tc.want, sol.Total, tc.name)
				require.NoError(t, counter.Verify(tc.counts, buttons, sol.Presses), tc.name)
			}
		})
	}
}
