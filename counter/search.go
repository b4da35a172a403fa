// SPDX-License-Identifier: MIT

package counter

import (
	"context"
	"fmt"
	"math"
)

// searchCheckEvery is the leaf interval between context polls.
const searchCheckEvery = 4096

// Search is an exact Backend written against the problem structure
// directly: integer Gauss–Jordan reduction (rows kept primitive by gcd)
// expresses every pivot variable through the free ones, then a depth-first
// walk over the free variables' boxes [0, u] finds the cheapest integral,
// in-bounds completion. A running incumbent prunes any partial assignment
// whose free part alone already costs as much.
//
// Complexity: O(m·n²) reduction, then O(Π(u_f+1) · r) leaves in the worst
// case, where f ranges over free variables and r is the rank.
type Search struct{}

// NewSearch returns the native exact optimiser.
func NewSearch() *Search { return &Search{} }

// Name implements Backend.
func (*Search) Name() string { return "search" }

// searchEngine holds one reduction and the walk state.
type searchEngine struct {
	ctx context.Context

	vars   []int     // live problem variables, column order
	upper  []int64   // upper[c] for column c
	rows   [][]int64 // reduced rows over len(vars) columns + rhs
	pivots []int     // pivots[r]: pivot column of row r
	free   []int     // free columns, walk order

	x     []int64 // current assignment by column
	best  int64
	bestX []int64
	found bool
	steps int
}

// Minimize implements Backend.
func (*Search) Minimize(ctx context.Context, p *Problem) (Result, error) {
	e := newSearchEngine(ctx, p)
	if err := e.reduce(); err != nil {
		return Result{}, err
	}
	if err := e.walk(0, 0); err != nil {
		return Result{}, err
	}
	if !e.found {
		return Result{}, ErrInfeasible
	}

	values := make([]int, p.NumVars)
	for c, v := range e.vars {
		values[v] = int(e.bestX[c])
	}

	return Result{Values: values}, nil
}

func newSearchEngine(ctx context.Context, p *Problem) *searchEngine {
	e := &searchEngine{ctx: ctx, vars: p.Live(), best: math.MaxInt64}
	col := make(map[int]int, len(e.vars))
	e.upper = make([]int64, len(e.vars))
	for c, v := range e.vars {
		col[v] = c
		e.upper[c] = int64(p.Upper[v])
	}
	n := len(e.vars)
	e.rows = make([][]int64, len(p.Constraints))
	for r, c := range p.Constraints {
		row := make([]int64, n+1)
		for _, v := range c.Vars {
			row[col[v]] = 1
		}
		row[n] = int64(c.Target)
		e.rows[r] = row
	}
	e.x = make([]int64, n)
	e.bestX = make([]int64, n)

	return e
}

// reduce runs fraction-free Gauss–Jordan elimination. Each pivot row ends
// with a positive pivot and zeros in every other pivot column.
func (e *searchEngine) reduce() error {
	var (
		n        = len(e.vars)
		m        = len(e.rows)
		row      int
		col, sel int
		r, k     int
		isPivot  = make([]bool, n)
	)
	for col = 0; col < n && row < m; col++ {
		for sel = row; sel < m && e.rows[sel][col] == 0; sel++ {
		}
		if sel == m {
			continue
		}
		e.rows[row], e.rows[sel] = e.rows[sel], e.rows[row]
		piv := e.rows[row]
		for r = 0; r < m; r++ {
			if r == row || e.rows[r][col] == 0 {
				continue
			}
			a, b := piv[col], e.rows[r][col]
			for k = 0; k <= n; k++ {
				e.rows[r][k] = e.rows[r][k]*a - piv[k]*b
			}
			normalize(e.rows[r])
		}
		e.pivots = append(e.pivots, col)
		isPivot[col] = true
		row++
	}

	// Rows past the rank read 0 = rhs.
	for r = row; r < m; r++ {
		if e.rows[r][n] != 0 {
			return ErrInfeasible
		}
	}
	e.rows = e.rows[:row]
	for r = range e.rows {
		if e.rows[r][e.pivots[r]] < 0 {
			for k = 0; k <= n; k++ {
				e.rows[r][k] = -e.rows[r][k]
			}
		}
	}
	for col = 0; col < n; col++ {
		if !isPivot[col] {
			e.free = append(e.free, col)
		}
	}

	return nil
}

// normalize divides row by the gcd of its entries.
func normalize(row []int64) {
	var g int64
	for _, a := range row {
		g = gcd(g, a)
	}
	if g > 1 {
		for i := range row {
			row[i] /= g
		}
	}
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// walk assigns free variable e.free[i] and recurses; at the leaf it
// back-substitutes the pivots. cost is Σ of free values assigned so far.
func (e *searchEngine) walk(i int, cost int64) error {
	if cost >= e.best {
		return nil
	}
	if i == len(e.free) {
		return e.leaf(cost)
	}
	c := e.free[i]
	for v := int64(0); v <= e.upper[c]; v++ {
		if cost+v >= e.best {
			break
		}
		e.x[c] = v
		if err := e.walk(i+1, cost+v); err != nil {
			return err
		}
	}
	e.x[c] = 0

	return nil
}

// leaf completes the assignment and records it when it is a new optimum.
func (e *searchEngine) leaf(cost int64) error {
	e.steps++
	if e.steps%searchCheckEvery == 0 {
		if err := e.ctx.Err(); err != nil {
			return fmt.Errorf("search: %w", err)
		}
	}

	n := len(e.vars)
	for r, row := range e.rows {
		num := row[n]
		for _, f := range e.free {
			num -= row[f] * e.x[f]
		}
		p := e.pivots[r]
		if num < 0 || num%row[p] != 0 {
			return nil
		}
		v := num / row[p]
		if v > e.upper[p] {
			return nil
		}
		e.x[p] = v
		cost += v
		if cost >= e.best {
			return nil
		}
	}

	e.best = cost
	e.found = true
	copy(e.bestX, e.x)

	return nil
}
