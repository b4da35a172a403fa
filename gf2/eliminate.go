// SPDX-License-Identifier: MIT

package gf2

import (
	"fmt"

	"github.com/jfkriz/togglesolve/bitvec"
)

// system is the elimination state of one solve: L packed rows over B+1
// columns (button columns, then the target column), plus the pivot layout.
// It owns its rows; callers' vectors are never mutated.
type system struct {
	rows   []bitvec.Vector
	nVars  int
	pivots []int // pivots[r] is the pivot column of row r, r < rank
}

// validate checks that every button has the target's length.
func validate(target bitvec.Vector, buttons []bitvec.Vector) error {
	var (
		l = target.Len()
		i int
	)
	for i = range buttons {
		if buttons[i].Len() != l {
			return fmt.Errorf("button %d has length %d, want %d: %w",
				i, buttons[i].Len(), l, ErrDimensionMismatch)
		}
	}

	return nil
}

// buildAugmented lays out the augmented matrix row by row.
//
// Complexity: O(L·B).
func buildAugmented(target bitvec.Vector, buttons []bitvec.Vector) *system {
	var (
		l    = target.Len()
		b    = len(buttons)
		rows = make([]bitvec.Vector, l)
		row  = make([]bool, b+1)
		r, c int
	)
	for r = 0; r < l; r++ {
		for c = 0; c < b; c++ {
			row[c] = buttons[c].Bit(r)
		}
		row[b] = target.Bit(r)
		rows[r] = bitvec.FromBools(row) // FromBools copies
	}

	return &system{rows: rows, nVars: b}
}

// eliminate performs Gauss–Jordan reduction mod 2 in place and returns
// ErrNoSolution when a zero coefficient row has a 1 in the target column.
//
// After it returns nil, rows[0:rank] are in reduced row-echelon form: each
// pivot column has a single 1, in its own row.
func (s *system) eliminate() error {
	var (
		l        = len(s.rows)
		row      int
		col, sel int
		r        int
	)
	for col = 0; col < s.nVars && row < l; col++ {
		// Stage 1: find a row at or below the pivot row with a 1 in col.
		for sel = row; sel < l && !s.rows[sel].Bit(col); sel++ {
		}
		if sel == l {
			continue // free column
		}
		s.rows[row], s.rows[sel] = s.rows[sel], s.rows[row]

		// Stage 2: clear col from every other row.
		for r = 0; r < l; r++ {
			if r != row && s.rows[r].Bit(col) {
				if err := s.rows[r].XorAssign(s.rows[row]); err != nil {
					return err
				}
			}
		}
		s.pivots = append(s.pivots, col)
		row++
	}

	// Stage 3: rows below the rank have zero coefficients; a set target bit
	// there reads 0 = 1.
	for r = row; r < l; r++ {
		if s.rows[r].Bit(s.nVars) {
			return ErrNoSolution
		}
	}

	return nil
}

// rank returns the number of pivots.
func (s *system) rank() int { return len(s.pivots) }

// freeColumns splits the non-pivot columns into coupled ones (appearing in
// at least one pivot row) and inert ones (zero everywhere after reduction).
// Inert columns never change the outcome of a press plan, so the minimum
// always leaves them unpressed.
func (s *system) freeColumns() (coupled, inert []int) {
	var (
		isPivot = make([]bool, s.nVars)
		c, r    int
		used    bool
	)
	for _, c = range s.pivots {
		isPivot[c] = true
	}
	for c = 0; c < s.nVars; c++ {
		if isPivot[c] {
			continue
		}
		used = false
		for r = 0; r < s.rank(); r++ {
			if s.rows[r].Bit(c) {
				used = true
				break
			}
		}
		if used {
			coupled = append(coupled, c)
		} else {
			inert = append(inert, c)
		}
	}

	return coupled, inert
}

// compile packs each pivot row into (rhs, coefficient mask over coupled
// free columns) for the enumeration kernel. len(coupled) ≤ 64.
func (s *system) compile(coupled []int) (rhs []bool, coef []uint64) {
	var (
		k    = s.rank()
		r, j int
	)
	rhs = make([]bool, k)
	coef = make([]uint64, k)
	for r = 0; r < k; r++ {
		rhs[r] = s.rows[r].Bit(s.nVars)
		for j = range coupled {
			if s.rows[r].Bit(coupled[j]) {
				coef[r] |= 1 << uint(j)
			}
		}
	}

	return rhs, coef
}
