// SPDX-License-Identifier: MIT

// Package gf2 solves toggle systems over GF(2) with a minimum-weight objective.
//
// A toggle system is a set of button vectors b₀…b_{B−1} and a target t, all of
// length L. Pressing a button twice cancels out, so a press plan is a bit
// vector x of length B, and the plan is valid when ⊕{bᵢ : xᵢ = 1} = t. Solve
// returns a valid plan of minimum Hamming weight (fewest buttons pressed).
//
// Algorithm:
//  1. Build the L×(B+1) augmented matrix [b₀ … b_{B−1} | t], one packed row
//     per output.
//  2. Gauss–Jordan elimination mod 2: for each button column pick the first
//     row at or below the pivot row with a 1, swap it up, XOR it into every
//     other row carrying that column. Stop when rows or columns run out.
//  3. A leftover row with a 1 in the target column is inconsistent:
//     t ∉ span(b), ErrNoSolution.
//  4. Non-pivot columns are free. Free columns that are zero in every row
//     touch nothing and are fixed at 0. The remaining f coupled free columns
//     are enumerated over all 2^f masks; each pivot variable is
//     rhs[r] ⊕ parity(row_r ∧ mask). The smallest total weight wins, ties go
//     to the smallest mask.
//
// Complexity:
//   - Elimination: O(L·B·⌈(B+1)/64⌉) word operations.
//   - Enumeration: O(2^f · r) where r = rank; bounded by Options.MaxFreeVars.
//
// Options:
//   - MaxFreeVars  – enumeration bound (default 24, ceiling 62).
//   - ExcessPolicy – Reject (default) fails with ErrTooManyFreeVars; Warn logs
//     and proceeds up to the ceiling.
//   - Parallelism  – number of mask-range chunks evaluated concurrently.
//   - Logger       – structured logger (default discards).
//   - PhaseHook    – called on each phase transition.
//
// Only the minimum weight is a contract; when several plans share it, which
// one is returned follows the tie-break above and may change between
// releases.
package gf2
