// SPDX-License-Identifier: MIT

// Package counter solves the counter model of a toggle system: each button
// adds 1 to every output it is wired to, may be pressed any nonnegative
// number of times, and every output must end exactly on its target count.
// The objective is the fewest total presses.
//
// The package owns the formulation, not the optimiser:
//
//	minimize   Σ xᵢ
//	subject to Σ_{i ∈ wired(o)} xᵢ = countₒ   for every output o
//	           0 ≤ xᵢ ≤ uᵢ, xᵢ ∈ ℤ
//
// where uᵢ is the smallest target among the outputs button i touches (a
// press can never be undone, so no button may overshoot any of its outputs).
// Degenerate outputs are settled during formulation: an unwired output with
// target 0 is dropped, an unwired output with a positive target is
// ErrInfeasible before any backend runs, and a button touching a zero-target
// output is fixed at 0.
//
// The optimiser is a Backend. Two ship with the package:
//
//   - PseudoBoolean – github.com/crillab/gophersat; variables are
//     binary-encoded and the problem becomes a pseudo-boolean minimisation.
//   - Search        – exact integer row reduction followed by a bounded
//     depth-first enumeration of the free variables.
//
// Every backend answer is re-checked against the original equations before
// it is returned, and each call runs under a timeout that surfaces as
// ErrTimeout, never as ErrInfeasible.
package counter
