// Package factory drives a batch of machines through both solvers.
//
// An Orchestrator validates every machine, solves its lights objective
// (minimum presses over GF(2), package gf2) and its counters objective
// (minimum presses over the non-negative integers, package counter) on a
// bounded worker pool, and sums the per-machine minima into one Aggregate per
// objective. Machines are independent: results are stored by input index and
// summed only after the pool drains, so scheduling order never changes a
// total.
//
// Failure policy: by default a machine that cannot be solved for an
// objective is excluded from that objective's total, logged at WARN, and
// listed in Aggregate.Failures as a *MachineError. A solver panic counts as
// such a failure (ErrSolverPanic) and is confined to its machine.
// WithAbortOnError cancels the remaining work instead and returns the first
// failure.
//
// Progress is reported to an optional Observer as a stream of Events; the
// package itself writes to no output stream.
package factory
