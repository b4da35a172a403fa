// Package togglesolve computes the fewest button presses that configure
// factory machines.
//
// 🚀 What is togglesolve?
//
//	Each machine has L outputs, a set of buttons wired to subsets of them,
//	a target light pattern and a vector of counter targets. Two questions
//	are answered per machine and summed over a batch:
//		• Lights: a press toggles its outputs; solved exactly over GF(2)
//		• Counters: a press increments its outputs; solved as an integer program
//
// ✨ Layout
//
//	bitvec/           — packed uint64 bit vectors (wirings, light patterns)
//	gf2/              — Gauss–Jordan over GF(2) + minimum-weight enumeration
//	counter/          — integer formulation, pseudo-boolean and native backends
//	certify/          — independent SAT proof of lights minima
//	machine/          — machine record + line parser
//	factory/          — batch orchestrator: worker pool, aggregates, progress events
//	metrics/          — Prometheus observer
//	config/           — YAML + environment configuration
//	cmd/togglesolve/  — command-line front end
//
// Quick example, one machine per line:
//
//	[.##.] (3) (1,3) (2) (2,3) (0,2) (0,1) {3,5,4,7}
//
// reaches ".##." in 2 presses and the counters {3,5,4,7} in 10.
//
//	go install github.com/jfkriz/togglesolve/cmd/togglesolve@latest
package togglesolve
