// SPDX-License-Identifier: MIT

package factory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jfkriz/togglesolve/certify"
	"github.com/jfkriz/togglesolve/counter"
	"github.com/jfkriz/togglesolve/gf2"
	"github.com/jfkriz/togglesolve/machine"
)

var (
	// ErrNilMachine indicates a nil entry in the batch.
	ErrNilMachine = errors.New("factory: nil machine")

	// ErrBadWorkers indicates WithWorkers was given a value below 1.
	ErrBadWorkers = errors.New("factory: workers must be positive")

	// ErrSolverPanic indicates a solver panicked on one machine. The panic
	// is confined to that machine's result.
	ErrSolverPanic = errors.New("factory: solver panicked")

	// ErrUnknownObjective indicates an Objective value outside Lights and Counters.
	ErrUnknownObjective = errors.New("factory: unknown objective")
)

// Objective selects which minimum a solve computes.
type Objective int

const (
	// Lights is the toggle objective: reach the light pattern with the fewest presses.
	Lights Objective = iota
	// Counters is the increment objective: reach the counter targets with the fewest presses.
	Counters
)

// String implements fmt.Stringer.
func (o Objective) String() string {
	switch o {
	case Lights:
		return "lights"
	case Counters:
		return "counters"
	default:
		return fmt.Sprintf("objective(%d)", int(o))
	}
}

// ParseObjective is the inverse of Objective.String.
func ParseObjective(s string) (Objective, error) {
	switch s {
	case "lights":
		return Lights, nil
	case "counters":
		return Counters, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownObjective, s)
	}
}

// Stage identifies a progress point of one machine's solve.
type Stage int

const (
	StageParsed Stage = iota
	StageMatrixBuilt
	StageEliminated
	StageUnique
	StageEnumerated
	StageCertified
	StageFormulated
	StageOptimized
	StageSolved
	StageFailed
)

var stageNames = [...]string{
	StageParsed:      "parsed",
	StageMatrixBuilt: "matrix-built",
	StageEliminated:  "eliminated",
	StageUnique:      "unique",
	StageEnumerated:  "enumerated",
	StageCertified:   "certified",
	StageFormulated:  "formulated",
	StageOptimized:   "optimized",
	StageSolved:      "solved",
	StageFailed:      "failed",
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}

	return stageNames[s]
}

func lightsStage(p gf2.Phase) Stage {
	switch p {
	case gf2.PhaseMatrixBuilt:
		return StageMatrixBuilt
	case gf2.PhaseEliminated:
		return StageEliminated
	case gf2.PhaseUnique:
		return StageUnique
	default:
		return StageEnumerated
	}
}

func countersStage(p counter.Phase) Stage {
	if p == counter.PhaseFormulated {
		return StageFormulated
	}

	return StageOptimized
}

// Event is one progress notification.
type Event struct {
	MachineID int
	Index     int // position in the batch, 0-based
	Total     int // batch size
	Objective Objective
	Stage     Stage
	Value     int           // minimum presses; set on StageSolved
	Elapsed   time.Duration // since this machine's solve began; set on StageSolved and StageFailed
	Err       error         // set on StageFailed
}

// Observer receives Events. Observe is called from worker goroutines and
// must be safe for concurrent use.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) { f(e) }

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// MultiObserver fans every Event out to each non-nil observer in order.
func MultiObserver(observers ...Observer) Observer {
	var out multiObserver
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

// MachineError reports why one machine could not be solved for one objective.
type MachineError struct {
	MachineID int
	Objective Objective
	Err       error
}

// Error implements error.
func (e *MachineError) Error() string {
	return fmt.Sprintf("machine %d (%s): %v", e.MachineID, e.Objective, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *MachineError) Unwrap() error { return e.Err }

// Outcome classifies err into a short stable label: "solved" for nil,
// otherwise one of "invalid", "no_solution", "too_many_free_vars",
// "infeasible", "timeout", "backend_error" (including a refuted
// certificate), "panic", "canceled" or "error".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "solved"
	case errors.Is(err, ErrNilMachine),
		errors.Is(err, machine.ErrDimensionMismatch),
		errors.Is(err, machine.ErrNegativeCount),
		errors.Is(err, gf2.ErrDimensionMismatch),
		errors.Is(err, certify.ErrDimensionMismatch),
		errors.Is(err, counter.ErrDimensionMismatch),
		errors.Is(err, counter.ErrNegativeCount):
		return "invalid"
	case errors.Is(err, gf2.ErrNoSolution):
		return "no_solution"
	case errors.Is(err, gf2.ErrTooManyFreeVars):
		return "too_many_free_vars"
	case errors.Is(err, counter.ErrInfeasible):
		return "infeasible"
	case errors.Is(err, counter.ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrSolverPanic):
		return "panic"
	case errors.Is(err, counter.ErrBackendResult),
		errors.Is(err, certify.ErrUnreachable),
		errors.Is(err, certify.ErrNotMinimal):
		return "backend_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// Aggregate is the batch result for one objective.
type Aggregate struct {
	Objective Objective
	// Total is the sum of per-machine minima over solved machines.
	Total int
	// Solved counts machines included in Total.
	Solved int
	// Presses holds each machine's minimum in input order, -1 where the
	// machine failed or was never reached.
	Presses []int
	// Failures lists excluded machines in input order.
	Failures []*MachineError
}

// Complete reports whether every machine contributed to Total.
func (a Aggregate) Complete() bool { return a.Solved == len(a.Presses) }

// Report carries both objectives' aggregates.
type Report struct {
	Lights   Aggregate
	Counters Aggregate
}
