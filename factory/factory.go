// SPDX-License-Identifier: MIT

package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jfkriz/togglesolve/certify"
	"github.com/jfkriz/togglesolve/counter"
	"github.com/jfkriz/togglesolve/gf2"
	"github.com/jfkriz/togglesolve/machine"
)

// Orchestrator solves batches of machines. It is safe for concurrent use
// when its Observer and counter backend are.
type Orchestrator struct {
	opts Options
}

// New returns an Orchestrator configured by opts.
func New(opts ...Option) *Orchestrator {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.LightsOptions = append([]gf2.Option{gf2.WithLogger(o.Logger)}, o.LightsOptions...)
	if o.Counters == nil {
		o.Counters = counter.NewSolver(counter.WithLogger(o.Logger))
	}

	return &Orchestrator{opts: o}
}

// Run computes both aggregates over one shared worker pool.
//
// Errors: with WithAbortOnError, the first *MachineError; otherwise only
// the caller's context error, alongside the partial Report.
func (o *Orchestrator) Run(ctx context.Context, machines []*machine.Machine) (Report, error) {
	aggs, err := o.run(ctx, machines, Lights, Counters)

	return Report{Lights: aggs[0], Counters: aggs[1]}, err
}

// SolveLights sums the minimum toggle presses over machines.
func (o *Orchestrator) SolveLights(ctx context.Context, machines []*machine.Machine) (Aggregate, error) {
	aggs, err := o.run(ctx, machines, Lights)

	return aggs[0], err
}

// SolveCounters sums the minimum increment presses over machines.
func (o *Orchestrator) SolveCounters(ctx context.Context, machines []*machine.Machine) (Aggregate, error) {
	aggs, err := o.run(ctx, machines, Counters)

	return aggs[0], err
}

// slot is the result of one (objective, machine) task; each task owns its slot.
type slot struct {
	value  int
	err    *MachineError
	solved bool
}

func (o *Orchestrator) run(ctx context.Context, machines []*machine.Machine, objectives ...Objective) ([]Aggregate, error) {
	var (
		n     = len(machines)
		slots = make([][]slot, len(objectives))
		start = time.Now()
	)
	for k := range slots {
		slots[k] = make([]slot, n)
	}

	// Stage 1: fan out (objective, machine) tasks on a bounded pool.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
launch:
	for i := 0; i < n; i++ {
		for k, obj := range objectives {
			if o.opts.AbortOnError && gctx.Err() != nil {
				break launch
			}
			g.Go(func() error {
				s := &slots[k][i]
				s.value, s.err = o.solveOne(gctx, i, n, machines[i], obj)
				s.solved = s.err == nil
				if s.err != nil && o.opts.AbortOnError {
					return s.err
				}

				return nil
			})
		}
	}
	werr := g.Wait()

	// Stage 2: deterministic reduction in input order.
	aggs := make([]Aggregate, len(objectives))
	for k, obj := range objectives {
		a := Aggregate{Objective: obj, Presses: make([]int, n)}
		for i, s := range slots[k] {
			switch {
			case s.solved:
				a.Total += s.value
				a.Solved++
				a.Presses[i] = s.value
			case s.err != nil:
				a.Presses[i] = -1
				a.Failures = append(a.Failures, s.err)
			default:
				a.Presses[i] = -1
			}
		}
		aggs[k] = a
		o.opts.Logger.Debug("factory: objective done",
			slog.String("objective", obj.String()),
			slog.Int("machines", n),
			slog.Int("solved", a.Solved),
			slog.Int("total", a.Total),
			slog.Duration("elapsed", time.Since(start)))
	}

	if werr != nil {
		return aggs, werr
	}
	if err := ctx.Err(); err != nil {
		return aggs, fmt.Errorf("factory: %w", err)
	}

	return aggs, nil
}

// solveOne runs one objective on one machine and reports its Events.
func (o *Orchestrator) solveOne(ctx context.Context, idx, total int, m *machine.Machine, obj Objective) (int, *MachineError) {
	var (
		id    = idx + 1
		start = time.Now()
		value int
		err   error
	)
	if m != nil {
		id = m.ID
	}
	emit := func(st Stage) {
		if o.opts.Observer == nil {
			return
		}
		ev := Event{MachineID: id, Index: idx, Total: total, Objective: obj, Stage: st}
		switch st {
		case StageSolved:
			ev.Value, ev.Elapsed = value, time.Since(start)
		case StageFailed:
			ev.Err, ev.Elapsed = err, time.Since(start)
		}
		o.opts.Observer.Observe(ev)
	}

	emit(StageParsed)
	switch {
	case m == nil:
		err = ErrNilMachine
	case ctx.Err() != nil:
		err = ctx.Err()
	default:
		if err = m.Validate(); err == nil {
			value, err = o.solve(ctx, m, obj, emit)
		}
	}
	if err == nil {
		emit(StageSolved)

		return value, nil
	}

	emit(StageFailed)
	merr := &MachineError{MachineID: id, Objective: obj, Err: err}
	if !errors.Is(err, context.Canceled) {
		o.opts.Logger.Warn("factory: machine excluded",
			slog.Int("machine", id),
			slog.String("objective", obj.String()),
			slog.String("reason", Outcome(err)),
			slog.Any("error", err))
	}

	return 0, merr
}

// recoverSolve runs solve and turns a panic into ErrSolverPanic.
func (o *Orchestrator) recoverSolve(ctx context.Context, m *machine.Machine, obj Objective, emit func(Stage)) (value int, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = 0, fmt.Errorf("%w: %v", ErrSolverPanic, r)
		}
	}()

	return o.solve(ctx, m, obj, emit)
}

func (o *Orchestrator) solve(ctx context.Context, m *machine.Machine, obj Objective, emit func(Stage)) (int, error) {
	switch obj {
	case Lights:
		opts := append(o.opts.LightsOptions[:len(o.opts.LightsOptions):len(o.opts.LightsOptions)],
			gf2.WithPhaseHook(func(p gf2.Phase) { emit(lightsStage(p)) }))
		sol, err := gf2.SolveContext(ctx, m.Lights, m.Buttons, opts...)
		if err != nil {
			return 0, err
		}
		if o.opts.Certify {
			if err = certify.Lights(ctx, m.Lights, m.Buttons, sol.Weight); err != nil {
				return 0, err
			}
			emit(StageCertified)
		}

		return sol.Weight, nil
	case Counters:
		sol, err := o.opts.Counters.Solve(ctx, m.Counts, m.Buttons,
			counter.WithPhaseHook(func(p counter.Phase) { emit(countersStage(p)) }))
		if err != nil {
			return 0, err
		}

		return sol.Total, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownObjective, int(obj))
	}
}
