// SPDX-License-Identifier: MIT

package factory

import (
	"log/slog"
	"runtime"

	"github.com/jfkriz/togglesolve/counter"
	"github.com/jfkriz/togglesolve/gf2"
)

// Options configures an Orchestrator.
type Options struct {
	Workers       int
	AbortOnError  bool
	Logger        *slog.Logger
	Observer      Observer
	LightsOptions []gf2.Option
	Certify       bool
	Counters      *counter.Solver
}

// Option represents a functional option for configuring an Orchestrator.
type Option func(*Options)

// DefaultOptions returns runtime.NumCPU workers, continue-on-failure, a
// discarding logger, no observer, default gf2 options and a counter.Solver
// built on first use of New.
func DefaultOptions() Options {
	return Options{
		Workers: runtime.NumCPU(),
		Logger:  slog.New(slog.DiscardHandler),
	}
}

// WithWorkers bounds the number of machines solved concurrently.
// Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(ErrBadWorkers.Error())
	}

	return func(o *Options) { o.Workers = n }
}

// WithAbortOnError makes the first failure cancel the batch.
func WithAbortOnError() Option {
	return func(o *Options) { o.AbortOnError = true }
}

// WithLogger sets the logger for exclusion warnings and batch summaries.
// It is also handed to the solvers unless they were configured with their
// own. A nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithObserver registers observers for progress Events; repeated calls
// accumulate.
func WithObserver(observers ...Observer) Option {
	return func(o *Options) {
		o.Observer = MultiObserver(append([]Observer{o.Observer}, observers...)...)
	}
}

// WithLightsOptions appends options passed to every gf2 solve.
func WithLightsOptions(opts ...gf2.Option) Option {
	return func(o *Options) { o.LightsOptions = append(o.LightsOptions, opts...) }
}

// WithLightsCertification re-proves every lights minimum with an
// independent SAT encoding (package certify) before accepting it.
func WithLightsCertification() Option {
	return func(o *Options) { o.Certify = true }
}

// WithCounterSolver sets the integer solver. A nil solver keeps the default.
func WithCounterSolver(s *counter.Solver) Option {
	return func(o *Options) {
		if s != nil {
			o.Counters = s
		}
	}
}
