// SPDX-License-Identifier: MIT

// Package metrics exports solve progress as Prometheus metrics by
// implementing factory.Observer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jfkriz/togglesolve/factory"
)

const namespace = "togglesolve"

// Observer counts finished solves and records their durations and press
// totals, labelled by objective. It is safe for concurrent use.
type Observer struct {
	// solves counts finished solves.
	// Labels: objective (lights, counters), outcome (see factory.Outcome)
	solves *prometheus.CounterVec

	// duration measures one machine's solve time.
	// Labels: objective, outcome
	duration *prometheus.HistogramVec

	// presses accumulates the minimum presses of solved machines.
	// Labels: objective
	presses *prometheus.CounterVec

	// stages counts every progress event, including intermediate ones.
	// Labels: objective, stage
	stages *prometheus.CounterVec
}

// NewObserver registers the solve metrics with reg and returns an Observer
// feeding them. Panics if the metrics are already registered with reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	f := promauto.With(reg)

	return &Observer{
		solves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Finished machine solves by objective and outcome",
		}, []string{"objective", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Per-machine solve latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"objective", "outcome"}),
		presses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presses_total",
			Help:      "Sum of minimum button presses over solved machines",
		}, []string{"objective"}),
		stages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_events_total",
			Help:      "Progress events by objective and stage",
		}, []string{"objective", "stage"}),
	}
}

// Observe implements factory.Observer.
func (o *Observer) Observe(e factory.Event) {
	obj := e.Objective.String()
	o.stages.WithLabelValues(obj, e.Stage.String()).Inc()

	switch e.Stage {
	case factory.StageSolved:
		o.record(obj, factory.Outcome(nil), e)
		o.presses.WithLabelValues(obj).Add(float64(e.Value))
	case factory.StageFailed:
		o.record(obj, factory.Outcome(e.Err), e)
	}
}

func (o *Observer) record(obj, outcome string, e factory.Event) {
	o.solves.WithLabelValues(obj, outcome).Inc()
	o.duration.WithLabelValues(obj, outcome).Observe(e.Elapsed.Seconds())
}
