// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors updated by the simulator. A nil
// *Metrics is valid and records nothing.
//
type Metrics struct {
	Evaluations     prometheus.Counter
	PlanBuilds      prometheus.Counter
	Promotions      *prometheus.CounterVec
	CompileDuration prometheus.Histogram
}

// NewMetrics creates the simulator collectors and registers them with reg.
// If reg is nil, the collectors are created but not registered.
//
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logsim",
			Name:      "evaluations_total",
			Help:      "Number of scene evaluation passes.",
		}),
		PlanBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logsim",
			Name:      "plan_builds_total",
			Help:      "Number of evaluation plans rebuilt after a topology change.",
		}),
		Promotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logsim",
			Name:      "promotions_total",
			Help:      "Number of scenes promoted to presets, by strategy.",
		}, []string{"strategy"}),
		CompileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "logsim",
			Name:      "compile_duration_seconds",
			Help:      "Time spent computing preset truth tables.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Evaluations, m.PlanBuilds, m.Promotions, m.CompileDuration)
	}
	return m
}

func (m *Metrics) evaluated() {
	if m != nil {
		m.Evaluations.Inc()
	}
}

func (m *Metrics) planBuilt() {
	if m != nil {
		m.PlanBuilds.Inc()
	}
}

func (m *Metrics) promoted(s Strategy) {
	if m != nil {
		m.Promotions.WithLabelValues(s.String()).Inc()
	}
}

func (m *Metrics) compiled(d time.Duration) {
	if m != nil {
		m.CompileDuration.Observe(d.Seconds())
	}
}
