// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/db47h/logsim"
	"github.com/db47h/logsim/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather returns the value of counters and histogram sample counts by
// metric name and label value.
func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	m := make(map[string]float64)
	for _, mf := range mfs {
		for _, mt := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range mt.GetLabel() {
				key += "/" + lp.GetValue()
			}
			if c := mt.GetCounter(); c != nil {
				m[key] = c.GetValue()
			}
			if h := mt.GetHistogram(); h != nil {
				m[key] = float64(h.GetSampleCount())
			}
		}
	}
	return m
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	var buf bytes.Buffer
	l := logsim.NewLibrary(
		logsim.WithMetrics(logsim.NewMetrics(reg)),
		logsim.WithLogger(logging.NewWriter(&buf, slog.LevelDebug)))

	s := l.NewScene()
	a := s.AddDevice(logsim.SceneInput("a"))
	n := s.AddDevice(logsim.Gate(logsim.Not, 1))
	o := s.AddDevice(logsim.SceneOutput("out"))
	link(t, s, logsim.OutPin(a, 0), logsim.InPin(n, 0))
	link(t, s, logsim.OutPin(n, 0), logsim.InPin(o, 0))
	for i := 0; i < 3; i++ {
		_, err := s.Evaluate()
		check(t, err)
	}
	_, err := l.Promote(s, "Inv")
	check(t, err)
	_, err = l.Promote(s, "InvGraph", logsim.WithMaxCompileInputs(0))
	check(t, err)

	m := gather(t, reg)
	assert.Equal(t, 3.0, m["logsim_evaluations_total"])
	// frozen copies share the plan of s
	assert.Equal(t, 1.0, m["logsim_plan_builds_total"])
	assert.Equal(t, 1.0, m["logsim_promotions_total/direct"])
	assert.Equal(t, 1.0, m["logsim_promotions_total/graph"])
	assert.Equal(t, 1.0, m["logsim_compile_duration_seconds"])

	log := buf.String()
	assert.Contains(t, log, "scene promoted")
	assert.Contains(t, log, "preset=InvGraph")
	assert.Contains(t, log, "evaluation plan rebuilt")
}

func TestMetrics_nil(t *testing.T) {
	// no registry, no metrics: both must be usable
	m := logsim.NewMetrics(nil)
	s, _, _ := gateScene(t, logsim.And, "a", "b")
	_, err := logsim.Promote(s, "And", logsim.WithMetrics(m))
	check(t, err)
	_, err = logsim.Promote(s, "And", logsim.WithMetrics(nil), logsim.WithLogger(nil))
	check(t, err)
}
