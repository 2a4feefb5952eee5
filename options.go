// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"io"
	"log/slog"
	"runtime"
)

// Compiler input limits. Presets with more boundary inputs than the
// configured limit keep the Graph strategy.
//
const (
	DefaultMaxCompileInputs = 16
	HardMaxCompileInputs    = 24
)

// MaxCompileOutputs is the maximum boundary output count of a compiled
// preset: truth table rows are 64 bit wide.
//
const MaxCompileOutputs = 64

type config struct {
	log       *slog.Logger
	metrics   *Metrics
	maxInputs int
	workers   int
}

// Option configures a Scene, a Library or a call to Promote.
//
type Option func(*config)

// WithLogger sets the logger. The default logger discards everything.
//
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics sets the collectors updated by evaluations and promotions.
//
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithMaxCompileInputs sets the maximum boundary input count of presets
// compiled to a truth table. n is clamped to [0, HardMaxCompileInputs]; 0
// disables compilation.
//
func WithMaxCompileInputs(n int) Option {
	return func(c *config) {
		c.maxInputs = min(max(n, 0), HardMaxCompileInputs)
	}
}

// WithWorkers sets the number of goroutines used to compute truth tables.
// n <= 0 selects runtime.GOMAXPROCS(-1).
//
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

var nopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newConfig(opts []Option) *config {
	c := &config{
		log:       nopLogger,
		maxInputs: DefaultMaxCompileInputs,
	}
	for _, o := range opts {
		o(c)
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(-1)
	}
	return c
}

// with returns a copy of c with opts applied.
func (c *config) with(opts []Option) *config {
	if len(opts) == 0 {
		return c
	}
	n := *c
	for _, o := range opts {
		o(&n)
	}
	if n.workers <= 0 {
		n.workers = runtime.GOMAXPROCS(-1)
	}
	return &n
}
