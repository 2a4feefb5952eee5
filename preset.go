// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Strategy is the evaluation strategy of a Preset.
//
type Strategy uint8

// Evaluation strategies.
//
const (
	// Graph presets are evaluated device by device in level order.
	Graph Strategy = iota
	// Direct presets are evaluated with a single truth table lookup.
	Direct
)

func (s Strategy) String() string {
	if s == Direct {
		return "direct"
	}
	return "graph"
}

// MarshalText implements encoding.TextMarshaler.
//
func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
//
func (s *Strategy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "graph":
		*s = Graph
	case "direct":
		*s = Direct
	default:
		return errors.Errorf("invalid strategy %q", text)
	}
	return nil
}

// A TruthTable maps every input vector of a combinational circuit to its
// output vector. Input i of the circuit is bit i of the row index and output
// j is bit j of the row value.
//
type TruthTable struct {
	Inputs  int
	Outputs int
	Rows    []uint64
}

// Lookup returns the output vector for input vector in.
//
func (t *TruthTable) Lookup(in uint64) uint64 {
	return t.Rows[in&(uint64(len(t.Rows))-1)]
}

// A Preset is an immutable circuit built from a validated Scene. Presets are
// instantiated in scenes with Chip.
//
// Presets are safe for concurrent use.
//
type Preset struct {
	name     string
	inputs   []string
	outputs  []string
	scene    *Scene // frozen
	table    *TruthTable
	stateful bool
	deps     []*Preset // presets used by p, directly or through nested chips
	refs     atomic.Int32
	revoked  atomic.Bool
}

// Name returns the preset name.
//
func (p *Preset) Name() string { return p.name }

// Inputs returns the names of the preset inputs in pin order.
//
func (p *Preset) Inputs() []string { return append([]string(nil), p.inputs...) }

// Outputs returns the names of the preset outputs in pin order.
//
func (p *Preset) Outputs() []string { return append([]string(nil), p.outputs...) }

// Strategy returns the preset evaluation strategy.
//
func (p *Preset) Strategy() Strategy {
	if p.table != nil {
		return Direct
	}
	return Graph
}

// Table returns a copy of the truth table of a Direct preset, or nil.
//
func (p *Preset) Table() *TruthTable {
	if p.table == nil {
		return nil
	}
	t := *p.table
	t.Rows = append([]uint64(nil), p.table.Rows...)
	return &t
}

// Stateful returns true if the preset contains stateful devices.
//
func (p *Preset) Stateful() bool { return p.stateful }

// Refs returns the number of chips and presets referencing p.
//
func (p *Preset) Refs() int { return int(p.refs.Load()) }

// Revoked returns true if p was removed from its library. Chips of a revoked
// preset drive Low.
//
func (p *Preset) Revoked() bool { return p.revoked.Load() }

// Scene returns an editable copy of the scene p was built from.
//
func (p *Preset) Scene() *Scene { return p.scene.clone(true) }

func (p *Preset) retain()  { p.refs.Add(1) }
func (p *Preset) release() { p.refs.Add(-1) }

// broken returns true if p or any preset it depends on was revoked.
func (p *Preset) broken() bool {
	if p.revoked.Load() {
		return true
	}
	for _, dp := range p.deps {
		if dp.revoked.Load() {
			return true
		}
	}
	return false
}

// Eval computes the outputs of p for the given inputs, starting from the
// device states p was built with. It fails with ErrPresetDeleted if p or any
// preset it is built from was revoked.
//
func (p *Preset) Eval(in []Signal) ([]Signal, error) {
	if p.broken() {
		return nil, errors.Wrapf(ErrPresetDeleted, "preset %s", p.name)
	}
	if len(in) != len(p.inputs) {
		return nil, errors.Errorf("preset %s: got %d inputs, want %d", p.name, len(in), len(p.inputs))
	}
	out := make([]Signal, len(p.outputs))
	if p.table != nil {
		unpack(p.table.Rows[pack(in)], out)
		return out, nil
	}
	s := p.scene.clone(false)
	s.setBoundary(in)
	err := s.Propagate()
	s.readBoundary(out)
	if err != nil && !errors.Is(err, ErrPresetDeleted) {
		return nil, internalf(err, "preset %s", p.name)
	}
	return out, err
}

// Promote validates s and freezes a copy of it into a new Preset. s is left
// unchanged and remains editable.
//
// Scenes without stateful devices and with few enough inputs (see
// WithMaxCompileInputs) and at most MaxCompileOutputs outputs are compiled to
// a truth table and get the Direct strategy. Other presets use the Graph
// strategy.
//
// If s contains a cycle, the returned error wraps a *CycleError.
//
func Promote(s *Scene, name string, opts ...Option) (*Preset, error) {
	cfg := s.cfg.with(opts)
	if name == "" {
		return nil, errors.New("promote: empty preset name")
	}
	if err := Validate(s); err != nil {
		return nil, errors.Wrapf(err, "promote %s", name)
	}
	for _, id := range s.Devices() {
		if d := s.devices[id]; d.kind == KindChip && d.preset.broken() {
			return nil, errors.Wrapf(ErrPresetDeleted, "promote %s: chip %v (%s)", name, id, d.preset.name)
		}
	}

	p, pl, err := freeze(s, name, cfg)
	if err != nil {
		return nil, err
	}
	frozen := p.scene

	switch {
	case p.stateful:
		cfg.log.Debug("preset not compiled: stateful", "preset", name)
	case cfg.maxInputs == 0:
		cfg.log.Debug("preset not compiled: compilation disabled", "preset", name)
	case len(p.inputs) > cfg.maxInputs:
		cfg.log.Debug("preset not compiled: too many inputs", "preset", name, "inputs", len(p.inputs), "max", cfg.maxInputs)
	case len(p.outputs) > MaxCompileOutputs:
		cfg.log.Debug("preset not compiled: too many outputs", "preset", name, "outputs", len(p.outputs))
	default:
		start := time.Now()
		t, err := compile(frozen, cfg.workers)
		if err != nil {
			frozen.Dispose()
			return nil, errors.Wrapf(err, "promote %s", name)
		}
		p.table = t
		cfg.metrics.compiled(time.Since(start))
		cfg.log.Debug("preset compiled", "preset", name, "rows", len(t.Rows), "elapsed", time.Since(start))
	}

	cfg.metrics.promoted(p.Strategy())
	cfg.log.Info("scene promoted", "preset", name, "strategy", p.Strategy().String(),
		"inputs", len(p.inputs), "outputs", len(p.outputs), "devices", frozen.Len(), "levels", len(pl.levels))
	return p, nil
}

// compile computes the truth table of the combinational scene s. The input
// space is split evenly between workers, each running its own copy of s.
func compile(s *Scene, workers int) (*TruthTable, error) {
	k := len(s.inputs)
	n := 1 << uint(k)
	t := &TruthTable{Inputs: k, Outputs: len(s.outputs), Rows: make([]uint64, n)}

	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	size := n / workers
	if size*workers < n {
		size++
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		lo := w * size
		hi := min(lo+size, n)
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			sc := s.clone(false)
			in := make([]Signal, k)
			out := make([]Signal, len(s.outputs))
			for v := lo; v < hi; v++ {
				unpack(uint64(v), in)
				sc.setBoundary(in)
				if err := sc.Propagate(); err != nil {
					errs[w] = err
					return
				}
				sc.readBoundary(out)
				t.Rows[v] = pack(out)
			}
		}(w, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, internalf(err, "truth table computation failed")
		}
	}
	return t, nil
}

// freeze copies s into a new Graph preset.
func freeze(s *Scene, name string, cfg *config) (*Preset, *plan, error) {
	frozen := s.clone(true)
	frozen.cfg = cfg
	pl, err := frozen.getPlan()
	if err != nil {
		frozen.Dispose()
		return nil, nil, internalf(err, "preset %s: validated scene has no plan", name)
	}
	p := &Preset{
		name:    name,
		inputs:  make([]string, len(frozen.inputs)),
		outputs: make([]string, len(frozen.outputs)),
		scene:   frozen,
	}
	for i, id := range frozen.inputs {
		p.inputs[i] = frozen.devices[id].name
	}
	for i, id := range frozen.outputs {
		p.outputs[i] = frozen.devices[id].name
	}
	seen := make(map[*Preset]bool)
	for _, id := range frozen.Devices() {
		d := frozen.devices[id]
		if d.stateful() {
			p.stateful = true
		}
		if d.kind != KindChip {
			continue
		}
		for _, dp := range append([]*Preset{d.preset}, d.preset.deps...) {
			if !seen[dp] {
				seen[dp] = true
				p.deps = append(p.deps, dp)
			}
		}
	}
	return p, pl, nil
}

// newDirectPreset builds a Direct preset from a known truth table, with s as
// its reference circuit. The table must match the boundary of s and is not
// recomputed.
func newDirectPreset(s *Scene, name string, t *TruthTable, cfg *config) (*Preset, error) {
	if err := Validate(s); err != nil {
		return nil, errors.Wrapf(err, "preset %s", name)
	}
	if t.Inputs != len(s.inputs) || t.Outputs != len(s.outputs) || len(t.Rows) != 1<<uint(t.Inputs) {
		return nil, errors.Errorf("preset %s: %dx%d table with %d rows does not match a %d input, %d output scene",
			name, t.Inputs, t.Outputs, len(t.Rows), len(s.inputs), len(s.outputs))
	}
	if t.Inputs > HardMaxCompileInputs || t.Outputs > MaxCompileOutputs {
		return nil, errors.Errorf("preset %s: truth table too large", name)
	}
	p, _, err := freeze(s, name, cfg)
	if err != nil {
		return nil, err
	}
	if p.stateful {
		p.scene.Dispose()
		return nil, errors.Errorf("preset %s: stateful scene cannot have a truth table", name)
	}
	p.table = t
	return p, nil
}
