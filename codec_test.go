// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/logsim"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScene_roundTrip(t *testing.T) {
	l, ha := halfAdder(t)
	s := l.NewScene()
	a := s.AddDevice(logsim.SceneInput("a"))
	b := s.AddDevice(logsim.SceneInput("b"))
	c := s.AddDevice(logsim.Chip(ha))
	clk := s.AddDevice(logsim.Clock(3))
	sw := s.AddDevice(logsim.Switch("sw"))
	ff := s.AddDevice(logsim.DFF())
	k := s.AddDevice(logsim.Const(logsim.High))
	g := s.AddDevice(logsim.Gate(logsim.Nand, 3))
	lt := s.AddDevice(logsim.Light("led"))
	o := s.AddDevice(logsim.SceneOutput("out"))
	link(t, s, logsim.OutPin(a, 0), logsim.InPin(c, 0))
	link(t, s, logsim.OutPin(b, 0), logsim.InPin(c, 1))
	link(t, s, logsim.OutPin(c, 1), logsim.InPin(g, 0))
	link(t, s, logsim.OutPin(clk, 0), logsim.InPin(g, 1))
	link(t, s, logsim.OutPin(k, 0), logsim.InPin(g, 2))
	link(t, s, logsim.OutPin(sw, 0), logsim.InPin(ff, 0))
	link(t, s, logsim.OutPin(ff, 0), logsim.InPin(lt, 0))
	link(t, s, logsim.OutPin(g, 0), logsim.InPin(o, 0))
	require.NoError(t, s.SetSwitch(sw, logsim.High))
	check(t, s.Propagate())
	s.Tick()
	s.Tick()
	// removed IDs are not reused after a round trip
	tmp := s.AddDevice(logsim.Gate(logsim.Not, 1))
	require.NoError(t, s.RemoveDevice(tmp))

	var buf bytes.Buffer
	check(t, logsim.EncodeScene(&buf, s))
	s2, err := logsim.DecodeScene(&buf, l.Get)
	check(t, err)
	if d := cmp.Diff(s.Snapshot(), s2.Snapshot()); d != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", d)
	}
	assert.Equal(t, 2, ha.Refs())
	assert.Greater(t, s2.AddDevice(logsim.DFF()), tmp)

	// restored states evaluate the same
	sig1, err := s.Evaluate()
	check(t, err)
	sig2, err := s2.Evaluate()
	check(t, err)
	assert.Equal(t, sig1.Get(logsim.InPin(lt, 0)), sig2.Get(logsim.InPin(lt, 0)))
	assert.Equal(t, logsim.High, sig2.Get(logsim.InPin(lt, 0)))
	s.Tick()
	s2.Tick()
	sig1, _ = s.Evaluate()
	sig2, _ = s2.Evaluate()
	assert.Equal(t, sig1.Get(logsim.OutPin(clk, 0)), sig2.Get(logsim.OutPin(clk, 0)))
}

func TestDecodeScene_errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{"unknown field", "devices: [{id: 1, kind: dff, color: red}]"},
		{"bad kind", "devices: [{id: 1, kind: capacitor}]"},
		{"missing id", "devices: [{kind: dff}]"},
		{"duplicate id", "devices: [{id: 1, kind: dff}, {id: 1, kind: dff}]"},
		{"bad op", "devices: [{id: 1, kind: gate, op: MAYBE, arity: 2}]"},
		{"bad arity", "devices: [{id: 1, kind: gate, op: AND, arity: 1}]"},
		{"bad period", "devices: [{id: 1, kind: clock}]"},
		{"unknown preset", "devices: [{id: 1, kind: chip, preset: Foo}]"},
		{"fan-in", `
devices: [{id: 1, kind: const}, {id: 2, kind: dff}]
links:
  - {id: 1, src: {device: 1, index: 0, dir: out}, dst: {device: 2, index: 0, dir: in}}
  - {id: 2, src: {device: 1, index: 0, dir: out}, dst: {device: 2, index: 0, dir: in}}
`},
		{"bad boundary", "devices: [{id: 1, kind: input}]\ninputs: [2]"},
	} {
		l := logsim.NewLibrary()
		_, err := logsim.DecodeScene(strings.NewReader(tc.src), l.Get)
		assert.Error(t, err, tc.name)
	}
}

func TestPreset_roundTrip(t *testing.T) {
	for _, limit := range []int{logsim.DefaultMaxCompileInputs, 0} {
		_, ha := halfAdder(t, logsim.WithMaxCompileInputs(limit))
		var buf bytes.Buffer
		check(t, logsim.EncodePreset(&buf, ha))
		p, err := logsim.DecodePreset(&buf, nil)
		check(t, err)
		assert.Equal(t, ha.Strategy(), p.Strategy())
		assert.Equal(t, ha.Table(), p.Table())
		assert.Equal(t, ha.Inputs(), p.Inputs())
		assert.Equal(t, ha.Outputs(), p.Outputs())
		for v := 0; v < 4; v++ {
			in := []logsim.Signal{logsim.Signal(v & 1), logsim.Signal(v >> 1)}
			o1, err := ha.Eval(in)
			check(t, err)
			o2, err := p.Eval(in)
			check(t, err)
			assert.Equal(t, o1, o2)
		}
	}
}

func TestPresetFromData_table(t *testing.T) {
	_, ha := halfAdder(t)
	data := ha.Data()
	require.NotNil(t, data.Table)

	// tables are restored as is
	data.Table.Rows = []uint64{3, 3, 3, 3}
	p, err := logsim.PresetFromData(data, nil)
	check(t, err)
	out, err := p.Eval([]logsim.Signal{logsim.Low, logsim.Low})
	check(t, err)
	assert.Equal(t, []logsim.Signal{logsim.High, logsim.High}, out)

	data.Table.Rows = data.Table.Rows[:3]
	_, err = logsim.PresetFromData(data, nil)
	assert.Error(t, err)

	data = ha.Data()
	data.Table = nil
	_, err = logsim.PresetFromData(data, nil)
	assert.Error(t, err)

	data = ha.Data()
	data.Inputs = []string{"x", "y"}
	_, err = logsim.PresetFromData(data, nil)
	assert.Error(t, err)

	data = ha.Data()
	data.Name = ""
	_, err = logsim.PresetFromData(data, nil)
	assert.Error(t, err)
}

func TestLibrary_roundTrip(t *testing.T) {
	l := logsim.NewLibrary()
	_, err := l.LoadHDLString("lib.hdl", `
chip HalfAdder {
	in a, b;
	out s, c;
	x: XOR;
	n: AND;
	a -> x.0, n.0;
	b -> x.1, n.1;
	x -> s;
	n -> c;
}

chip FullAdder {
	in a, b, cin;
	out s, cout;
	h0: HalfAdder;
	h1: HalfAdder;
	o: OR;
	a -> h0.0;
	b -> h0.1;
	h0.0 -> h1.0;
	cin -> h1.1;
	h1.0 -> s;
	h0.1 -> o.0;
	h1.1 -> o.1;
	o -> cout;
}

chip Tick {
	out q;
	c: clock;
	c -> q;
}
`)
	check(t, err)

	var buf bytes.Buffer
	check(t, logsim.EncodeLibrary(&buf, l))
	l2 := logsim.NewLibrary()
	check(t, logsim.DecodeLibrary(bytes.NewReader(buf.Bytes()), l2))
	assert.Equal(t, l.Names(), l2.Names())
	for _, p := range l.Presets() {
		p2, err := l2.Get(p.Name())
		require.NoError(t, err)
		if d := cmp.Diff(p.Data(), p2.Data()); d != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", p.Name(), d)
		}
	}
	fa, _ := l2.Get("FullAdder")
	out, err := fa.Eval([]logsim.Signal{logsim.High, logsim.High, logsim.High})
	check(t, err)
	assert.Equal(t, []logsim.Signal{logsim.High, logsim.High}, out)

	// dependencies must come first
	data := l.Data()
	data.Presets[0], data.Presets[1] = data.Presets[1], data.Presets[0]
	err = logsim.NewLibrary().Load(data)
	assert.ErrorIs(t, err, logsim.ErrUnknownPreset)

	// loading into a library that already holds the presets
	assert.ErrorIs(t, logsim.DecodeLibrary(bytes.NewReader(buf.Bytes()), l2), logsim.ErrDuplicatePreset)
}
