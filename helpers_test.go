// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim_test

import (
	"testing"

	"github.com/db47h/logsim"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
}

func link(t *testing.T, s *logsim.Scene, src, dst logsim.PinRef) logsim.LinkID {
	t.Helper()
	id, err := s.AddLink(src, dst)
	require.NoError(t, err)
	return id
}

// gateScene builds a scene with named inputs feeding gate op and a single
// output named "out".
func gateScene(t *testing.T, op logsim.GateOp, inputs ...string) (s *logsim.Scene, in []logsim.DeviceID, out logsim.DeviceID) {
	t.Helper()
	s = logsim.NewScene()
	g := s.AddDevice(logsim.Gate(op, len(inputs)))
	for i, n := range inputs {
		id := s.AddDevice(logsim.SceneInput(n))
		link(t, s, logsim.OutPin(id, 0), logsim.InPin(g, i))
		in = append(in, id)
	}
	out = s.AddDevice(logsim.SceneOutput("out"))
	link(t, s, logsim.OutPin(g, 0), logsim.InPin(out, 0))
	return s, in, out
}

func setInputs(t *testing.T, s *logsim.Scene, ids []logsim.DeviceID, v uint64) {
	t.Helper()
	for i, id := range ids {
		require.NoError(t, s.SetInput(id, logsim.Signal(v>>uint(i))&1))
	}
}

func output(t *testing.T, s *logsim.Scene, id logsim.DeviceID) logsim.Signal {
	t.Helper()
	v, err := s.Output(id)
	require.NoError(t, err)
	return v
}

// halfAdder returns a library holding a HalfAdder preset.
func halfAdder(t *testing.T, opts ...logsim.Option) (*logsim.Library, *logsim.Preset) {
	t.Helper()
	l := logsim.NewLibrary(opts...)
	ps, err := l.LoadHDLString("ha.hdl", `
chip HalfAdder {
	in a, b;
	out s, c;
	x: XOR;
	n: AND;
	a -> x.0, n.0;
	b -> x.1, n.1;
	x -> s;
	n -> c;
}`)
	check(t, err)
	return l, ps[0]
}
