// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim_test

import (
	"testing"

	"github.com/db47h/logsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScene_AddDevice(t *testing.T) {
	s := logsim.NewScene()
	a := s.AddDevice(logsim.SceneInput("a"))
	g := s.AddDevice(logsim.Gate(logsim.And, 3))
	o := s.AddDevice(logsim.SceneOutput("out"))
	assert.Equal(t, []logsim.DeviceID{a, g, o}, s.Devices())
	assert.Equal(t, 3, s.Len())

	// IDs are never reused
	require.NoError(t, s.RemoveDevice(o))
	o2 := s.AddDevice(logsim.SceneOutput("out"))
	assert.Greater(t, o2, o)

	info, err := s.Device(g)
	require.NoError(t, err)
	assert.Equal(t, logsim.DeviceInfo{ID: g, Kind: logsim.KindGate, Op: logsim.And, Inputs: 3, Outputs: 1}, info)

	_, err = s.Device(42)
	assert.ErrorIs(t, err, logsim.ErrUnknownDevice)
	assert.ErrorIs(t, s.RemoveDevice(42), logsim.ErrUnknownDevice)
}

func TestScene_RemoveDevice(t *testing.T) {
	s, in, out := gateScene(t, logsim.And, "a", "b")
	g := s.Devices()[0]
	require.Equal(t, 3, s.LinkCount())

	require.NoError(t, s.RemoveDevice(g))
	assert.Equal(t, 0, s.LinkCount())
	_, ok := s.Driver(logsim.InPin(out, 0))
	assert.False(t, ok)
	assert.Equal(t, in, s.Inputs())

	require.NoError(t, s.RemoveDevice(in[0]))
	assert.Equal(t, in[1:], s.Inputs())
	assert.Equal(t, []logsim.DeviceID{out}, s.Outputs())

	// unconnected output reads Low
	check(t, s.Propagate())
	assert.Equal(t, logsim.Low, output(t, s, out))
}

func TestScene_AddLink(t *testing.T) {
	s := logsim.NewScene()
	a := s.AddDevice(logsim.SceneInput("a"))
	b := s.AddDevice(logsim.SceneInput("b"))
	g := s.AddDevice(logsim.Gate(logsim.Or, 2))
	o := s.AddDevice(logsim.SceneOutput("out"))
	l := link(t, s, logsim.OutPin(a, 0), logsim.InPin(g, 0))

	for _, tc := range []struct {
		name     string
		src, dst logsim.PinRef
		err      error
	}{
		{"fan-in", logsim.OutPin(b, 0), logsim.InPin(g, 0), logsim.ErrFanInConflict},
		{"short", logsim.OutPin(a, 0), logsim.InPin(o, 0), logsim.ErrBoundaryShort},
		{"source direction", logsim.InPin(g, 1), logsim.InPin(o, 0), logsim.ErrInvalidPinDirection},
		{"target direction", logsim.OutPin(b, 0), logsim.OutPin(g, 0), logsim.ErrInvalidPinDirection},
		{"source pin", logsim.OutPin(b, 1), logsim.InPin(g, 1), logsim.ErrUnknownPin},
		{"target pin", logsim.OutPin(b, 0), logsim.InPin(g, 2), logsim.ErrUnknownPin},
		{"source device", logsim.OutPin(99, 0), logsim.InPin(g, 1), logsim.ErrUnknownDevice},
		{"target device", logsim.OutPin(b, 0), logsim.InPin(99, 0), logsim.ErrUnknownDevice},
	} {
		_, err := s.AddLink(tc.src, tc.dst)
		assert.ErrorIs(t, err, tc.err, tc.name)
		assert.Equal(t, 1, s.LinkCount(), tc.name)
	}

	// fan-out is fine
	link(t, s, logsim.OutPin(a, 0), logsim.InPin(g, 1))
	got, err := s.Link(l)
	require.NoError(t, err)
	assert.Equal(t, logsim.Link{ID: l, Src: logsim.OutPin(a, 0), Dst: logsim.InPin(g, 0)}, got)
	drv, ok := s.Driver(logsim.InPin(g, 0))
	assert.True(t, ok)
	assert.Equal(t, l, drv)

	require.NoError(t, s.RemoveLink(l))
	assert.ErrorIs(t, s.RemoveLink(l), logsim.ErrUnknownLink)
	_, err = s.Link(l)
	assert.ErrorIs(t, err, logsim.ErrUnknownLink)
	// the pin can be driven again
	link(t, s, logsim.OutPin(b, 0), logsim.InPin(g, 0))
}

func TestScene_terminals(t *testing.T) {
	s := logsim.NewScene()
	a := s.AddDevice(logsim.SceneInput("a"))
	sw := s.AddDevice(logsim.Switch("sw"))
	o := s.AddDevice(logsim.SceneOutput("out"))
	g := s.AddDevice(logsim.Gate(logsim.Not, 1))

	id, ok := s.Lookup("out")
	assert.True(t, ok)
	assert.Equal(t, o, id)
	_, ok = s.Lookup("sw")
	assert.False(t, ok)

	require.NoError(t, s.Rename(a, "x"))
	_, ok = s.Lookup("a")
	assert.False(t, ok)
	id, _ = s.Lookup("x")
	assert.Equal(t, a, id)

	assert.ErrorIs(t, s.Rename(g, "g"), logsim.ErrDeviceKind)
	assert.ErrorIs(t, s.SetInput(sw, logsim.High), logsim.ErrDeviceKind)
	assert.ErrorIs(t, s.SetSwitch(a, logsim.High), logsim.ErrDeviceKind)
	assert.ErrorIs(t, s.Toggle(g), logsim.ErrDeviceKind)
	_, err := s.Output(a)
	assert.ErrorIs(t, err, logsim.ErrDeviceKind)

	_, err = s.Pin(logsim.InPin(g, 1))
	assert.ErrorIs(t, err, logsim.ErrUnknownPin)
}

func TestScene_Clone(t *testing.T) {
	_, ha := halfAdder(t)
	s := logsim.NewScene()
	a := s.AddDevice(logsim.SceneInput("a"))
	c := s.AddDevice(logsim.Chip(ha))
	o := s.AddDevice(logsim.SceneOutput("s"))
	link(t, s, logsim.OutPin(a, 0), logsim.InPin(c, 0))
	link(t, s, logsim.OutPin(c, 0), logsim.InPin(o, 0))
	assert.Equal(t, 1, ha.Refs())

	cl := s.Clone()
	assert.Equal(t, 2, ha.Refs())
	require.NoError(t, cl.SetInput(a, logsim.High))
	check(t, cl.Propagate())
	check(t, s.Propagate())
	assert.Equal(t, logsim.High, output(t, cl, o))
	assert.Equal(t, logsim.Low, output(t, s, o))

	// editing the clone leaves the original alone
	require.NoError(t, cl.RemoveDevice(c))
	assert.Equal(t, 1, ha.Refs())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.LinkCount())

	s.Dispose()
	cl.Dispose()
	assert.Equal(t, 0, ha.Refs())
}

// Removing a device leaves a scene that evaluates like one built without it.
func TestScene_RemoveDevice_fresh(t *testing.T) {
	build := func(withAnd bool) (*logsim.Scene, logsim.DeviceID) {
		s := logsim.NewScene()
		a := s.AddDevice(logsim.SceneInput("a"))
		b := s.AddDevice(logsim.SceneInput("b"))
		var g logsim.DeviceID
		if withAnd {
			g = s.AddDevice(logsim.Gate(logsim.And, 2))
		}
		x := s.AddDevice(logsim.Gate(logsim.Xor, 2))
		o1 := s.AddDevice(logsim.SceneOutput("and"))
		o2 := s.AddDevice(logsim.SceneOutput("xor"))
		if withAnd {
			link(t, s, logsim.OutPin(a, 0), logsim.InPin(g, 0))
			link(t, s, logsim.OutPin(b, 0), logsim.InPin(g, 1))
			link(t, s, logsim.OutPin(g, 0), logsim.InPin(o1, 0))
		}
		link(t, s, logsim.OutPin(a, 0), logsim.InPin(x, 0))
		link(t, s, logsim.OutPin(b, 0), logsim.InPin(x, 1))
		link(t, s, logsim.OutPin(x, 0), logsim.InPin(o2, 0))
		return s, g
	}
	s, g := build(true)
	require.Equal(t, 6, s.LinkCount())
	require.NoError(t, s.RemoveDevice(g))
	assert.Equal(t, 3, s.LinkCount())
	fresh, _ := build(false)

	for v := uint64(0); v < 4; v++ {
		for _, sc := range []*logsim.Scene{s, fresh} {
			setInputs(t, sc, sc.Inputs(), v)
			check(t, sc.Propagate())
		}
		for _, name := range []string{"and", "xor"} {
			id1, _ := s.Lookup(name)
			id2, _ := fresh.Lookup(name)
			assert.Equal(t, output(t, fresh, id2), output(t, s, id1), "%s, input %02b", name, v)
		}
	}
}
