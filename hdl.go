// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/db47h/logsim/internal/hdl"
	"github.com/pkg/errors"
)

var hdlParser = sync.OnceValues(hdl.NewParser)

// LoadHDL parses chip definitions from r and promotes each chip, in source
// order, into a preset registered in l. Chips may instantiate presets already
// in l, including chips defined earlier in the same source. filename is only
// used in error messages.
//
// On error, chips defined before the failing one stay registered.
//
func (l *Library) LoadHDL(filename string, r io.Reader) ([]*Preset, error) {
	p, err := hdlParser()
	if err != nil {
		return nil, err
	}
	f, err := p.Parse(filename, r)
	if err != nil {
		return nil, err
	}
	return l.loadHDL(f)
}

// LoadHDLString is like LoadHDL but reads chip definitions from src.
//
func (l *Library) LoadHDLString(filename, src string) ([]*Preset, error) {
	return l.LoadHDL(filename, strings.NewReader(src))
}

func (l *Library) loadHDL(f *hdl.File) ([]*Preset, error) {
	var ps []*Preset
	for _, c := range f.Chips {
		s, err := l.buildChip(c)
		if err != nil {
			return ps, err
		}
		p, err := l.Promote(s, c.Name)
		s.Dispose()
		if err != nil {
			return ps, posError(c.Pos, err)
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func posError(pos lexer.Position, err error) error {
	return errors.Wrap(err, pos.String())
}

// chipBuilder resolves names in a chip definition to devices of the scene
// under construction.
type chipBuilder struct {
	s       *Scene
	inputs  map[string][]DeviceID
	outputs map[string][]DeviceID
	widths  map[string]int
	parts   map[string]DeviceID
}

func (l *Library) buildChip(c *hdl.Chip) (*Scene, error) {
	b := &chipBuilder{
		s:       l.NewScene(),
		inputs:  make(map[string][]DeviceID),
		outputs: make(map[string][]DeviceID),
		widths:  make(map[string]int),
		parts:   make(map[string]DeviceID),
	}
	err := b.declare(l, c)
	if err == nil {
		err = b.wire(c)
	}
	if err != nil {
		b.s.Dispose()
		return nil, err
	}
	return b.s, nil
}

func (b *chipBuilder) defined(name string) bool {
	_, in := b.inputs[name]
	_, out := b.outputs[name]
	_, part := b.parts[name]
	return in || out || part
}

func (b *chipBuilder) declare(l *Library, c *hdl.Chip) error {
	for _, st := range c.Stmts {
		switch {
		case st.In != nil:
			if err := b.ports(st.In, b.inputs, SceneInput); err != nil {
				return err
			}
		case st.Out != nil:
			if err := b.ports(st.Out, b.outputs, SceneOutput); err != nil {
				return err
			}
		case st.Part != nil:
			pt := st.Part
			if b.defined(pt.Name) {
				return posError(pt.Pos, errors.Errorf("%s redeclared", pt.Name))
			}
			spec, err := partSpec(l, pt)
			if err != nil {
				return posError(pt.Pos, err)
			}
			b.parts[pt.Name] = b.s.AddDevice(spec)
		}
	}
	return nil
}

func (b *chipBuilder) ports(ports []*hdl.Port, m map[string][]DeviceID, spec func(string) DeviceSpec) error {
	for _, pt := range ports {
		if b.defined(pt.Name) {
			return posError(pt.Pos, errors.Errorf("%s redeclared", pt.Name))
		}
		if pt.Width == 0 {
			m[pt.Name] = []DeviceID{b.s.AddDevice(spec(pt.Name))}
			continue
		}
		ids := make([]DeviceID, pt.Width)
		for i := range ids {
			ids[i] = b.s.AddDevice(spec(busPinName(pt.Name, i)))
		}
		m[pt.Name] = ids
		b.widths[pt.Name] = pt.Width
	}
	return nil
}

func busPinName(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

// partSpec resolves a part kind: primitive gates, other built-in devices,
// then presets in l.
func partSpec(l *Library, pt *hdl.Part) (DeviceSpec, error) {
	arg := func(def int) int {
		if pt.Arg == nil {
			return def
		}
		return *pt.Arg
	}
	noArg := func(spec DeviceSpec) (DeviceSpec, error) {
		if pt.Arg != nil {
			return DeviceSpec{}, errors.Errorf("%s takes no argument", pt.Kind)
		}
		return spec, nil
	}
	if op, ok := ParseGateOp(pt.Kind); ok {
		if op.Unary() {
			return noArg(Gate(op, 1))
		}
		n := arg(2)
		if n < 2 || n > MaxGateInputs {
			return DeviceSpec{}, errors.Errorf("%v gate arity %d out of range [2, %d]", op, n, MaxGateInputs)
		}
		return Gate(op, n), nil
	}
	switch strings.ToLower(pt.Kind) {
	case "const":
		v := arg(0)
		if v != 0 && v != 1 {
			return DeviceSpec{}, errors.Errorf("invalid constant %d", v)
		}
		return Const(Signal(v)), nil
	case "clock":
		n := arg(1)
		if n < 1 {
			return DeviceSpec{}, errors.Errorf("invalid clock period %d", n)
		}
		return Clock(n), nil
	case "switch":
		return noArg(Switch(pt.Name))
	case "dff":
		return noArg(DFF())
	case "light":
		return noArg(Light(pt.Name))
	}
	p, err := l.Get(pt.Kind)
	if err != nil {
		return DeviceSpec{}, err
	}
	return noArg(Chip(p))
}

func (b *chipBuilder) wire(c *hdl.Chip) error {
	for _, st := range c.Stmts {
		if st.Wire == nil {
			continue
		}
		src, err := b.pin(st.Wire.Src, Out)
		if err != nil {
			return posError(st.Wire.Src.Pos, err)
		}
		for _, r := range st.Wire.Dst {
			dst, err := b.pin(r, In)
			if err != nil {
				return posError(r.Pos, err)
			}
			if _, err = b.s.AddLink(src, dst); err != nil {
				return posError(r.Pos, err)
			}
		}
	}
	return nil
}

// pin resolves r to a pin that drives (dir == Out) or is driven by
// (dir == In) a link.
func (b *chipBuilder) pin(r *hdl.Ref, dir Direction) (PinRef, error) {
	if id, ok := b.parts[r.Name]; ok {
		if r.Bit != nil {
			return PinRef{}, errors.Errorf("part %s is not a bus", r.Name)
		}
		i := 0
		if r.Pin != nil {
			i = *r.Pin
		}
		return PinRef{id, i, dir}, nil
	}

	m, other := b.inputs, "input"
	if dir == In {
		m, other = b.outputs, "output"
	}
	ids, ok := m[r.Name]
	if !ok {
		if b.defined(r.Name) {
			return PinRef{}, errors.Errorf("%s cannot be used here", r.Name)
		}
		return PinRef{}, errors.Wrapf(ErrUnknownDevice, "%s", r.Name)
	}
	if r.Pin != nil {
		return PinRef{}, errors.Errorf("%s %s has no pin %d", other, r.Name, *r.Pin)
	}
	w := b.widths[r.Name]
	switch {
	case w == 0 && r.Bit != nil:
		return PinRef{}, errors.Errorf("%s %s is not a bus", other, r.Name)
	case w > 0 && r.Bit == nil:
		return PinRef{}, errors.Errorf("%s bus %s needs a bit index", other, r.Name)
	case w > 0 && *r.Bit >= w:
		return PinRef{}, errors.Wrapf(ErrUnknownPin, "%s[%d]", r.Name, *r.Bit)
	}
	id := ids[0]
	if r.Bit != nil {
		id = ids[*r.Bit]
	}
	if dir == In {
		return InPin(id, 0), nil
	}
	return OutPin(id, 0), nil
}
