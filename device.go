// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DeviceID identifies a device within a Scene. IDs are never reused by a
// Scene.
//
type DeviceID uint32

func (id DeviceID) String() string { return "d" + strconv.FormatUint(uint64(id), 10) }

// LinkID identifies a link within a Scene.
//
type LinkID uint32

func (id LinkID) String() string { return "l" + strconv.FormatUint(uint64(id), 10) }

// Direction is the direction of a pin.
//
type Direction uint8

// Pin directions.
//
const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

// MarshalText implements encoding.TextMarshaler.
//
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
//
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in":
		*d = In
	case "out":
		*d = Out
	default:
		return errors.Errorf("invalid pin direction %q", text)
	}
	return nil
}

// PinRef locates a pin in a Scene.
//
type PinRef struct {
	Device DeviceID  `yaml:"device" json:"device"`
	Index  int       `yaml:"index" json:"index"`
	Dir    Direction `yaml:"dir" json:"dir"`
}

// InPin returns a reference to input pin i of device d.
//
func InPin(d DeviceID, i int) PinRef { return PinRef{d, i, In} }

// OutPin returns a reference to output pin i of device d.
//
func OutPin(d DeviceID, i int) PinRef { return PinRef{d, i, Out} }

func (p PinRef) String() string {
	return p.Device.String() + "." + p.Dir.String() + "[" + strconv.Itoa(p.Index) + "]"
}

// Kind is the kind of a device.
//
type Kind uint8

// Device kinds.
//
const (
	// KindGate is a primitive boolean gate (see GateOp).
	KindGate Kind = iota
	// KindChip is an instance of a Preset.
	KindChip
	// KindInput is a scene input terminal. It has a single output pin.
	KindInput
	// KindOutput is a scene output terminal. It has a single input pin.
	KindOutput
	// KindConst drives a fixed signal.
	KindConst
	// KindSwitch drives a user controlled signal.
	KindSwitch
	// KindClock toggles its output every period ticks.
	KindClock
	// KindDFF is a data flip-flop: its output is the value its input had
	// at the last tick.
	KindDFF
	// KindLight is a probe with a single input pin.
	KindLight
)

var kindNames = [...]string{
	KindGate:   "gate",
	KindChip:   "chip",
	KindInput:  "input",
	KindOutput: "output",
	KindConst:  "const",
	KindSwitch: "switch",
	KindClock:  "clock",
	KindDFF:    "dff",
	KindLight:  "light",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
//
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, errors.Errorf("invalid device kind %d", k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
func (k *Kind) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for i, n := range kindNames {
		if n == s {
			*k = Kind(i)
			return nil
		}
	}
	return errors.Errorf("invalid device kind %q", text)
}

// A DeviceSpec describes a device to be added to a Scene. DeviceSpecs are
// created with Gate, Chip, SceneInput, SceneOutput, Const, Switch, Clock, DFF
// or Light.
//
type DeviceSpec struct {
	kind   Kind
	op     GateOp
	arity  int
	name   string
	preset *Preset
	value  Signal
	period int
}

// Gate returns a primitive gate with the given number of inputs. Unary gates
// ignore arity. Other gates have their arity clamped to [2, MaxGateInputs].
//
func Gate(op GateOp, arity int) DeviceSpec {
	switch {
	case op.Unary():
		arity = 1
	case arity < 2:
		arity = 2
	case arity > MaxGateInputs:
		arity = MaxGateInputs
	}
	return DeviceSpec{kind: KindGate, op: op, arity: arity}
}

// Chip returns an instance of preset p. Its input and output pins match the
// preset's boundary in order.
//
// Chip panics if p is nil.
//
func Chip(p *Preset) DeviceSpec {
	if p == nil {
		panic("nil preset")
	}
	return DeviceSpec{kind: KindChip, preset: p, name: p.name}
}

// SceneInput returns a scene input terminal.
//
func SceneInput(name string) DeviceSpec { return DeviceSpec{kind: KindInput, name: name} }

// SceneOutput returns a scene output terminal.
//
func SceneOutput(name string) DeviceSpec { return DeviceSpec{kind: KindOutput, name: name} }

// Const returns a constant signal source.
//
func Const(v Signal) DeviceSpec { return DeviceSpec{kind: KindConst, value: v & 1} }

// Switch returns a switch, initially Low.
//
func Switch(name string) DeviceSpec { return DeviceSpec{kind: KindSwitch, name: name} }

// Clock returns a clock signal source that starts Low and toggles every
// period ticks. A period less than 1 is set to 1.
//
func Clock(period int) DeviceSpec {
	if period < 1 {
		period = 1
	}
	return DeviceSpec{kind: KindClock, period: period}
}

// DFF returns a data flip-flop.
//
func DFF() DeviceSpec { return DeviceSpec{kind: KindDFF} }

// Light returns a probe.
//
func Light(name string) DeviceSpec { return DeviceSpec{kind: KindLight, name: name} }

// Device is a node in a Scene.
//
type Device struct {
	id     DeviceID
	kind   Kind
	op     GateOp
	name   string
	preset *Preset
	in     []Signal // last computed input states
	out    []Signal // last computed output states
	state  Signal   // const value, switch/clock level, dff latch or boundary input value
	period int
	phase  int
	inst   *Scene // private state of a Graph chip instance
	faulty bool
}

func newDevice(id DeviceID, spec DeviceSpec) *Device {
	d := &Device{
		id:     id,
		kind:   spec.kind,
		op:     spec.op,
		name:   spec.name,
		preset: spec.preset,
		state:  spec.value,
		period: spec.period,
	}
	var nIn, nOut int
	switch d.kind {
	case KindGate:
		nIn, nOut = spec.arity, 1
	case KindChip:
		nIn, nOut = len(d.preset.inputs), len(d.preset.outputs)
		if d.preset.table == nil {
			d.inst = d.preset.scene.clone(false)
		}
	case KindInput, KindConst, KindSwitch, KindClock:
		nOut = 1
	case KindOutput, KindLight:
		nIn = 1
	case KindDFF:
		nIn, nOut = 1, 1
	}
	d.in = make([]Signal, nIn)
	d.out = make([]Signal, nOut)
	if d.kind == KindChip && d.preset.table != nil {
		// outputs for an all Low input
		unpack(d.preset.table.Rows[0], d.out)
	}
	return d
}

// copy returns a copy of d with private state. Graph chip instances get
// their own copy of the instance scene.
func (d *Device) copy() *Device {
	c := *d
	c.in = append([]Signal(nil), d.in...)
	c.out = append([]Signal(nil), d.out...)
	if d.inst != nil {
		c.inst = d.inst.clone(false)
	}
	return &c
}

// stateful returns true if d holds state advanced by ticks.
func (d *Device) stateful() bool {
	switch d.kind {
	case KindSwitch, KindClock, KindDFF:
		return true
	case KindChip:
		return d.preset.Stateful()
	}
	return false
}

func (d *Device) pinCount(dir Direction) int {
	if dir == Out {
		return len(d.out)
	}
	return len(d.in)
}

// DeviceInfo describes a device of a Scene.
//
type DeviceInfo struct {
	ID       DeviceID
	Kind     Kind
	Op       GateOp // gates only
	Name     string // terminal, switch or light label, preset name for chips
	Inputs   int
	Outputs  int
	Stateful bool
	Faulty   bool // chip whose preset was revoked
}

func (d *Device) info() DeviceInfo {
	return DeviceInfo{
		ID:       d.id,
		Kind:     d.kind,
		Op:       d.op,
		Name:     d.name,
		Inputs:   len(d.in),
		Outputs:  len(d.out),
		Stateful: d.stateful(),
		Faulty:   d.faulty,
	}
}
