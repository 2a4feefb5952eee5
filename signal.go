// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

// Signal is the binary state of a pin.
//
type Signal uint8

// Signal values. Unconnected inputs read Low.
//
const (
	Low Signal = iota
	High
)

// Bool converts a bool to a Signal.
//
func Bool(b bool) Signal {
	if b {
		return High
	}
	return Low
}

// Bool returns true if s is High.
//
func (s Signal) Bool() bool { return s == High }

// Not returns the complement of s.
//
func (s Signal) Not() Signal { return s ^ 1 }

func (s Signal) String() string {
	if s == High {
		return "HIGH"
	}
	return "LOW"
}

// Signals maps pins to their state after an evaluation pass.
//
type Signals map[PinRef]Signal

// Get returns the state of pin p. Unknown pins read Low.
//
func (s Signals) Get(p PinRef) Signal { return s[p] }

// pack returns sigs as a bit vector. sigs[i] is bit i.
func pack(sigs []Signal) uint64 {
	var v uint64
	for i, s := range sigs {
		v |= uint64(s&1) << uint(i)
	}
	return v
}

// unpack sets out[i] to bit i of v.
func unpack(v uint64, out []Signal) {
	for i := range out {
		out[i] = Signal(v>>uint(i)) & 1
	}
}
