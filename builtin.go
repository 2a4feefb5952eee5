// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// GateOp is the boolean function of a primitive gate.
//
type GateOp uint8

// Primitive gate functions. Not and Buf take a single input; the others
// accept from 2 to MaxGateInputs inputs.
//
const (
	And GateOp = iota
	Or
	Not
	Nand
	Nor
	Xor
	Xnor
	Buf
)

// MaxGateInputs is the maximum input count of a primitive gate.
//
const MaxGateInputs = 16

var opNames = [...]string{
	And:  "AND",
	Or:   "OR",
	Not:  "NOT",
	Nand: "NAND",
	Nor:  "NOR",
	Xor:  "XOR",
	Xnor: "XNOR",
	Buf:  "BUF",
}

func (op GateOp) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "GateOp(" + strconv.Itoa(int(op)) + ")"
}

// Unary returns true for single input gates.
//
func (op GateOp) Unary() bool { return op == Not || op == Buf }

// MarshalText implements encoding.TextMarshaler.
//
func (op GateOp) MarshalText() ([]byte, error) {
	if int(op) >= len(opNames) {
		return nil, errors.Errorf("invalid gate op %d", op)
	}
	return []byte(opNames[op]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names are case
// insensitive.
//
func (op *GateOp) UnmarshalText(text []byte) error {
	v, ok := ParseGateOp(string(text))
	if !ok {
		return errors.Errorf("invalid gate op %q", text)
	}
	*op = v
	return nil
}

// ParseGateOp returns the GateOp with the given case insensitive name.
//
func ParseGateOp(name string) (GateOp, bool) {
	name = strings.ToUpper(name)
	for i, n := range opNames {
		if n == name {
			return GateOp(i), true
		}
	}
	return 0, false
}

// Eval computes the gate output for the given inputs.
//
func (op GateOp) Eval(in []Signal) Signal {
	switch op {
	case Not:
		return in[0].Not()
	case Buf:
		return in[0]
	case And, Nand:
		r := High
		for _, s := range in {
			r &= s
		}
		if op == Nand {
			return r.Not()
		}
		return r
	case Or, Nor:
		r := Low
		for _, s := range in {
			r |= s
		}
		if op == Nor {
			return r.Not()
		}
		return r
	case Xor, Xnor:
		r := Low
		for _, s := range in {
			r ^= s
		}
		if op == Xnor {
			return r.Not()
		}
		return r
	}
	panic("unknown gate op " + op.String())
}
