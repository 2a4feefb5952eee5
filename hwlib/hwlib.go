// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of common circuits, written in the logsim
// HDL.
//
// Chip names do not collide with primitive gate names, so that the library
// can be loaded alongside user definitions.
//
package hwlib

import (
	"strings"

	"github.com/db47h/logsim"
	"github.com/pkg/errors"
)

// sources in dependency order.
var sources = []struct {
	name string
	src  string
}{
	{"gates.hdl", gatesHDL},
	{"mux.hdl", muxHDL},
	{"arith.hdl", arithHDL},
	{"dff.hdl", dffHDL},
}

// Load registers all library chips in l and returns the new presets in
// registration order.
//
func Load(l *logsim.Library) ([]*logsim.Preset, error) {
	var ps []*logsim.Preset
	for _, s := range sources {
		p, err := l.LoadHDLString(s.name, s.src)
		ps = append(ps, p...)
		if err != nil {
			return ps, errors.Wrap(err, "hwlib")
		}
	}
	return ps, nil
}

// Source returns the HDL source of the whole library.
//
func Source() string {
	var b strings.Builder
	for _, s := range sources {
		b.WriteString("// ")
		b.WriteString(s.name)
		b.WriteString(s.src)
	}
	return b.String()
}
