// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"slices"

	"github.com/pkg/errors"
)

// Validate checks that s can be promoted to a Preset: no scene input may be
// linked directly to a scene output and the device graph must be acyclic.
//
// If a cycle is found, the returned error is a *CycleError.
//
func Validate(s *Scene) error {
	for _, l := range s.Links() {
		if s.devices[l.Src.Device].kind == KindInput && s.devices[l.Dst.Device].kind == KindOutput {
			return errors.Wrapf(ErrBoundaryShort, "link %v: %v -> %v", l.ID, l.Src, l.Dst)
		}
	}
	if path := findCycle(s); path != nil {
		return &CycleError{Path: path}
	}
	return nil
}

const (
	white = iota // not visited
	grey         // on the DFS stack
	black        // done
)

// findCycle runs a depth first search over the devices of s in ascending ID
// order and returns the first cycle found, starting at the device where the
// cycle was entered. It returns nil if s is acyclic.
func findCycle(s *Scene) []DeviceID {
	color := make(map[DeviceID]int, len(s.devices))
	pos := make(map[DeviceID]int)
	var stack []DeviceID

	var visit func(v DeviceID) []DeviceID
	visit = func(v DeviceID) []DeviceID {
		color[v] = grey
		pos[v] = len(stack)
		stack = append(stack, v)
		for _, w := range s.successors(v) {
			switch color[w] {
			case grey:
				return append([]DeviceID(nil), stack[pos[w]:]...)
			case white:
				if c := visit(w); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[v] = black
		return nil
	}

	for _, id := range s.Devices() {
		if color[id] == white {
			if c := visit(id); c != nil {
				return c
			}
		}
	}
	return nil
}

// successors returns the devices driven by id, sorted and without
// duplicates.
func (s *Scene) successors(id DeviceID) []DeviceID {
	ls := s.fanout[id]
	if len(ls) == 0 {
		return nil
	}
	out := make([]DeviceID, len(ls))
	for i, l := range ls {
		out[i] = s.links[l].Dst.Device
	}
	slices.Sort(out)
	return slices.Compact(out)
}
