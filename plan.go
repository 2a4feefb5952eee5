// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import "slices"

// step evaluates one device. src[i] is the output pin driving input i; a zero
// Device ID marks an unconnected input.
type step struct {
	id  DeviceID
	src []PinRef
}

// A plan orders devices in levels such that every device is driven only by
// devices at strictly lower levels. Plans are immutable once built and are
// shared by clones of the scene they were built for.
type plan struct {
	levels [][]step
	size   int
}

// buildPlan levelizes s. Devices with no driven inputs are at level 0, every
// other device sits one level above its highest driver.
func buildPlan(s *Scene) (*plan, error) {
	indeg := make(map[DeviceID]int, len(s.devices))
	for _, l := range s.links {
		indeg[l.Dst.Device]++
	}

	var cur []DeviceID
	for id := range s.devices {
		if indeg[id] == 0 {
			cur = append(cur, id)
		}
	}

	p := &plan{}
	for len(cur) > 0 {
		slices.Sort(cur)
		steps := make([]step, len(cur))
		var next []DeviceID
		for i, id := range cur {
			d := s.devices[id]
			st := step{id: id, src: make([]PinRef, len(d.in))}
			for pin := range d.in {
				if l, ok := s.drivers[InPin(id, pin)]; ok {
					st.src[pin] = s.links[l].Src
				}
			}
			steps[i] = st
			for _, l := range s.fanout[id] {
				// t is ready once its last driver is placed, i.e. in this level.
				t := s.links[l].Dst.Device
				if indeg[t]--; indeg[t] == 0 {
					next = append(next, t)
				}
			}
		}
		p.levels = append(p.levels, steps)
		p.size += len(steps)
		cur = next
	}

	if p.size != len(s.devices) {
		path := findCycle(s)
		if path == nil {
			return nil, internalf(nil, "levelization stalled at %d/%d devices without a cycle", p.size, len(s.devices))
		}
		return nil, &CycleError{Path: path}
	}
	return p, nil
}

// getPlan returns the cached plan for s, building it if necessary.
func (s *Scene) getPlan() (*plan, error) {
	if s.plan != nil {
		return s.plan, nil
	}
	p, err := buildPlan(s)
	if err != nil {
		return nil, err
	}
	s.plan = p
	s.cfg.metrics.planBuilt()
	s.cfg.log.Debug("evaluation plan rebuilt", "devices", p.size, "levels", len(p.levels))
	return p, nil
}

// Levels returns the device IDs of the scene grouped by evaluation level.
// Devices in a level only depend on devices in lower levels.
//
// Chips are levelled by their drivers like any other device, stateful ones
// included. Since feedback loops are always rejected, this yields the same
// signals as placing stateful chips at level 0.
//
func (s *Scene) Levels() ([][]DeviceID, error) {
	p, err := s.getPlan()
	if err != nil {
		return nil, err
	}
	out := make([][]DeviceID, len(p.levels))
	for i, lvl := range p.levels {
		ids := make([]DeviceID, len(lvl))
		for j, st := range lvl {
			ids[j] = st.id
		}
		out[i] = ids
	}
	return out, nil
}
