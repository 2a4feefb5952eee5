// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"
)

// Link is a wire from an output pin to an input pin.
//
type Link struct {
	ID  LinkID
	Src PinRef
	Dst PinRef
}

// A Scene is an editable circuit: a set of devices connected by links, with
// an ordered list of input and output terminals that form its interface
// when promoted to a Preset.
//
// A Scene is not safe for concurrent use.
//
type Scene struct {
	devices map[DeviceID]*Device
	links   map[LinkID]Link
	drivers map[PinRef]LinkID    // input pin -> link driving it
	fanout  map[DeviceID][]LinkID // device -> links sourced from its outputs
	inputs  []DeviceID
	outputs []DeviceID
	nextDev DeviceID
	nextLnk LinkID

	plan   *plan // nil when topology changed since the last pass
	retain bool  // whether chips hold a reference on their preset
	cfg    *config
}

// NewScene returns a new empty Scene.
//
func NewScene(opts ...Option) *Scene {
	return newScene(newConfig(opts), true)
}

func newScene(cfg *config, retain bool) *Scene {
	return &Scene{
		devices: make(map[DeviceID]*Device),
		links:   make(map[LinkID]Link),
		drivers: make(map[PinRef]LinkID),
		fanout:  make(map[DeviceID][]LinkID),
		nextDev: 1,
		nextLnk: 1,
		retain:  retain,
		cfg:     cfg,
	}
}

func (s *Scene) invalidate() { s.plan = nil }

// AddDevice adds a new device to the scene and returns its ID.
//
func (s *Scene) AddDevice(spec DeviceSpec) DeviceID {
	id := s.nextDev
	s.nextDev++
	s.insert(newDevice(id, spec))
	return id
}

func (s *Scene) insert(d *Device) {
	s.devices[d.id] = d
	switch d.kind {
	case KindInput:
		s.inputs = append(s.inputs, d.id)
	case KindOutput:
		s.outputs = append(s.outputs, d.id)
	case KindChip:
		if s.retain {
			d.preset.retain()
		}
	}
	s.invalidate()
}

// RemoveDevice removes a device and all the links connected to it.
//
func (s *Scene) RemoveDevice(id DeviceID) error {
	d, err := s.device(id)
	if err != nil {
		return err
	}
	for _, l := range append([]LinkID(nil), s.fanout[id]...) {
		s.unlink(l)
	}
	for i := range d.in {
		if l, ok := s.drivers[InPin(id, i)]; ok {
			s.unlink(l)
		}
	}
	delete(s.fanout, id)
	delete(s.devices, id)
	switch d.kind {
	case KindInput:
		s.inputs = slices.DeleteFunc(s.inputs, func(x DeviceID) bool { return x == id })
	case KindOutput:
		s.outputs = slices.DeleteFunc(s.outputs, func(x DeviceID) bool { return x == id })
	case KindChip:
		if s.retain {
			d.preset.release()
		}
	}
	s.invalidate()
	return nil
}

// AddLink connects output pin src to input pin dst. On error, the scene is
// left unchanged.
//
func (s *Scene) AddLink(src, dst PinRef) (LinkID, error) {
	id := s.nextLnk
	if err := s.link(id, src, dst); err != nil {
		return 0, err
	}
	s.nextLnk++
	return id, nil
}

func (s *Scene) link(id LinkID, src, dst PinRef) error {
	sd, err := s.device(src.Device)
	if err != nil {
		return errors.Wrap(err, "link source")
	}
	dd, err := s.device(dst.Device)
	if err != nil {
		return errors.Wrap(err, "link target")
	}
	if src.Dir != Out {
		return errors.Wrapf(ErrInvalidPinDirection, "link source %v is not an output", src)
	}
	if dst.Dir != In {
		return errors.Wrapf(ErrInvalidPinDirection, "link target %v is not an input", dst)
	}
	if src.Index < 0 || src.Index >= len(sd.out) {
		return errors.Wrapf(ErrUnknownPin, "link source %v", src)
	}
	if dst.Index < 0 || dst.Index >= len(dd.in) {
		return errors.Wrapf(ErrUnknownPin, "link target %v", dst)
	}
	if l, ok := s.drivers[dst]; ok {
		return errors.Wrapf(ErrFanInConflict, "%v already driven by %v", dst, l)
	}
	if sd.kind == KindInput && dd.kind == KindOutput {
		return errors.Wrapf(ErrBoundaryShort, "%v -> %v", src, dst)
	}
	s.links[id] = Link{ID: id, Src: src, Dst: dst}
	s.drivers[dst] = id
	s.fanout[src.Device] = append(s.fanout[src.Device], id)
	s.invalidate()
	return nil
}

// RemoveLink removes a link.
//
func (s *Scene) RemoveLink(id LinkID) error {
	if _, ok := s.links[id]; !ok {
		return errors.Wrapf(ErrUnknownLink, "%v", id)
	}
	s.unlink(id)
	return nil
}

func (s *Scene) unlink(id LinkID) {
	l := s.links[id]
	delete(s.links, id)
	delete(s.drivers, l.Dst)
	s.fanout[l.Src.Device] = slices.DeleteFunc(s.fanout[l.Src.Device], func(x LinkID) bool { return x == id })
	s.invalidate()
}

func (s *Scene) device(id DeviceID) (*Device, error) {
	d, ok := s.devices[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDevice, "%v", id)
	}
	return d, nil
}

func (s *Scene) deviceOf(id DeviceID, kinds ...Kind) (*Device, error) {
	d, err := s.device(id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(kinds, d.kind) {
		return nil, errors.Wrapf(ErrDeviceKind, "%v is a %v", id, d.kind)
	}
	return d, nil
}

// SetInput sets the value driven by scene input id.
//
func (s *Scene) SetInput(id DeviceID, v Signal) error {
	d, err := s.deviceOf(id, KindInput)
	if err != nil {
		return err
	}
	d.state = v & 1
	return nil
}

// SetSwitch sets the state of switch id.
//
func (s *Scene) SetSwitch(id DeviceID, v Signal) error {
	d, err := s.deviceOf(id, KindSwitch)
	if err != nil {
		return err
	}
	d.state = v & 1
	return nil
}

// Toggle flips the state of switch id.
//
func (s *Scene) Toggle(id DeviceID) error {
	d, err := s.deviceOf(id, KindSwitch)
	if err != nil {
		return err
	}
	d.state = d.state.Not()
	return nil
}

// Rename sets the label of a scene terminal, switch or light.
//
func (s *Scene) Rename(id DeviceID, name string) error {
	d, err := s.deviceOf(id, KindInput, KindOutput, KindSwitch, KindLight)
	if err != nil {
		return err
	}
	d.name = name
	return nil
}

// Lookup returns the scene input or output terminal with the given name.
//
func (s *Scene) Lookup(name string) (DeviceID, bool) {
	for _, ids := range [][]DeviceID{s.inputs, s.outputs} {
		for _, id := range ids {
			if s.devices[id].name == name {
				return id, true
			}
		}
	}
	return 0, false
}

// Device returns a description of device id.
//
func (s *Scene) Device(id DeviceID) (DeviceInfo, error) {
	d, err := s.device(id)
	if err != nil {
		return DeviceInfo{}, err
	}
	return d.info(), nil
}

// Pin returns the state of pin p as of the last evaluation pass.
//
func (s *Scene) Pin(p PinRef) (Signal, error) {
	d, err := s.device(p.Device)
	if err != nil {
		return Low, err
	}
	pins := d.in
	if p.Dir == Out {
		pins = d.out
	}
	if p.Index < 0 || p.Index >= len(pins) {
		return Low, errors.Wrapf(ErrUnknownPin, "%v", p)
	}
	return pins[p.Index], nil
}

// Output returns the state of scene output id as of the last evaluation
// pass.
//
func (s *Scene) Output(id DeviceID) (Signal, error) {
	d, err := s.deviceOf(id, KindOutput)
	if err != nil {
		return Low, err
	}
	return d.in[0], nil
}

// Devices returns the IDs of all devices in ascending order.
//
func (s *Scene) Devices() []DeviceID {
	ids := make([]DeviceID, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Links returns all links ordered by ID.
//
func (s *Scene) Links() []Link {
	ls := make([]Link, 0, len(s.links))
	for _, l := range s.links {
		ls = append(ls, l)
	}
	slices.SortFunc(ls, func(a, b Link) int { return cmp.Compare(a.ID, b.ID) })
	return ls
}

// Link returns link id.
//
func (s *Scene) Link(id LinkID) (Link, error) {
	l, ok := s.links[id]
	if !ok {
		return Link{}, errors.Wrapf(ErrUnknownLink, "%v", id)
	}
	return l, nil
}

// Driver returns the link connected to input pin p, if any.
//
func (s *Scene) Driver(p PinRef) (LinkID, bool) {
	l, ok := s.drivers[p]
	return l, ok
}

// Inputs returns the scene inputs in interface order.
//
func (s *Scene) Inputs() []DeviceID { return append([]DeviceID(nil), s.inputs...) }

// Outputs returns the scene outputs in interface order.
//
func (s *Scene) Outputs() []DeviceID { return append([]DeviceID(nil), s.outputs...) }

// Len returns the device count.
//
func (s *Scene) Len() int { return len(s.devices) }

// LinkCount returns the link count.
//
func (s *Scene) LinkCount() int { return len(s.links) }

// Faults returns the chips that failed to evaluate during the last pass
// because their preset was revoked.
//
func (s *Scene) Faults() []DeviceID {
	var ids []DeviceID
	for id, d := range s.devices {
		if d.faulty {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Clone returns a deep copy of s, including device states.
//
func (s *Scene) Clone() *Scene { return s.clone(true) }

func (s *Scene) clone(retain bool) *Scene {
	c := &Scene{
		devices: make(map[DeviceID]*Device, len(s.devices)),
		links:   make(map[LinkID]Link, len(s.links)),
		drivers: make(map[PinRef]LinkID, len(s.drivers)),
		fanout:  make(map[DeviceID][]LinkID, len(s.fanout)),
		inputs:  append([]DeviceID(nil), s.inputs...),
		outputs: append([]DeviceID(nil), s.outputs...),
		nextDev: s.nextDev,
		nextLnk: s.nextLnk,
		plan:    s.plan,
		retain:  retain,
		cfg:     s.cfg,
	}
	for id, d := range s.devices {
		c.devices[id] = d.copy()
		if retain && d.kind == KindChip {
			d.preset.retain()
		}
	}
	for id, l := range s.links {
		c.links[id] = l
	}
	for p, l := range s.drivers {
		c.drivers[p] = l
	}
	for id, ls := range s.fanout {
		c.fanout[id] = append([]LinkID(nil), ls...)
	}
	return c
}

// Dispose releases the presets referenced by chips in the scene. The scene
// must not be used afterwards.
//
func (s *Scene) Dispose() {
	if s.retain {
		for _, d := range s.devices {
			if d.kind == KindChip {
				d.preset.release()
			}
		}
		s.retain = false
	}
}

// setBoundary sets scene inputs in interface order.
func (s *Scene) setBoundary(in []Signal) {
	for i, id := range s.inputs {
		s.devices[id].state = in[i]
	}
}

// readBoundary reads scene outputs in interface order.
func (s *Scene) readBoundary(out []Signal) {
	for i, id := range s.outputs {
		out[i] = s.devices[id].in[0]
	}
}
