// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"io"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SceneData is the serializable form of a Scene.
//
type SceneData struct {
	Devices    []DeviceData `yaml:"devices" json:"devices"`
	Links      []LinkData   `yaml:"links,omitempty" json:"links,omitempty"`
	Inputs     []DeviceID   `yaml:"inputs,flow,omitempty" json:"inputs,omitempty"`
	Outputs    []DeviceID   `yaml:"outputs,flow,omitempty" json:"outputs,omitempty"`
	NextDevice DeviceID     `yaml:"next_device,omitempty" json:"next_device,omitempty"`
	NextLink   LinkID       `yaml:"next_link,omitempty" json:"next_link,omitempty"`
}

// DeviceData is the serializable form of a Device.
//
type DeviceData struct {
	ID     DeviceID `yaml:"id" json:"id"`
	Kind   Kind     `yaml:"kind" json:"kind"`
	Op     string   `yaml:"op,omitempty" json:"op,omitempty"`         // gates
	Arity  int      `yaml:"arity,omitempty" json:"arity,omitempty"`   // gates
	Name   string   `yaml:"name,omitempty" json:"name,omitempty"`     // terminals, switches, lights
	Preset string   `yaml:"preset,omitempty" json:"preset,omitempty"` // chips
	State  Signal   `yaml:"state,omitempty" json:"state,omitempty"`
	Period int      `yaml:"period,omitempty" json:"period,omitempty"` // clocks
	Phase  int      `yaml:"phase,omitempty" json:"phase,omitempty"`   // clocks
}

// LinkData is the serializable form of a Link.
//
type LinkData struct {
	ID  LinkID `yaml:"id" json:"id"`
	Src PinRef `yaml:"src,flow" json:"src"`
	Dst PinRef `yaml:"dst,flow" json:"dst"`
}

// PresetData is the serializable form of a Preset. Table is set for Direct
// presets only.
//
type PresetData struct {
	Name     string     `yaml:"name" json:"name"`
	Inputs   []string   `yaml:"inputs,flow" json:"inputs"`
	Outputs  []string   `yaml:"outputs,flow" json:"outputs"`
	Strategy Strategy   `yaml:"strategy" json:"strategy"`
	Scene    SceneData  `yaml:"scene" json:"scene"`
	Table    *TableData `yaml:"table,omitempty" json:"table,omitempty"`
}

// TableData is the serializable form of a TruthTable.
//
type TableData struct {
	Inputs  int      `yaml:"inputs" json:"inputs"`
	Outputs int      `yaml:"outputs" json:"outputs"`
	Rows    []uint64 `yaml:"rows,flow" json:"rows"`
}

// LibraryData is the serializable form of a Library. Presets are listed in
// registration order.
//
type LibraryData struct {
	Presets []PresetData `yaml:"presets" json:"presets"`
}

// A Resolver returns the preset with the given name. (*Library).Get is a
// Resolver.
//
type Resolver func(name string) (*Preset, error)

// Snapshot returns the serializable form of s.
//
func (s *Scene) Snapshot() SceneData {
	data := SceneData{
		Devices:    make([]DeviceData, 0, len(s.devices)),
		Inputs:     s.Inputs(),
		Outputs:    s.Outputs(),
		NextDevice: s.nextDev,
		NextLink:   s.nextLnk,
	}
	for _, id := range s.Devices() {
		d := s.devices[id]
		dd := DeviceData{ID: id, Kind: d.kind, State: d.state}
		switch d.kind {
		case KindGate:
			dd.Op = d.op.String()
			if !d.op.Unary() {
				dd.Arity = len(d.in)
			}
		case KindChip:
			dd.Preset = d.preset.name
		case KindClock:
			dd.Period, dd.Phase = d.period, d.phase
		default:
			dd.Name = d.name
		}
		data.Devices = append(data.Devices, dd)
	}
	for _, l := range s.Links() {
		data.Links = append(data.Links, LinkData{ID: l.ID, Src: l.Src, Dst: l.Dst})
	}
	return data
}

// Spec returns the DeviceSpec described by dd. Chips are bound to the preset
// returned by resolve. The ID, State (except for constants) and Phase fields
// are ignored.
//
func (dd *DeviceData) Spec(resolve Resolver) (DeviceSpec, error) {
	switch dd.Kind {
	case KindGate:
		op, ok := ParseGateOp(dd.Op)
		if !ok {
			return DeviceSpec{}, errors.Errorf("invalid gate op %q", dd.Op)
		}
		if !op.Unary() && (dd.Arity < 2 || dd.Arity > MaxGateInputs) {
			return DeviceSpec{}, errors.Errorf("invalid %v gate arity %d", op, dd.Arity)
		}
		return Gate(op, dd.Arity), nil
	case KindChip:
		if resolve == nil {
			return DeviceSpec{}, errors.Wrapf(ErrUnknownPreset, "%s: no resolver", dd.Preset)
		}
		p, err := resolve(dd.Preset)
		if err != nil {
			return DeviceSpec{}, err
		}
		return Chip(p), nil
	case KindInput:
		return SceneInput(dd.Name), nil
	case KindOutput:
		return SceneOutput(dd.Name), nil
	case KindConst:
		return Const(dd.State), nil
	case KindSwitch:
		return Switch(dd.Name), nil
	case KindClock:
		if dd.Period < 1 {
			return DeviceSpec{}, errors.Errorf("invalid clock period %d", dd.Period)
		}
		return Clock(dd.Period), nil
	case KindDFF:
		return DFF(), nil
	case KindLight:
		return Light(dd.Name), nil
	}
	return DeviceSpec{}, errors.Errorf("invalid device kind %v", dd.Kind)
}

// SceneFromData rebuilds a scene from its serialized form. Chips are bound to
// the presets returned by resolve.
//
func SceneFromData(data SceneData, resolve Resolver, opts ...Option) (*Scene, error) {
	s := NewScene(opts...)
	if err := s.load(&data, resolve); err != nil {
		s.Dispose()
		return nil, err
	}
	return s, nil
}

func (s *Scene) load(data *SceneData, resolve Resolver) error {
	var maxDev DeviceID
	for i := range data.Devices {
		dd := &data.Devices[i]
		if dd.ID == 0 {
			return errors.Errorf("device #%d: missing ID", i)
		}
		if _, ok := s.devices[dd.ID]; ok {
			return errors.Errorf("device %v: duplicate ID", dd.ID)
		}
		spec, err := dd.Spec(resolve)
		if err != nil {
			return errors.Wrapf(err, "device %v", dd.ID)
		}
		d := newDevice(dd.ID, spec)
		d.state = dd.State & 1
		if d.kind == KindClock {
			d.phase = min(max(dd.Phase, 0), d.period-1)
		}
		s.insert(d)
		maxDev = max(maxDev, dd.ID)
	}

	if err := s.loadBoundary(&s.inputs, data.Inputs, KindInput); err != nil {
		return errors.Wrap(err, "inputs")
	}
	if err := s.loadBoundary(&s.outputs, data.Outputs, KindOutput); err != nil {
		return errors.Wrap(err, "outputs")
	}

	var maxLnk LinkID
	for i := range data.Links {
		ld := &data.Links[i]
		if ld.ID == 0 {
			return errors.Errorf("link #%d: missing ID", i)
		}
		if _, ok := s.links[ld.ID]; ok {
			return errors.Errorf("link %v: duplicate ID", ld.ID)
		}
		if err := s.link(ld.ID, ld.Src, ld.Dst); err != nil {
			return errors.Wrapf(err, "link %v", ld.ID)
		}
		maxLnk = max(maxLnk, ld.ID)
	}

	s.nextDev = max(data.NextDevice, maxDev+1)
	s.nextLnk = max(data.NextLink, maxLnk+1)
	return nil
}

// loadBoundary replaces the terminal order in dst with ids. ids must be a
// permutation of dst. An empty ids keeps the device ID order.
func (s *Scene) loadBoundary(dst *[]DeviceID, ids []DeviceID, kind Kind) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(*dst) {
		return errors.Errorf("got %d %v terminals, want %d", len(ids), kind, len(*dst))
	}
	seen := make(map[DeviceID]bool, len(ids))
	for _, id := range ids {
		if _, err := s.deviceOf(id, kind); err != nil {
			return err
		}
		if seen[id] {
			return errors.Errorf("%v listed twice", id)
		}
		seen[id] = true
	}
	*dst = slices.Clone(ids)
	return nil
}

// Data returns the serializable form of p.
//
func (p *Preset) Data() PresetData {
	data := PresetData{
		Name:     p.name,
		Inputs:   p.Inputs(),
		Outputs:  p.Outputs(),
		Strategy: p.Strategy(),
		Scene:    p.scene.Snapshot(),
	}
	if p.table != nil {
		data.Table = &TableData{
			Inputs:  p.table.Inputs,
			Outputs: p.table.Outputs,
			Rows:    slices.Clone(p.table.Rows),
		}
	}
	return data
}

// PresetFromData rebuilds a preset from its serialized form. The scene is
// validated again but a Direct preset's table is restored as is, and a Graph
// preset is not recompiled.
//
func PresetFromData(data PresetData, resolve Resolver, opts ...Option) (*Preset, error) {
	if data.Name == "" {
		return nil, errors.New("preset: missing name")
	}
	s, err := SceneFromData(data.Scene, resolve, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "preset %s", data.Name)
	}
	defer s.Dispose()

	for _, id := range s.Devices() {
		if d := s.devices[id]; d.kind == KindChip && d.preset.broken() {
			return nil, errors.Wrapf(ErrPresetDeleted, "preset %s: chip %v (%s)", data.Name, id, d.preset.name)
		}
	}

	var p *Preset
	switch data.Strategy {
	case Direct:
		if data.Table == nil {
			return nil, errors.Errorf("preset %s: direct strategy without table", data.Name)
		}
		t := &TruthTable{Inputs: data.Table.Inputs, Outputs: data.Table.Outputs, Rows: slices.Clone(data.Table.Rows)}
		p, err = newDirectPreset(s, data.Name, t, s.cfg)
	default:
		if err = Validate(s); err != nil {
			return nil, errors.Wrapf(err, "preset %s", data.Name)
		}
		p, _, err = freeze(s, data.Name, s.cfg)
	}
	if err != nil {
		return nil, err
	}

	if (data.Inputs != nil && !slices.Equal(data.Inputs, p.inputs)) ||
		(data.Outputs != nil && !slices.Equal(data.Outputs, p.outputs)) {
		p.scene.Dispose()
		return nil, errors.Errorf("preset %s: boundary names do not match its scene", data.Name)
	}
	return p, nil
}

// Data returns the serializable form of l.
//
func (l *Library) Data() LibraryData {
	data := LibraryData{Presets: make([]PresetData, 0, len(l.order))}
	for _, p := range l.Presets() {
		data.Presets = append(data.Presets, p.Data())
	}
	return data
}

// Load rebuilds the presets in data, in order, and registers them. Chips are
// resolved against presets already in l.
//
func (l *Library) Load(data LibraryData) error {
	for i := range data.Presets {
		p, err := PresetFromData(data.Presets[i], l.Get, l.opts...)
		if err != nil {
			return err
		}
		if err = l.Add(p); err != nil {
			p.scene.Dispose()
			return err
		}
	}
	return nil
}

func encode(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode")
	}
	return errors.Wrap(enc.Close(), "encode")
}

func decode(r io.Reader, v interface{}) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	return errors.Wrap(dec.Decode(v), "decode")
}

// EncodeScene writes s to w in YAML format.
//
func EncodeScene(w io.Writer, s *Scene) error { return encode(w, s.Snapshot()) }

// DecodeScene reads a YAML encoded scene from r.
//
func DecodeScene(r io.Reader, resolve Resolver, opts ...Option) (*Scene, error) {
	var data SceneData
	if err := decode(r, &data); err != nil {
		return nil, err
	}
	return SceneFromData(data, resolve, opts...)
}

// EncodePreset writes p to w in YAML format.
//
func EncodePreset(w io.Writer, p *Preset) error { return encode(w, p.Data()) }

// DecodePreset reads a YAML encoded preset from r.
//
func DecodePreset(r io.Reader, resolve Resolver, opts ...Option) (*Preset, error) {
	var data PresetData
	if err := decode(r, &data); err != nil {
		return nil, err
	}
	return PresetFromData(data, resolve, opts...)
}

// EncodeLibrary writes all presets in l to w in YAML format.
//
func EncodeLibrary(w io.Writer, l *Library) error { return encode(w, l.Data()) }

// DecodeLibrary reads YAML encoded presets from r and registers them in l.
//
func DecodeLibrary(r io.Reader, l *Library) error {
	var data LibraryData
	if err := decode(r, &data); err != nil {
		return err
	}
	return l.Load(data)
}
