// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"github.com/pkg/errors"
)

// Propagate runs one evaluation pass over the scene: devices are updated in
// level order so that every device sees the outputs its drivers computed
// during the same pass. Pin states can then be queried with Pin or Output.
//
// Propagate returns a *CycleError if the scene contains a feedback loop. If
// some chips reference a revoked preset, the pass completes with these chips
// driving Low and a *FaultError is returned.
//
func (s *Scene) Propagate() error {
	p, err := s.getPlan()
	if err != nil {
		return err
	}
	return s.run(p)
}

func (s *Scene) run(p *plan) error {
	var faults []DeviceID
	for _, lvl := range p.levels {
		for i := range lvl {
			st := &lvl[i]
			d := s.devices[st.id]
			if d == nil {
				return internalf(nil, "plan references missing device %v", st.id)
			}
			for pin, src := range st.src {
				if src.Device == 0 {
					d.in[pin] = Low
					continue
				}
				d.in[pin] = s.devices[src.Device].out[src.Index]
			}
			if err := d.update(); err != nil {
				if !errors.Is(err, ErrPresetDeleted) {
					return err
				}
				faults = append(faults, d.id)
			}
		}
	}
	if len(faults) > 0 {
		return &FaultError{Devices: faults}
	}
	return nil
}

// update computes the outputs of d from its current inputs.
func (d *Device) update() error {
	switch d.kind {
	case KindGate:
		d.out[0] = d.op.Eval(d.in)
	case KindInput, KindConst, KindSwitch, KindClock, KindDFF:
		d.out[0] = d.state
	case KindOutput, KindLight:
	case KindChip:
		return d.updateChip()
	default:
		return internalf(nil, "device %v has unknown kind %v", d.id, d.kind)
	}
	return nil
}

func (d *Device) updateChip() error {
	p := d.preset
	d.faulty = false
	if p.broken() {
		d.faulty = true
		for i := range d.out {
			d.out[i] = Low
		}
		return errors.Wrapf(ErrPresetDeleted, "chip %v (%s)", d.id, p.name)
	}
	if p.table != nil {
		unpack(p.table.Rows[pack(d.in)], d.out)
		return nil
	}
	d.inst.setBoundary(d.in)
	err := d.inst.Propagate()
	d.inst.readBoundary(d.out)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPresetDeleted):
		d.faulty = true
		return errors.Wrapf(err, "chip %v (%s)", d.id, p.name)
	default:
		return internalf(err, "chip %v (%s)", d.id, p.name)
	}
}

// Evaluate runs an evaluation pass (see Propagate) and returns the state of
// every pin in the scene.
//
// If the pass completes with faulty chips, the returned Signals are valid and
// the error is a *FaultError.
//
func (s *Scene) Evaluate() (Signals, error) {
	err := s.Propagate()
	if err != nil && !errors.Is(err, ErrPresetDeleted) {
		return nil, err
	}
	s.cfg.metrics.evaluated()
	sig := make(Signals, 2*len(s.devices))
	for id, d := range s.devices {
		for i, v := range d.in {
			sig[InPin(id, i)] = v
		}
		for i, v := range d.out {
			sig[OutPin(id, i)] = v
		}
	}
	return sig, err
}

// Tick advances all stateful devices by one tick: clocks count towards their
// next toggle and flip-flops latch the input value seen during the last
// evaluation pass. Chips backed by a stateful preset tick their private
// devices. Switches only change through SetSwitch or Toggle.
//
// Outputs reflect the new states after the next evaluation pass.
//
func (s *Scene) Tick() {
	for _, d := range s.devices {
		d.tick()
	}
}

func (d *Device) tick() {
	switch d.kind {
	case KindClock:
		d.phase++
		if d.phase >= d.period {
			d.phase = 0
			d.state = d.state.Not()
		}
	case KindDFF:
		d.state = d.in[0]
	case KindChip:
		if d.inst != nil && d.preset.stateful {
			d.inst.Tick()
		}
	}
}
