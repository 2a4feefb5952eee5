// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"slices"

	"github.com/pkg/errors"
)

// A Library is a set of presets with unique names, kept in registration
// order. Presets built from scenes that instantiate other presets must be
// registered after them.
//
// A Library is not safe for concurrent use.
//
type Library struct {
	presets map[string]*Preset
	order   []string
	opts    []Option
	cfg     *config
}

// NewLibrary returns a new empty library. opts are applied to all scenes
// promoted with (*Library).Promote.
//
func NewLibrary(opts ...Option) *Library {
	return &Library{
		presets: make(map[string]*Preset),
		opts:    opts,
		cfg:     newConfig(opts),
	}
}

// NewScene returns a new empty scene sharing the library options.
//
func (l *Library) NewScene() *Scene { return NewScene(l.opts...) }

// Add registers p.
//
func (l *Library) Add(p *Preset) error {
	if _, ok := l.presets[p.name]; ok {
		return errors.Wrapf(ErrDuplicatePreset, "%s", p.name)
	}
	if p.broken() {
		return errors.Wrapf(ErrPresetDeleted, "%s", p.name)
	}
	l.presets[p.name] = p
	l.order = append(l.order, p.name)
	return nil
}

// Get returns the preset with the given name.
//
func (l *Library) Get(name string) (*Preset, error) {
	p, ok := l.presets[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPreset, "%s", name)
	}
	return p, nil
}

// Names returns the preset names in registration order.
//
func (l *Library) Names() []string { return append([]string(nil), l.order...) }

// Presets returns the presets in registration order.
//
func (l *Library) Presets() []*Preset {
	ps := make([]*Preset, len(l.order))
	for i, n := range l.order {
		ps[i] = l.presets[n]
	}
	return ps
}

// Len returns the number of presets in the library.
//
func (l *Library) Len() int { return len(l.order) }

// Promote promotes s (see Promote) and registers the resulting preset.
//
func (l *Library) Promote(s *Scene, name string, opts ...Option) (*Preset, error) {
	if _, ok := l.presets[name]; ok {
		return nil, errors.Wrapf(ErrDuplicatePreset, "%s", name)
	}
	p, err := Promote(s, name, append(slices.Clip(l.opts), opts...)...)
	if err != nil {
		return nil, err
	}
	if err = l.Add(p); err != nil {
		p.scene.Dispose()
		return nil, err
	}
	return p, nil
}

// Remove deletes the preset with the given name. It fails with
// ErrPresetInUse if chips in live scenes or other presets still reference
// it.
//
func (l *Library) Remove(name string) error {
	p, err := l.Get(name)
	if err != nil {
		return err
	}
	if n := p.Refs(); n > 0 {
		return errors.Wrapf(ErrPresetInUse, "%s: %d references", name, n)
	}
	l.drop(p)
	l.cfg.log.Debug("preset removed", "preset", name)
	return nil
}

// Revoke forcibly deletes the preset with the given name and returns the
// number of references it had. Existing chips of the preset stop evaluating:
// they drive Low and are reported by (*Scene).Faults and the error returned
// by (*Scene).Propagate.
//
func (l *Library) Revoke(name string) (int, error) {
	p, err := l.Get(name)
	if err != nil {
		return 0, err
	}
	n := p.Refs()
	l.drop(p)
	if n > 0 {
		l.cfg.log.Warn("preset revoked while in use", "preset", name, "refs", n)
	}
	return n, nil
}

func (l *Library) drop(p *Preset) {
	delete(l.presets, p.name)
	l.order = slices.DeleteFunc(l.order, func(n string) bool { return n == p.name })
	p.revoked.Store(true)
	p.scene.Dispose()
}
