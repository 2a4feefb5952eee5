// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package store

import (
	"context"
	"slices"
	"sync"

	"github.com/db47h/logsim"
	"github.com/pkg/errors"
)

// Memory is an in-memory Store. It is safe for concurrent use.
//
type Memory struct {
	mu      sync.Mutex
	presets map[string]logsim.PresetData
	order   []string
}

// NewMemory returns an empty Memory store.
//
func NewMemory() *Memory {
	return &Memory{presets: make(map[string]logsim.PresetData)}
}

// Save implements Store.
//
func (m *Memory) Save(_ context.Context, p logsim.PresetData) error {
	if p.Name == "" {
		return errors.New("save: empty preset name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.presets[p.Name]; !ok {
		m.order = append(m.order, p.Name)
	}
	m.presets[p.Name] = p
	return nil
}

// Load implements Store.
//
func (m *Memory) Load(_ context.Context, name string) (logsim.PresetData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.presets[name]
	if !ok {
		return logsim.PresetData{}, errors.Wrapf(ErrNotFound, "%s", name)
	}
	return p, nil
}

// List implements Store.
//
func (m *Memory) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order), nil
}

// Delete implements Store.
//
func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.presets[name]; !ok {
		return errors.Wrapf(ErrNotFound, "%s", name)
	}
	delete(m.presets, name)
	m.order = slices.DeleteFunc(m.order, func(n string) bool { return n == name })
	return nil
}

// Close implements Store.
//
func (m *Memory) Close() error { return nil }
