// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package store persists presets in serialized form.
//
// Stores list presets in the order they were first saved. Since a preset
// can only be rebuilt once the presets its chips refer to are available,
// saving a library in registration order and loading it back in listing
// order always succeeds.
//
package store

import (
	"context"

	"github.com/db47h/logsim"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when loading or deleting a missing preset.
//
var ErrNotFound = errors.New("preset not found")

// A Store persists presets by name.
//
type Store interface {
	// Save stores p, replacing any preset with the same name. A replaced
	// preset keeps its listing position.
	Save(ctx context.Context, p logsim.PresetData) error
	// Load returns the preset with the given name.
	Load(ctx context.Context, name string) (logsim.PresetData, error)
	// List returns the stored preset names in the order they were first saved.
	List(ctx context.Context) ([]string, error)
	// Delete removes the preset with the given name.
	Delete(ctx context.Context, name string) error
	// Close releases the resources held by the store.
	Close() error
}

// SaveLibrary saves all presets of l in registration order.
//
func SaveLibrary(ctx context.Context, s Store, l *logsim.Library) error {
	for _, p := range l.Presets() {
		if err := s.Save(ctx, p.Data()); err != nil {
			return errors.Wrapf(err, "save %s", p.Name())
		}
	}
	return nil
}

// LoadLibrary loads all stored presets into l, in listing order, and returns
// the number of presets loaded. Presets already in l are skipped.
//
func LoadLibrary(ctx context.Context, s Store, l *logsim.Library) (int, error) {
	names, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	var data logsim.LibraryData
	for _, n := range names {
		if _, err := l.Get(n); err == nil {
			continue
		}
		p, err := s.Load(ctx, n)
		if err != nil {
			return 0, errors.Wrapf(err, "load %s", n)
		}
		data.Presets = append(data.Presets, p)
	}
	if err = l.Load(data); err != nil {
		return 0, err
	}
	return len(data.Presets), nil
}
