// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Errors returned by Scene, Preset and Library operations. Returned errors
// usually wrap one of these with some context; use errors.Is to test for
// them.
//
var (
	ErrUnknownDevice       = errors.New("unknown device")
	ErrUnknownLink         = errors.New("unknown link")
	ErrUnknownPin          = errors.New("unknown pin")
	ErrDeviceKind          = errors.New("operation not supported by device kind")
	ErrInvalidPinDirection = errors.New("invalid pin direction")
	ErrFanInConflict       = errors.New("input pin already connected")
	ErrBoundaryShort       = errors.New("scene input connected to scene output")
	ErrCycleDetected       = errors.New("cycle detected")
	ErrPresetInUse         = errors.New("preset in use")
	ErrUnknownPreset       = errors.New("unknown preset")
	ErrDuplicatePreset     = errors.New("duplicate preset name")
	ErrPresetDeleted       = errors.New("preset deleted")
	ErrInternal            = errors.New("internal consistency failure")
)

// A CycleError reports a feedback loop between devices. Path lists the
// devices of the loop in link order, starting with the first device of the
// loop reached during traversal. The last device in Path drives the first.
//
type CycleError struct {
	Path []DeviceID
}

func (e *CycleError) Error() string {
	var b strings.Builder
	b.WriteString(ErrCycleDetected.Error())
	if len(e.Path) > 0 {
		b.WriteString(": ")
		for _, id := range e.Path {
			b.WriteString(id.String())
			b.WriteString(" -> ")
		}
		b.WriteString(e.Path[0].String())
	}
	return b.String()
}

// Unwrap returns ErrCycleDetected.
//
func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// An InternalError is returned when the simulator finds a graph in a state
// that no sequence of valid operations can produce. It always denotes a bug.
//
type InternalError struct {
	Msg string
	Err error
}

func internalf(cause error, format string, args ...interface{}) error {
	return errors.WithStack(&InternalError{Msg: fmt.Sprintf(format, args...), Err: cause})
}

func (e *InternalError) Error() string {
	s := ErrInternal.Error() + ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns ErrInternal.
//
func (e *InternalError) Unwrap() error { return ErrInternal }

// A FaultError lists chip devices that could not be evaluated because their
// preset was revoked from its library. These chips drive Low on all their
// outputs until removed.
//
type FaultError struct {
	Devices []DeviceID
}

func (e *FaultError) Error() string {
	ids := make([]string, len(e.Devices))
	for i, id := range e.Devices {
		ids[i] = id.String()
	}
	return ErrPresetDeleted.Error() + ": chip devices " + strings.Join(ids, ", ")
}

// Unwrap returns ErrPresetDeleted.
//
func (e *FaultError) Unwrap() error { return ErrPresetDeleted }
