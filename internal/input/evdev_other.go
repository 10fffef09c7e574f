//go:build !linux

package input

import (
	"errors"
	"time"
)

type Device struct{}

func OpenDevice(path string, bindings Bindings) (*Device, error) {
	return nil, errors.ErrUnsupported
}

func (d *Device) Poll(st *State, now time.Time) Action {
	return None
}

func (d *Device) Close() error {
	return nil
}
