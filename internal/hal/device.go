package hal

import "sync/atomic"

// Device is an opaque handle binding one logical light to its setter.
// Handles are cheap; hosts typically open one per light at boot and close
// them on unload.
type Device struct {
	hal    *HAL
	kind   Kind
	closed atomic.Bool
}

// Kind returns the logical light this handle is bound to.
func (d *Device) Kind() Kind {
	return d.kind
}

// Set applies a state request to the bound light.
func (d *Device) Set(state State) error {
	if d.closed.Load() {
		return ErrClosed
	}
	return d.hal.set(d.kind, state)
}

// Close detaches the handle. It always succeeds and may be called more
// than once.
func (d *Device) Close() error {
	d.closed.Store(true)
	return nil
}
