package slot

import (
	"github.com/Iron-Ham/msgslot/internal/event"
	"github.com/Iron-Ham/msgslot/internal/logging"
)

// Option configures a Device.
type Option func(*Device)

// WithBus attaches an event bus. Device activity is published to it.
func WithBus(bus *event.Bus) Option {
	return func(d *Device) {
		d.bus = bus
	}
}

// WithLogger sets the logger used for device activity.
func WithLogger(l *logging.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.log = l.WithComponent("device")
		}
	}
}

// WithPolicy sets the initial admission policy.
func WithPolicy(p Policy) Option {
	return func(d *Device) {
		if p != nil {
			d.gate.policy = p
		}
	}
}

// WithMaxChannels limits the number of channels per instance. Selecting a new
// channel beyond the limit fails with ErrResourceExhausted. Zero means no limit.
func WithMaxChannels(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.maxChannels = n
		}
	}
}
