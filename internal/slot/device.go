package slot

import (
	"sync/atomic"

	"github.com/Iron-Ham/msgslot/internal/errors"
	"github.com/Iron-Ham/msgslot/internal/event"
	"github.com/Iron-Ham/msgslot/internal/logging"
)

// DeviceStat is a point-in-time view of a device.
type DeviceStat struct {
	Name        string         `json:"name" yaml:"name"`
	Major       int            `json:"major" yaml:"major"`
	Policy      string         `json:"policy" yaml:"policy"`
	OpenHandles int            `json:"open_handles" yaml:"open_handles"`
	Channels    int            `json:"channels" yaml:"channels"`
	Instances   []InstanceStat `json:"instances" yaml:"instances"`
}

// Device is a message slot device: a registry of per-instance channel tables
// plus admission control for opening handles.
type Device struct {
	registry *Registry
	gate     gate
	bus      *event.Bus
	log      *logging.Logger

	maxChannels int
	nextHandle  atomic.Uint64
	closed      atomic.Bool
}

// NewDevice creates a device with empty tables for every instance.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		log:  logging.NopLogger(),
		gate: gate{policy: Unlimited{}},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.registry = NewRegistry(d.maxChannels)
	return d
}

// Open returns a new handle bound to instance with no channel selected.
// It fails with ErrInvalidArgument for an instance outside [0, MaxInstances),
// with ErrDeviceClosed after Close, and with whatever the admission policy
// refuses the open with.
func (d *Device) Open(instance int) (*Handle, error) {
	if d.closed.Load() {
		return nil, errors.NewSlotError("device is closed", errors.ErrDeviceClosed).WithOp("open").WithInstance(instance)
	}
	table, err := d.registry.Table(instance)
	if err != nil {
		return nil, errors.NewSlotError("instance out of range", err).WithOp("open")
	}

	open, err := d.gate.acquire()
	if err != nil {
		_, policy := d.gate.snapshot()
		d.log.WithInstance(instance).Warn("open refused", "policy", policy.Name(), "open_handles", open)
		d.publish(event.NewOpenRefusedEvent(instance, policy.Name()))
		return nil, errors.NewSlotError("open refused by "+policy.Name()+" policy", err).WithOp("open").WithInstance(instance)
	}

	h := &Handle{
		id:       d.nextHandle.Add(1),
		instance: instance,
		dev:      d,
		table:    table,
	}
	d.log.WithInstance(instance).WithHandle(h.id).Debug("handle opened", "open_handles", open)
	d.publish(event.NewHandleOpenedEvent(instance, open))
	return h, nil
}

func (d *Device) handleClosed(h *Handle, channel uint32) {
	d.gate.release()
	d.log.WithInstance(h.instance).WithHandle(h.id).Debug("handle closed", "channel", channel)
	d.publish(event.NewHandleClosedEvent(h.instance, channel))
}

// SetPolicy replaces the admission policy. Handles already open stay open.
func (d *Device) SetPolicy(p Policy) {
	if p == nil {
		p = Unlimited{}
	}
	d.gate.setPolicy(p)
	d.log.Info("admission policy changed", "policy", p.Name())
}

// Policy returns the current admission policy.
func (d *Device) Policy() Policy {
	_, p := d.gate.snapshot()
	return p
}

// OpenHandles returns the number of handles currently open.
func (d *Device) OpenHandles() int {
	open, _ := d.gate.snapshot()
	return open
}

// Registry exposes the device's channel storage.
func (d *Device) Registry() *Registry {
	return d.registry
}

// Stat returns a snapshot of the device.
func (d *Device) Stat() DeviceStat {
	open, policy := d.gate.snapshot()
	instances := d.registry.Stat()
	total := 0
	for _, in := range instances {
		total += len(in.Channels)
	}
	return DeviceStat{
		Name:        DeviceName,
		Major:       Major,
		Policy:      policy.Name(),
		OpenHandles: open,
		Channels:    total,
		Instances:   instances,
	}
}

// Closed reports whether Close has been called.
func (d *Device) Closed() bool {
	return d.closed.Load()
}

// Close tears the device down, releasing every channel. Handles still open
// fail with ErrDeviceClosed afterwards, including a write already past its
// state check when Close began. Calling Close again is a no-op.
func (d *Device) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	released := d.registry.Release()
	d.log.Info("device closed", "channels_released", released, "open_handles", d.OpenHandles())
	return nil
}

func (d *Device) publish(e event.Event) {
	if d.bus != nil {
		d.bus.Publish(e)
	}
}
