package slot

import (
	"sync"

	"github.com/Iron-Ham/msgslot/internal/errors"
	"github.com/Iron-Ham/msgslot/internal/event"
)

// Handle is one open session on a slot instance. It is created by
// Device.Open with no channel selected. The selected channel is a
// non-owning reference into the instance's table, which never deletes
// channels while the device is open.
type Handle struct {
	id       uint64
	instance int
	dev      *Device
	table    *Table

	mu       sync.Mutex
	activeID uint32
	active   *Channel
	closed   bool
}

// ID returns the device-unique handle id.
func (h *Handle) ID() uint64 {
	return h.id
}

// Instance returns the slot instance the handle was opened on.
func (h *Handle) Instance() int {
	return h.instance
}

// ChannelID returns the selected channel id, or NoChannel.
func (h *Handle) ChannelID() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.activeID
}

// Select makes channel id the target of subsequent reads and writes, creating
// the channel if no handle has selected it before. On failure the previous
// selection is kept.
func (h *Handle) Select(id uint32) error {
	h.mu.Lock()
	if err := h.usableLocked("select"); err != nil {
		h.mu.Unlock()
		return err
	}
	if id == NoChannel {
		h.mu.Unlock()
		return h.fail("select", id, "channel id 0 is reserved", errors.ErrInvalidArgument)
	}

	ch, created, err := h.table.FindOrCreate(id)
	if err != nil {
		h.mu.Unlock()
		return h.fail("select", id, "cannot create channel", err)
	}
	h.activeID = id
	h.active = ch
	h.mu.Unlock()

	if created {
		h.dev.log.WithInstance(h.instance).WithChannel(id).Debug("channel created", "handle", h.id)
		h.dev.publish(event.NewChannelCreatedEvent(h.instance, id))
	}
	return nil
}

// Write replaces the selected channel's message with p. It accepts 1 to
// MaxMessageLen bytes and always returns len(p) on success.
func (h *Handle) Write(p []byte) (int, error) {
	h.mu.Lock()
	if err := h.usableLocked("write"); err != nil {
		h.mu.Unlock()
		return 0, err
	}
	ch, id := h.active, h.activeID
	h.mu.Unlock()

	if ch == nil {
		return 0, h.fail("write", NoChannel, "no channel selected", errors.ErrInvalidState)
	}
	switch {
	case len(p) == 0:
		return 0, h.fail("write", id, "zero-length write", errors.ErrEmptyMessage)
	case len(p) > MaxMessageLen:
		return 0, h.fail("write", id, "write exceeds maximum message length", errors.ErrMessageTooLarge)
	}

	// The device may have closed since the check above
	if !ch.store(p) {
		return 0, h.fail("write", id, "device is closed", errors.ErrDeviceClosed)
	}
	h.dev.publish(event.NewMessageWrittenEvent(h.instance, id, len(p)))
	return len(p), nil
}

// Read copies the selected channel's whole message into p and returns its
// length. The capacity of the read is len(p); a buffer shorter than the
// message fails with ErrInsufficientSpace and transfers nothing.
func (h *Handle) Read(p []byte) (int, error) {
	h.mu.Lock()
	if err := h.usableLocked("read"); err != nil {
		h.mu.Unlock()
		return 0, err
	}
	ch, id := h.active, h.activeID
	h.mu.Unlock()

	if ch == nil {
		return 0, h.fail("read", NoChannel, "no channel selected", errors.ErrInvalidState)
	}

	n, err := ch.load(p)
	if err != nil {
		return 0, h.fail("read", id, "read rejected", err)
	}
	return n, nil
}

// ReadMessage reads the selected channel's message with a buffer of the given
// capacity and returns exactly the message bytes.
func (h *Handle) ReadMessage(capacity int) ([]byte, error) {
	if capacity < 0 {
		capacity = 0
	}
	buf := make([]byte, min(capacity, MaxMessageLen))
	n, err := h.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Close discards the handle. The channel table is not touched. Closing an
// already closed handle is a no-op.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	channel := h.activeID
	h.active = nil
	h.mu.Unlock()

	h.dev.handleClosed(h, channel)
	return nil
}

func (h *Handle) usableLocked(op string) error {
	if h.closed {
		return h.fail(op, h.activeID, "handle is closed", errors.ErrHandleClosed)
	}
	if h.dev.closed.Load() {
		return h.fail(op, h.activeID, "device is closed", errors.ErrDeviceClosed)
	}
	return nil
}

func (h *Handle) fail(op string, channel uint32, msg string, cause error) error {
	return errors.NewSlotError(msg, cause).
		WithOp(op).
		WithInstance(h.instance).
		WithChannel(channel)
}
