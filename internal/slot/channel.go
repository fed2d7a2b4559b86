package slot

import (
	"sync"

	"github.com/Iron-Ham/msgslot/internal/errors"
)

const (
	// MaxMessageLen is the largest message a channel holds, in bytes.
	MaxMessageLen = 128

	// MaxInstances is the number of slot instances a device exposes.
	MaxInstances = 256

	// NoChannel is the reserved channel id meaning "nothing selected".
	NoChannel uint32 = 0

	// DeviceName is the name the device registers under.
	DeviceName = "message_slot"

	// Major is the device major number.
	Major = 235
)

// Channel is a single-message mailbox. It is owned by its Table and never
// copied out of it.
type Channel struct {
	id uint32

	mu       sync.RWMutex
	buf      [MaxMessageLen]byte
	n        int  // 0 until the first write
	released bool // set at device teardown; no message is kept after it
}

func newChannel(id uint32) *Channel {
	return &Channel{id: id}
}

// ID returns the channel identifier.
func (c *Channel) ID() uint32 {
	return c.id
}

// Len returns the length of the current message, 0 if none was written.
func (c *Channel) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.n
}

// store replaces the message and reports whether it was kept. A released
// channel accepts nothing. The caller has checked 1 <= len(p) <= MaxMessageLen.
func (c *Channel) store(p []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return false
	}
	copy(c.buf[:], p)
	c.n = len(p)
	return true
}

// load copies the whole message into p.
func (c *Channel) load(p []byte) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.released:
		return 0, errors.ErrDeviceClosed
	case c.n == 0:
		return 0, errors.ErrNoData
	case len(p) < c.n:
		return 0, errors.ErrInsufficientSpace
	}
	return copy(p, c.buf[:c.n]), nil
}

// clear drops the message for good. Used only at device teardown.
func (c *Channel) clear() {
	c.mu.Lock()
	c.n = 0
	c.released = true
	c.mu.Unlock()
}
