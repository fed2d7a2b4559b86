package slot

import (
	"sync"

	"github.com/Iron-Ham/msgslot/internal/errors"
)

// ChannelInfo describes one channel without exposing its message.
type ChannelInfo struct {
	ID     uint32 `json:"id" yaml:"id"`
	Length int    `json:"length" yaml:"length"`
}

// Table is the channel collection of one slot instance. Channels are keyed by
// id; insertion order is kept only so teardown and statistics iterate
// deterministically.
type Table struct {
	instance    int
	maxChannels int // 0 means no limit

	mu       sync.Mutex
	channels map[uint32]*Channel
	order    []uint32
}

// Instance returns the slot instance this table belongs to.
func (t *Table) Instance() int {
	return t.instance
}

// FindOrCreate returns the channel with the given id, inserting an empty one
// if none exists. Every caller asking for the same id gets the same *Channel.
// The second result reports whether this call created the channel.
//
// It fails with ErrInvalidArgument for id 0 and ErrResourceExhausted when the
// table is at its channel limit; neither failure changes the table.
func (t *Table) FindOrCreate(id uint32) (*Channel, bool, error) {
	if id == NoChannel {
		return nil, false, errors.ErrInvalidArgument
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if ch, ok := t.channels[id]; ok {
		return ch, false, nil
	}
	if t.maxChannels > 0 && len(t.channels) >= t.maxChannels {
		return nil, false, errors.ErrResourceExhausted
	}

	if t.channels == nil {
		t.channels = make(map[uint32]*Channel)
	}
	ch := newChannel(id)
	t.channels[id] = ch
	t.order = append(t.order, id)
	return ch, true, nil
}

// Lookup returns the channel with the given id without creating it.
func (t *Table) Lookup(id uint32) (*Channel, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.channels[id]
	return ch, ok
}

// Len returns the number of channels in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.channels)
}

// Channels returns a snapshot of the table in insertion order.
func (t *Table) Channels() []ChannelInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	infos := make([]ChannelInfo, 0, len(t.order))
	for _, id := range t.order {
		infos = append(infos, ChannelInfo{ID: id, Length: t.channels[id].Len()})
	}
	return infos
}

// release drops every channel and returns how many there were.
func (t *Table) release() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.order)
	for _, id := range t.order {
		t.channels[id].clear()
	}
	t.channels = nil
	t.order = nil
	return n
}
