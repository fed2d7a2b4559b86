// Package slot implements a message slot device: up to 256 independent slot
// instances, each holding an open-ended set of channels, each channel holding
// exactly one message of at most 128 bytes.
//
// A client opens a slot instance to obtain a [Handle], selects a channel on it,
// and then writes or reads. A write replaces the channel's message; a read
// returns the whole message or fails. Any handle selecting the same channel on
// the same instance sees the same message.
//
// # Architecture
//
//	Device
//	  ├── Registry: [256]Table, one per instance
//	  │     └── Table: map[channel id]*Channel, insertion order kept for teardown
//	  │           └── Channel: message bytes + length under a per-channel lock
//	  └── gate: open-handle counter checked against the admission Policy
//
// Channels are created the first time any handle selects their id and live
// until the device is closed. Closing a handle never touches the table.
//
// # Main Types
//
//   - [Device]: the entry point; opens handles and reports statistics
//   - [Handle]: one open session bound to a single instance
//   - [Registry], [Table], [Channel]: the channel storage
//   - [Policy]: admission control applied to Open ([Unlimited], [Exclusive], [Bounded])
//
// # Basic Usage
//
//	dev := slot.NewDevice()
//	defer dev.Close()
//
//	h1, _ := dev.Open(5)
//	_ = h1.Select(7)
//	_, _ = h1.Write([]byte("hello"))
//
//	h2, _ := dev.Open(5)
//	_ = h2.Select(7)
//	buf := make([]byte, slot.MaxMessageLen)
//	n, _ := h2.Read(buf) // buf[:n] == "hello"
//
// # Errors
//
// Every failure wraps one of the sentinels in internal/errors
// (ErrInvalidArgument, ErrInvalidState, ErrNoData, ErrInsufficientSpace,
// ErrEmptyMessage, ErrMessageTooLarge, ErrResourceExhausted, ErrBusy) inside a
// *errors.SlotError. A failed operation changes nothing and the handle stays
// usable.
//
// # Thread Safety
//
// Device, Registry, Table and Channel are safe for concurrent use. Each table
// serializes find-or-create under its own mutex so racing selects of a new id
// yield one Channel. Each channel updates its bytes and length together, so a
// reader sees either the previous message or the new one in full. A Handle may
// be shared between goroutines: its selection is guarded by the handle's own
// lock and its reads and writes are ordered only by the channel lock, so a
// write racing a Select on the same handle may land on either channel.
package slot
