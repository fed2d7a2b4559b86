// Package event provides a pub-sub event bus for observing a msgslot device.
//
// The slot core publishes events when handles open and close, when a select
// creates a channel, and when a message is written. Publishing is optional: a
// device without a bus publishes nothing. The server subscribes a debug logger
// to every event so that device activity shows up in the log without the core
// depending on a particular logging setup.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Types
//
//   - [HandleOpenedEvent] ("slot.opened"): a handle was opened on an instance
//   - [HandleClosedEvent] ("slot.closed"): a handle was closed
//   - [OpenRefusedEvent] ("open.refused"): the admission policy refused an open
//   - [ChannelCreatedEvent] ("channel.created"): a select created a new channel
//   - [MessageWrittenEvent] ("message.written"): a write replaced a channel's message
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called synchronously
// on the publishing goroutine and are protected against panics.
//
// # Basic Usage
//
//	bus := event.NewBus()
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("event %s at %v", e.EventType(), e.Timestamp())
//	})
//	dev := slot.NewDevice(slot.WithBus(bus))
package event
