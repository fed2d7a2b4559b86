package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "slot.opened", "channel.created")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeHandleOpened   = "slot.opened"
	TypeHandleClosed   = "slot.closed"
	TypeOpenRefused    = "open.refused"
	TypeChannelCreated = "channel.created"
	TypeMessageWritten = "message.written"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// HandleOpenedEvent is emitted when a handle is opened on a slot instance.
type HandleOpenedEvent struct {
	baseEvent
	Instance int
	Open     int // handles open on the device after this one
}

// NewHandleOpenedEvent creates a HandleOpenedEvent.
func NewHandleOpenedEvent(instance, open int) HandleOpenedEvent {
	return HandleOpenedEvent{
		baseEvent: newBaseEvent(TypeHandleOpened),
		Instance:  instance,
		Open:      open,
	}
}

// HandleClosedEvent is emitted when a handle is closed.
type HandleClosedEvent struct {
	baseEvent
	Instance int
	Channel  uint32 // last selected channel, 0 if none
}

// NewHandleClosedEvent creates a HandleClosedEvent.
func NewHandleClosedEvent(instance int, channel uint32) HandleClosedEvent {
	return HandleClosedEvent{
		baseEvent: newBaseEvent(TypeHandleClosed),
		Instance:  instance,
		Channel:   channel,
	}
}

// OpenRefusedEvent is emitted when the admission policy refuses an open.
type OpenRefusedEvent struct {
	baseEvent
	Instance int
	Policy   string
}

// NewOpenRefusedEvent creates an OpenRefusedEvent.
func NewOpenRefusedEvent(instance int, policy string) OpenRefusedEvent {
	return OpenRefusedEvent{
		baseEvent: newBaseEvent(TypeOpenRefused),
		Instance:  instance,
		Policy:    policy,
	}
}

// ChannelCreatedEvent is emitted the first time any handle selects a channel id.
type ChannelCreatedEvent struct {
	baseEvent
	Instance int
	Channel  uint32
}

// NewChannelCreatedEvent creates a ChannelCreatedEvent.
func NewChannelCreatedEvent(instance int, channel uint32) ChannelCreatedEvent {
	return ChannelCreatedEvent{
		baseEvent: newBaseEvent(TypeChannelCreated),
		Instance:  instance,
		Channel:   channel,
	}
}

// MessageWrittenEvent is emitted after a write replaces a channel's message.
// The message body is not included.
type MessageWrittenEvent struct {
	baseEvent
	Instance int
	Channel  uint32
	Length   int
}

// NewMessageWrittenEvent creates a MessageWrittenEvent.
func NewMessageWrittenEvent(instance int, channel uint32, length int) MessageWrittenEvent {
	return MessageWrittenEvent{
		baseEvent: newBaseEvent(TypeMessageWritten),
		Instance:  instance,
		Channel:   channel,
		Length:    length,
	}
}
