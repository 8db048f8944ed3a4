// Package bus decouples transport channels from the dispatch loop with a
// buffered in-process queue.
package bus

import (
	"log/slog"

	"github.com/nextlevelbuilder/tgsampler/internal/sampling"
)

const inboundBuffer = 256

// InboundEvent is one canonical event tagged with its source channel.
type InboundEvent struct {
	Channel string
	Event   *sampling.Event
}

// MessageBus carries inbound events from channels to the dispatcher.
type MessageBus struct {
	inbound chan InboundEvent
}

// NewMessageBus creates a bus with a fixed-size inbound buffer.
func NewMessageBus() *MessageBus {
	return &MessageBus{
		inbound: make(chan InboundEvent, inboundBuffer),
	}
}

// PublishInbound enqueues an event without blocking. When the buffer is
// full the event is dropped; a stalled consumer must not back up into
// the long-polling loop.
func (b *MessageBus) PublishInbound(ev InboundEvent) {
	select {
	case b.inbound <- ev:
	default:
		slog.Warn("inbound buffer full, dropping event",
			"channel", ev.Channel,
			"chat_id", ev.Event.ChatID,
			"kind", ev.Event.Kind)
	}
}

// ConsumeInbound blocks for the next event. ok is false once Close has
// drained the queue.
func (b *MessageBus) ConsumeInbound() (InboundEvent, bool) {
	ev, ok := <-b.inbound
	return ev, ok
}

// Close stops accepting events. Pending events remain consumable.
func (b *MessageBus) Close() {
	close(b.inbound)
}
