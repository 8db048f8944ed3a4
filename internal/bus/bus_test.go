package bus

import (
	"testing"

	"github.com/nextlevelbuilder/tgsampler/internal/sampling"
)

func event(chatID int64) *sampling.Event {
	return &sampling.Event{Kind: sampling.KindText, UserID: 1, ChatID: chatID}
}

func TestMessageBus_PublishConsume(t *testing.T) {
	b := NewMessageBus()

	b.PublishInbound(InboundEvent{Channel: "telegram", Event: event(-100)})
	b.PublishInbound(InboundEvent{Channel: "telegram", Event: event(-200)})

	ev, ok := b.ConsumeInbound()
	if !ok {
		t.Fatal("ConsumeInbound() ok = false")
	}
	if ev.Event.ChatID != -100 {
		t.Errorf("first event chat = %d, want -100 (FIFO)", ev.Event.ChatID)
	}

	ev, _ = b.ConsumeInbound()
	if ev.Event.ChatID != -200 {
		t.Errorf("second event chat = %d, want -200", ev.Event.ChatID)
	}
}

func TestMessageBus_FullBufferDrops(t *testing.T) {
	b := NewMessageBus()

	// One past capacity: the overflow event must be dropped, not block.
	for i := 0; i <= inboundBuffer; i++ {
		b.PublishInbound(InboundEvent{Channel: "telegram", Event: event(int64(i))})
	}

	count := 0
	for {
		ev, ok := b.ConsumeInbound()
		if !ok {
			break
		}
		if ev.Event.ChatID == int64(inboundBuffer) {
			t.Error("overflow event was enqueued, want dropped")
		}
		count++
		if count == inboundBuffer {
			break
		}
	}
	if count != inboundBuffer {
		t.Errorf("consumed %d events, want %d", count, inboundBuffer)
	}
}

func TestMessageBus_CloseDrains(t *testing.T) {
	b := NewMessageBus()
	b.PublishInbound(InboundEvent{Channel: "telegram", Event: event(-1)})
	b.Close()

	if _, ok := b.ConsumeInbound(); !ok {
		t.Error("ConsumeInbound() ok = false with a pending event after Close")
	}
	if _, ok := b.ConsumeInbound(); ok {
		t.Error("ConsumeInbound() ok = true on a drained closed bus")
	}
}
