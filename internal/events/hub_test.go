package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()

	_, ch1, cancel1 := h.Subscribe()
	defer cancel1()
	_, ch2, cancel2 := h.Subscribe()
	defer cancel2()
	assert.Equal(t, 2, h.Len())

	ev := Event{Name: "chat message", Data: json.RawMessage(`{"text":"hi","sender":"user"}`)}
	h.Publish(ev)

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, ev, got)
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	h := NewHub()

	_, ch, cancel := h.Subscribe()
	cancel()
	assert.Equal(t, 0, h.Len())

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic, and cancel is idempotent.
	h.Publish(Event{Name: "analysis result"})
	cancel()
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub()

	_, slow, cancelSlow := h.Subscribe()
	defer cancelSlow()
	_, live, cancelLive := h.Subscribe()
	defer cancelLive()

	// Publish well past the buffer without draining the slow subscriber.
	for i := 0; i < 40; i++ {
		h.Publish(Event{Name: "chat message"})
		// Keep the healthy subscriber drained.
		<-live
	}

	received := 0
	for {
		select {
		case <-slow:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, cap(slow), received)
	require.Less(t, received, 40)
}
