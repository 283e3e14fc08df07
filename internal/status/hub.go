package status

import (
	"sync"

	"github.com/keyward/keyward/internal/gate"
)

// subscriberBuffer is the per-subscriber queue. A tail UI reads far
// faster than tokens are presented; the buffer only matters while a
// client is busy reconnecting its terminal.
const subscriberBuffer = 32

// Hub fans access decisions out to feed subscribers. It satisfies
// gate.Sink.
type Hub struct {
	mu   sync.Mutex
	subs map[chan gate.Decision]struct{}
}

// NewHub returns a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan gate.Decision]struct{})}
}

// Publish delivers d to every subscriber. A subscriber with a full
// queue is skipped; the watch loop is never held up by a slow client.
func (h *Hub) Publish(d gate.Decision) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- d:
		default:
		}
	}
}

// Subscribe registers a feed consumer and returns its channel along
// with a cancel function. Cancelling removes the subscription and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan gate.Decision, func()) {
	ch := make(chan gate.Decision, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Subscribers returns the number of connected feed consumers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
