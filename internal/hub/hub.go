package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
)

const subscriberBuffer = 1024

// Hub broadcasts entries to all subscribers. Publish never blocks: an entry
// is dropped for any subscriber whose buffer is full.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan model.Entry]struct{}
	closed      bool
	dropped     atomic.Int64
	logger      *slog.Logger
}

// New creates an empty Hub. A nil logger uses [slog.Default].
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[chan model.Entry]struct{}),
		logger:      logger,
	}
}

// Subscribe returns a buffered channel that will receive published entries.
// Multiple consumers can subscribe; each gets a copy of every entry. The
// channel is closed by Unsubscribe or Close.
func (h *Hub) Subscribe() <-chan model.Entry {
	ch := make(chan model.Entry, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (h *Hub) Unsubscribe(sub <-chan model.Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		if ch == sub {
			delete(h.subscribers, ch)
			close(ch)
			return
		}
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns the total number of entries dropped due to slow consumers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Publish sends an entry to all subscribers.
// If a subscriber's channel is full, the entry is dropped for that subscriber.
func (h *Hub) Publish(entry model.Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- entry:
		default:
			n := h.dropped.Add(1)
			h.logger.Debug("hub: dropped entry for slow consumer", "dropped", n)
		}
	}
}

// Close closes all subscriber channels. Later subscriptions are closed
// immediately and Publish becomes a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
