package bridge

import (
	"context"
	"sync"
)

// QueueHost buffers outbound envelopes for a polling WebView host. The
// native side drains the queue and posts replies back through the bridge
// message endpoint.
type QueueHost struct {
	mu    sync.Mutex
	queue []Envelope
	limit int
}

// NewQueueHost constructs a QueueHost holding at most limit envelopes.
func NewQueueHost(limit int) *QueueHost {
	if limit <= 0 {
		limit = 256
	}
	return &QueueHost{limit: limit}
}

// Post enqueues an envelope, dropping the oldest when full.
func (h *QueueHost) Post(_ context.Context, env Envelope) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) >= h.limit {
		h.queue = h.queue[1:]
	}
	h.queue = append(h.queue, env)
	return nil
}

// Drain returns and clears all queued envelopes.
func (h *QueueHost) Drain() []Envelope {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.queue
	h.queue = nil
	if out == nil {
		out = []Envelope{}
	}
	return out
}
