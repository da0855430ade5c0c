package stream

import (
	"context"
	"sync"

	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
	"github.com/Hiuhuedd/migingo-backend/pkg/metrics"
)

const subscriberBuffer = 8

// Hub is a topic-keyed publish/subscribe registry for server-sent event
// streams. Subscribers hold a channel for the lifetime of their connection
// and must call the returned unsubscribe function when it ends.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan []byte]struct{}
	metrics     *metrics.Metrics
	logger      *logging.Logger
}

// NewHub creates a new Hub
func NewHub(m *metrics.Metrics, logger *logging.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan []byte]struct{}),
		metrics:     m,
		logger:      logger,
	}
}

// Subscribe registers a subscriber on a topic. The returned channel receives
// every payload published to the topic until unsubscribe is called; slow
// subscribers drop payloads rather than block publishers.
func (h *Hub) Subscribe(topic string) (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan []byte]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}
	count := len(h.subscribers[topic])
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetStreamSubscribers(topic, count)
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers[topic], ch)
			remaining := len(h.subscribers[topic])
			h.mu.Unlock()
			close(ch)
			if h.metrics != nil {
				h.metrics.SetStreamSubscribers(topic, remaining)
			}
		})
	}

	return ch, unsubscribe
}

// Publish delivers a payload to every subscriber on a topic
func (h *Hub) Publish(ctx context.Context, topic string, payload []byte) {
	h.mu.RLock()
	subs := make([]chan []byte, 0, len(h.subscribers[topic]))
	for ch := range h.subscribers[topic] {
		subs = append(subs, ch)
	}
	h.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- payload:
		default:
		}
	}

	if h.metrics != nil {
		h.metrics.RecordStreamBroadcast(topic)
	}
	if h.logger != nil {
		h.logger.StreamBroadcast(ctx, topic, len(subs))
	}
}

// SubscriberCount returns the number of active subscribers on a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}
