package live

import (
	"log/slog"
	"sync"
	"time"

	"github.com/resonet/ideastream/core"
)

// DefaultHeartbeatInterval is how long a subscriber may sit idle before
// it receives a keep-alive message.
const DefaultHeartbeatInterval = 30 * time.Second

// DefaultSubscriberBuffer is the per-subscriber queue depth. Publish
// never blocks: a subscriber that falls more than this many events
// behind starts losing the oldest pending deliveries.
const DefaultSubscriberBuffer = 64

// MessageKind discriminates hub messages.
type MessageKind int

const (
	// KindNewIdea carries a newly ingested idea event.
	KindNewIdea MessageKind = iota + 1
	// KindKeepAlive is a heartbeat marker for idle connections.
	KindKeepAlive
)

// Message is the typed unit of delivery to subscribers.
type Message struct {
	Kind  MessageKind
	Event *core.IdeaEvent // set when Kind == KindNewIdea
}

// Subscription is one subscriber's handle: it receives messages on C
// and is passed back to Unsubscribe when the consumer goes away.
type Subscription struct {
	C  <-chan Message
	id uint64
	ch chan Message
}

// Hub fans newly ingested idea events out to live subscribers.
//
// Each subscriber owns an independent buffered channel; a slow or
// stalled consumer only loses its own deliveries and never delays
// Publish or other subscribers. Events arrive at each subscriber in
// publish order; no ordering holds across subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]chan Message
	nextID uint64
	closed bool

	buffer    int
	heartbeat time.Duration
	done      chan struct{}
	logger    *slog.Logger
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHeartbeatInterval overrides the keep-alive interval.
func WithHeartbeatInterval(interval time.Duration) HubOption {
	return func(h *Hub) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithSubscriberBuffer overrides the per-subscriber queue depth.
func WithSubscriberBuffer(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.buffer = size
		}
	}
}

// WithHubLogger sets a custom logger. Default is slog.Default().
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHub creates a hub and starts its heartbeat. Callers must Close it.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:      make(map[uint64]chan Message),
		buffer:    DefaultSubscriberBuffer,
		heartbeat: DefaultHeartbeatInterval,
		done:      make(chan struct{}),
		logger:    slog.Default().With("component", "live-hub"),
	}
	for _, opt := range opts {
		opt(h)
	}

	go h.heartbeatLoop()
	return h
}

// Subscribe registers a new subscriber and returns its handle.
// Subscribers only see events published after they joined.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Message, h.buffer)
	if h.closed {
		// A closed hub hands out an already-closed channel so the
		// consumer's receive loop terminates immediately.
		close(ch)
		return &Subscription{C: ch, ch: ch}
	}

	h.nextID++
	id := h.nextID
	h.subs[id] = ch

	return &Subscription{C: ch, id: id, ch: ch}
}

// Unsubscribe removes a subscriber and closes its channel.
// Safe to call multiple times and after Close.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[sub.id]; ok {
		delete(h.subs, sub.id)
		close(ch)
	}
}

// Publish enqueues an event onto every currently registered subscriber.
// It never blocks: a subscriber whose queue is full loses this event.
func (h *Hub) Publish(event *core.IdeaEvent) {
	h.broadcast(Message{Kind: KindNewIdea, Event: event})
}

// SubscriberCount returns the number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close stops the heartbeat and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	close(h.done)

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for id, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			if msg.Kind == KindNewIdea {
				h.logger.Warn("dropping event for stalled subscriber", "subscriber", id)
			}
		}
	}
}

func (h *Hub) heartbeatLoop() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.broadcast(Message{Kind: KindKeepAlive})
		}
	}
}
