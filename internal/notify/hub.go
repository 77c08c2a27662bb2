package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
	"github.com/google/uuid"
)

const defaultBufferSize = 16

// Event is one relayed notification.
type Event struct {
	ID        string        `json:"id"`
	Name      string        `json:"event"`
	Timestamp time.Time     `json:"timestamp"`
	Decks     []domain.Deck `json:"decks"`
}

// Hub fans notifications out to per-client buffered channels. A client
// whose buffer is full misses the event; the store is never blocked.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      int64
	bufferSize  int
	dropped     atomic.Int64
	published   atomic.Int64
	watchers    sync.WaitGroup // one per subscription until it ends
	log         logger.Logger
}

func NewHub(bufferSize int, log logger.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		subscribers: make(map[int64]chan Event),
		bufferSize:  bufferSize,
		log:         log,
	}
}

// Attach relays every notification of n through the hub.
func (h *Hub) Attach(n *Notifier) {
	n.OnChange(h.Publish)
}

// Subscribe registers a client until ctx ends or the returned cleanup runs.
// The channel is never closed; readers select on their own context.
func (h *Hub) Subscribe(ctx context.Context) (<-chan Event, func()) {
	stream := make(chan Event, h.bufferSize)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subscribers[id] = stream
	h.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			h.mu.Unlock()
			close(done)
		})
	}
	h.watchers.Add(1)
	go func() {
		defer h.watchers.Done()
		select {
		case <-ctx.Done():
			cleanup()
		case <-done:
		}
	}()
	return stream, cleanup
}

// Publish wraps decks into an event and offers it to every client.
func (h *Hub) Publish(decks []domain.Deck) {
	event := Event{
		ID:        newEventID(),
		Name:      domain.EventDecksUpdated,
		Timestamp: time.Now().UTC(),
		Decks:     decks,
	}
	h.published.Add(1)

	h.mu.RLock()
	streams := make([]chan Event, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		streams = append(streams, s)
	}
	h.mu.RUnlock()

	for _, s := range streams {
		select {
		case s <- event:
		default:
			h.dropped.Add(1)
			h.log.Debug("realtime client lagging, event dropped", logger.String("event_id", event.ID))
		}
	}
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	Clients   int   `json:"clients"`
	Published int64 `json:"published"`
	Dropped   int64 `json:"dropped"`
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	clients := len(h.subscribers)
	h.mu.RUnlock()
	return Stats{Clients: clients, Published: h.published.Load(), Dropped: h.dropped.Load()}
}

// newEventID returns a time-ordered UUIDv7, or a random v4 if the clock
// source fails.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
