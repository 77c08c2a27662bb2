// Package notify broadcasts deck collection changes to in-process
// observers and relays them to streaming HTTP clients.
package notify

import (
	"sync"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
)

// Handler receives the freshly persisted collection. Each handler gets
// its own copy and must not call back into store mutators.
type Handler func(decks []domain.Deck)

// Notifier is a synchronous observer list. Handlers run in subscription
// order on the goroutine that calls Notify.
type Notifier struct {
	mu       sync.RWMutex
	handlers []Handler
}

func New() *Notifier {
	return &Notifier{}
}

// OnChange registers h for every later notification. There is no
// unsubscribe; observers live as long as the notifier.
func (n *Notifier) OnChange(h Handler) {
	if h == nil {
		return
	}
	n.mu.Lock()
	n.handlers = append(n.handlers, h)
	n.mu.Unlock()
}

// Notify delivers decks to every registered handler.
func (n *Notifier) Notify(decks []domain.Deck) {
	n.mu.RLock()
	handlers := make([]Handler, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.RUnlock()

	for _, h := range handlers {
		h(domain.CloneDecks(decks))
	}
}

// Subscribers reports how many handlers are registered.
func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.handlers)
}
