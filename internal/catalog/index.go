package catalog

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
)

// Index is the in-memory copy of the last catalog fetched. Card order is
// the order served by the source.
type Index struct {
	mu         sync.RWMutex
	cards      []domain.Card
	byID       map[int]int // card id -> position in cards
	lastReload time.Time
}

func NewIndex() *Index {
	return &Index{byID: make(map[int]int)}
}

// Update replaces the whole catalog.
func (idx *Index) Update(cards []domain.Card) {
	next := make([]domain.Card, len(cards))
	copy(next, cards)
	byID := make(map[int]int, len(next))
	for i, c := range next {
		if _, dup := byID[c.ID]; !dup {
			byID[c.ID] = i
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.cards = next
	idx.byID = byID
	idx.lastReload = time.Now()
}

func (idx *Index) Get(id int) (domain.Card, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	i, ok := idx.byID[id]
	if !ok {
		return domain.Card{}, false
	}
	return idx.cards[i], true
}

// All returns a copy of every card.
func (idx *Index) All() []domain.Card {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]domain.Card, len(idx.cards))
	copy(out, idx.cards)
	return out
}

func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.cards)
}

// LastReload is zero until the first Update.
func (idx *Index) LastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.lastReload
}

// Loaded reports whether the index was ever filled, even with nothing.
func (idx *Index) Loaded() bool {
	return !idx.LastReload().IsZero()
}
