package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/manaforge/internal/decks"
	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
)

// Row is one card of the deck joined with its catalog data.
type Row struct {
	CardID       int    `json:"card_id"`
	Name         string `json:"name"`
	ImgURL       string `json:"img_url"`
	Qty          int    `json:"qty"`
	CanIncrement bool   `json:"can_increment"`
	CanDecrement bool   `json:"can_decrement"`
}

// DetailState is a full rendering of one deck.
type DetailState struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Cover         string `json:"cover"`
	Rows          []Row  `json:"rows"`
	TotalCards    int    `json:"total_cards"`
	PendingRemove *int   `json:"pending_remove,omitempty"`
}

// DeckDetail manages quantity changes for one deck. Removal takes two
// steps: RequestRemove marks a single pending card, ConfirmRemove deletes
// it. Every mutation ends with a fresh Render.
type DeckDetail struct {
	deckID int
	store  DeckStore
	cards  CardSource
	log    logger.Logger

	mu         sync.Mutex
	pending    int
	hasPending bool
}

func NewDeckDetail(deckID int, store DeckStore, cards CardSource, log logger.Logger) *DeckDetail {
	if log == nil {
		log = logger.NewNop()
	}
	return &DeckDetail{deckID: deckID, store: store, cards: cards, log: log}
}

func (dd *DeckDetail) DeckID() int { return dd.deckID }

// Render re-reads the deck and the catalog. Entries whose card is not in
// the catalog are left out.
func (dd *DeckDetail) Render(ctx context.Context) (DetailState, error) {
	deck, ok := dd.store.GetByID(ctx, dd.deckID)
	if !ok {
		return DetailState{}, fmt.Errorf("%w: deck %d", domain.ErrNotFound, dd.deckID)
	}

	cards, err := dd.cards.Cards(ctx)
	if err != nil {
		dd.log.Warn("catalog unavailable, rendering deck without rows",
			logger.Int("deck_id", dd.deckID),
			logger.Error(err))
	}
	byID := make(map[int]domain.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	maxCopies := dd.store.MaxCopies()
	state := DetailState{
		ID:         deck.ID,
		Name:       deck.Name,
		Type:       deck.Type,
		Cover:      deck.Cover,
		Rows:       make([]Row, 0, len(deck.CardEntries)),
		TotalCards: deck.TotalCards(),
	}
	for _, entry := range deck.CardEntries {
		card, ok := byID[entry.CardID]
		if !ok {
			continue
		}
		state.Rows = append(state.Rows, Row{
			CardID:       card.ID,
			Name:         card.Name,
			ImgURL:       card.ImgURL,
			Qty:          entry.Qty,
			CanIncrement: canIncrement(entry.Qty, maxCopies),
			CanDecrement: entry.Qty > 1,
		})
	}

	if pending, ok := dd.Pending(); ok {
		state.PendingRemove = &pending
	}
	return state, nil
}

// Increment adds one copy. Rejected when the card is at the cap.
func (dd *DeckDetail) Increment(ctx context.Context, cardID int) (DetailState, error) {
	entry, err := dd.entry(ctx, cardID)
	if err != nil {
		return DetailState{}, err
	}
	if !canIncrement(entry.Qty, dd.store.MaxCopies()) {
		return DetailState{}, fmt.Errorf("%w: card %d already has %d copies", domain.ErrValidation, cardID, entry.Qty)
	}
	if _, err := dd.store.AddCard(ctx, dd.deckID, cardID, 1); err != nil {
		return DetailState{}, err
	}
	return dd.Render(ctx)
}

// Decrement removes one copy. Rejected at a single copy; use the remove
// flow to drop the card.
func (dd *DeckDetail) Decrement(ctx context.Context, cardID int) (DetailState, error) {
	entry, err := dd.entry(ctx, cardID)
	if err != nil {
		return DetailState{}, err
	}
	if entry.Qty <= 1 {
		return DetailState{}, fmt.Errorf("%w: card %d has a single copy", domain.ErrValidation, cardID)
	}
	if _, err := dd.store.RemoveCard(ctx, dd.deckID, cardID, 1); err != nil {
		return DetailState{}, err
	}
	return dd.Render(ctx)
}

// RequestRemove marks cardID for removal, replacing any earlier request.
func (dd *DeckDetail) RequestRemove(cardID int) {
	dd.mu.Lock()
	dd.pending = cardID
	dd.hasPending = true
	dd.mu.Unlock()
}

// CancelRemove clears the pending removal without touching the deck.
func (dd *DeckDetail) CancelRemove() {
	dd.mu.Lock()
	dd.pending = 0
	dd.hasPending = false
	dd.mu.Unlock()
}

// Pending returns the card awaiting confirmation, if any.
func (dd *DeckDetail) Pending() (int, bool) {
	dd.mu.Lock()
	defer dd.mu.Unlock()
	return dd.pending, dd.hasPending
}

// ConfirmRemove deletes the pending card entirely and clears the marker.
func (dd *DeckDetail) ConfirmRemove(ctx context.Context) (DetailState, error) {
	dd.mu.Lock()
	cardID, ok := dd.pending, dd.hasPending
	dd.pending = 0
	dd.hasPending = false
	dd.mu.Unlock()

	if !ok {
		return DetailState{}, fmt.Errorf("%w: no removal pending", domain.ErrValidation)
	}
	if _, err := dd.store.RemoveCard(ctx, dd.deckID, cardID, decks.RemoveAll); err != nil {
		return DetailState{}, err
	}
	return dd.Render(ctx)
}

// Delete removes the whole deck. The caller is responsible for asking
// the user first.
func (dd *DeckDetail) Delete(ctx context.Context) error {
	ok, err := dd.store.DeleteDeck(ctx, dd.deckID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: deck %d", domain.ErrNotFound, dd.deckID)
	}
	dd.CancelRemove()
	return nil
}

func (dd *DeckDetail) entry(ctx context.Context, cardID int) (domain.CardEntry, error) {
	deck, ok := dd.store.GetByID(ctx, dd.deckID)
	if !ok {
		return domain.CardEntry{}, fmt.Errorf("%w: deck %d", domain.ErrNotFound, dd.deckID)
	}
	entry, ok := deck.Entry(cardID)
	if !ok {
		return domain.CardEntry{}, fmt.Errorf("%w: card %d in deck %d", domain.ErrNotFound, cardID, dd.deckID)
	}
	return entry, nil
}

// DetailRegistry keeps one DeckDetail per deck so pending removals
// survive between requests.
type DetailRegistry struct {
	store DeckStore
	cards CardSource
	log   logger.Logger

	mu      sync.Mutex
	details map[int]*DeckDetail
}

func NewDetailRegistry(store DeckStore, cards CardSource, log logger.Logger) *DetailRegistry {
	r := &DetailRegistry{
		store:   store,
		cards:   cards,
		log:     log,
		details: make(map[int]*DeckDetail),
	}
	store.OnChange(r.prune)
	return r
}

// Get returns the detail view of deckID, or ErrNotFound.
func (r *DetailRegistry) Get(ctx context.Context, deckID int) (*DeckDetail, error) {
	if _, ok := r.store.GetByID(ctx, deckID); !ok {
		return nil, fmt.Errorf("%w: deck %d", domain.ErrNotFound, deckID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if dd, ok := r.details[deckID]; ok {
		return dd, nil
	}
	dd := NewDeckDetail(deckID, r.store, r.cards, r.log)
	r.details[deckID] = dd
	return dd, nil
}

// Resolve finds a deck by id, falling back to name when no id is given.
func (r *DetailRegistry) Resolve(ctx context.Context, rawID, name string) (*DeckDetail, error) {
	rawID = strings.TrimSpace(rawID)
	if rawID != "" {
		id, err := decks.ParseID(rawID)
		if err != nil {
			return nil, err
		}
		return r.Get(ctx, id)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: deck id or name is required", domain.ErrValidation)
	}
	deck, ok := r.store.FindByName(ctx, name)
	if !ok {
		return nil, fmt.Errorf("%w: deck %q", domain.ErrNotFound, strings.TrimSpace(name))
	}
	return r.Get(ctx, deck.ID)
}

// Len is the number of live detail views.
func (r *DetailRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.details)
}

// prune drops views of decks that no longer exist.
func (r *DetailRegistry) prune(current []domain.Deck) {
	alive := make(map[int]bool, len(current))
	for _, d := range current {
		alive[d.ID] = true
	}
	r.mu.Lock()
	for id := range r.details {
		if !alive[id] {
			delete(r.details, id)
		}
	}
	r.mu.Unlock()
}
