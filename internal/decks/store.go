// Package decks owns the persisted deck collection. Every mutation is a
// read-modify-write of the whole collection in a single persistence slot,
// followed by a change notification when something actually changed.
package decks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
	"github.com/MrSnakeDoc/manaforge/internal/notify"
	"github.com/MrSnakeDoc/manaforge/internal/store"
)

// RemoveAll passed as qty to RemoveCard deletes the entry outright.
// Any non-positive quantity has the same effect.
const RemoveAll = 0

const (
	opList       = "decks.list"
	opCreate     = "decks.create"
	opAddCard    = "decks.add_card"
	opRemoveCard = "decks.remove_card"
	opDeleteDeck = "decks.delete"
)

// Store is the single writer of the deck slot.
type Store struct {
	slot      store.Slot
	notifier  *notify.Notifier
	log       logger.Logger
	maxCopies int

	// mu serializes writers; readers go straight to the slot.
	mu sync.Mutex
}

type Option func(*Store)

func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNotifier shares an existing notifier instead of a private one.
func WithNotifier(n *notify.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMaxCopies overrides the per-card cap. Zero disables it.
func WithMaxCopies(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.maxCopies = n
		}
	}
}

func New(slot store.Slot, opts ...Option) *Store {
	s := &Store{
		slot:      slot,
		notifier:  notify.New(),
		log:       logger.NewNop(),
		maxCopies: domain.MaxCopies,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers h with the store's notifier.
func (s *Store) OnChange(h notify.Handler) {
	s.notifier.OnChange(h)
}

func (s *Store) Notifier() *notify.Notifier { return s.notifier }

// MaxCopies is the effective per-card cap, zero when uncapped.
func (s *Store) MaxCopies() int { return s.maxCopies }

// Ping checks the slot backend when it supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.slot.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// List returns every deck in storage order. A missing or unreadable slot
// yields an empty collection.
func (s *Store) List(ctx context.Context) []domain.Deck {
	decks, err := s.load(ctx)
	if err != nil {
		s.logError(opList, "slot_unavailable", err)
		return []domain.Deck{}
	}
	return decks
}

// GetByID returns the deck with id. Absence is not an error.
func (s *Store) GetByID(ctx context.Context, id int) (domain.Deck, bool) {
	for _, d := range s.List(ctx) {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Deck{}, false
}

// FindByName returns the first deck whose trimmed name equals name.
func (s *Store) FindByName(ctx context.Context, name string) (domain.Deck, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Deck{}, false
	}
	for _, d := range s.List(ctx) {
		if strings.TrimSpace(d.Name) == name {
			return d, true
		}
	}
	return domain.Deck{}, false
}

// Create appends a new empty deck with id max(existing)+1.
func (s *Store) Create(ctx context.Context, name, deckType, cover string) (domain.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Deck{}, fmt.Errorf("%w: deck name is required", domain.ErrValidation)
	}
	deckType = strings.TrimSpace(deckType)
	if deckType == "" {
		deckType = domain.DefaultDeckType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.load(ctx)
	if err != nil {
		s.logError(opCreate, "slot_unavailable", err)
		return domain.Deck{}, err
	}

	deck := domain.Deck{
		ID:          domain.NextDeckID(decks),
		Name:        name,
		Type:        deckType,
		Cover:       strings.TrimSpace(cover),
		CardEntries: []domain.CardEntry{},
	}
	decks = append(decks, deck)

	if err := s.commit(ctx, opCreate, decks); err != nil {
		return domain.Deck{}, err
	}
	return deck.Clone(), nil
}

// AddCard adds qty copies of cardID to the deck, creating the entry on
// first add. The resulting quantity is clamped to the cap; adding to an
// entry already at the cap changes nothing and notifies nobody.
func (s *Store) AddCard(ctx context.Context, deckID, cardID, qty int) (domain.CardEntry, error) {
	if qty < 1 {
		return domain.CardEntry{}, fmt.Errorf("%w: quantity must be at least 1, got %d", domain.ErrValidation, qty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.load(ctx)
	if err != nil {
		s.logError(opAddCard, "slot_unavailable", err)
		return domain.CardEntry{}, err
	}

	di := indexOfDeck(decks, deckID)
	if di < 0 {
		return domain.CardEntry{}, fmt.Errorf("%w: deck %d", domain.ErrNotFound, deckID)
	}
	deck := &decks[di]

	var entry domain.CardEntry
	if ei := deck.EntryIndex(cardID); ei >= 0 {
		current := deck.CardEntries[ei]
		if s.atCap(current.Qty) {
			return current, nil
		}
		if s.maxCopies > 0 {
			qty = min(qty, s.maxCopies-current.Qty)
		} else if qty > math.MaxInt-current.Qty {
			return domain.CardEntry{}, fmt.Errorf("%w: card %d quantity would overflow", domain.ErrValidation, cardID)
		}
		deck.CardEntries[ei].Qty = current.Qty + qty
		entry = deck.CardEntries[ei]
	} else {
		entry = domain.CardEntry{CardID: cardID, Qty: s.clamp(qty)}
		deck.CardEntries = append(deck.CardEntries, entry)
	}

	if err := s.commit(ctx, opAddCard, decks); err != nil {
		return domain.CardEntry{}, err
	}
	return entry, nil
}

// RemoveCard subtracts qty from the entry and deletes it at zero or below.
// A non-positive qty deletes the entry outright. It reports whether an
// entry was changed; an unknown card is (false, nil).
func (s *Store) RemoveCard(ctx context.Context, deckID, cardID, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.load(ctx)
	if err != nil {
		s.logError(opRemoveCard, "slot_unavailable", err)
		return false, err
	}

	di := indexOfDeck(decks, deckID)
	if di < 0 {
		return false, fmt.Errorf("%w: deck %d", domain.ErrNotFound, deckID)
	}
	deck := &decks[di]

	ei := deck.EntryIndex(cardID)
	if ei < 0 {
		return false, nil
	}

	remaining := 0
	if qty > RemoveAll {
		remaining = deck.CardEntries[ei].Qty - qty
	}
	if remaining <= 0 {
		deck.CardEntries = append(deck.CardEntries[:ei], deck.CardEntries[ei+1:]...)
	} else {
		deck.CardEntries[ei].Qty = remaining
	}

	if err := s.commit(ctx, opRemoveCard, decks); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteDeck removes the deck if present. Deleting an unknown deck is a
// no-op reported as false.
func (s *Store) DeleteDeck(ctx context.Context, deckID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.load(ctx)
	if err != nil {
		s.logError(opDeleteDeck, "slot_unavailable", err)
		return false, err
	}

	di := indexOfDeck(decks, deckID)
	if di < 0 {
		return false, nil
	}
	decks = append(decks[:di], decks[di+1:]...)

	if err := s.commit(ctx, opDeleteDeck, decks); err != nil {
		return false, err
	}
	return true, nil
}

// load reads and decodes the slot. Only transport errors are returned;
// an empty or malformed payload is an empty collection.
func (s *Store) load(ctx context.Context) ([]domain.Deck, error) {
	data, err := s.slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", s.slot.Key(), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Deck{}, nil
	}

	var decks []domain.Deck
	if err := json.Unmarshal(data, &decks); err != nil {
		s.log.Warn("deck slot is not a valid collection, treating as empty",
			logger.String("slot", s.slot.Key()),
			logger.Error(err))
		return []domain.Deck{}, nil
	}
	if decks == nil {
		decks = []domain.Deck{}
	}
	for i := range decks {
		decks[i].CardEntries = s.validEntries(decks[i])
	}
	return decks, nil
}

// commit persists decks and notifies observers. Callers hold s.mu, so
// notifications are delivered in mutation order.
func (s *Store) commit(ctx context.Context, op string, decks []domain.Deck) error {
	data, err := json.Marshal(decks)
	if err != nil {
		s.logError(op, "encode_failed", err)
		return fmt.Errorf("encode decks: %w", err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.logError(op, "save_failed", err)
		return fmt.Errorf("save slot %s: %w", s.slot.Key(), err)
	}
	s.notifier.Notify(decks)
	return nil
}

// validEntries drops stored entries with a non-positive quantity. They
// can only come from a slot written by something else.
func (s *Store) validEntries(d domain.Deck) []domain.CardEntry {
	out := make([]domain.CardEntry, 0, len(d.CardEntries))
	for _, e := range d.CardEntries {
		if e.Qty < 1 {
			s.log.Warn("dropping stored entry with invalid quantity",
				logger.Int("deck_id", d.ID),
				logger.Int("card_id", e.CardID),
				logger.Int("qty", e.Qty))
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Store) atCap(qty int) bool {
	return s.maxCopies > 0 && qty >= s.maxCopies
}

func (s *Store) clamp(qty int) int {
	if s.maxCopies > 0 && qty > s.maxCopies {
		return s.maxCopies
	}
	return qty
}

func (s *Store) logError(op, reason string, err error) {
	s.log.Error("deck store operation failed",
		logger.String("operation", op),
		logger.String("reason", reason),
		logger.Error(err))
}

func indexOfDeck(decks []domain.Deck, id int) int {
	for i, d := range decks {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// ParseID coerces a raw identifier (query parameter, path segment, CLI
// argument) to a deck or card id.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, raw)
	}
	return id, nil
}
