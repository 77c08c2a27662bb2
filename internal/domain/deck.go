package domain

const (
	// DefaultDeckType is assigned when a deck is created without a type.
	DefaultDeckType = "other"

	// MaxCopies is the highest quantity a single card may reach in a deck.
	MaxCopies = 4

	// EventDecksUpdated is the name of the signal broadcast after every
	// effective deck mutation.
	EventDecksUpdated = "decks-updated"
)

// CardEntry associates a catalog card with a deck.
// Qty is always positive while the entry exists.
type CardEntry struct {
	CardID int `json:"card_id"`
	Qty    int `json:"qty"`
}

// Deck is a named, user-owned collection of card entries.
//
// The JSON field names are the persisted schema of the deck slot and
// must stay stable.
type Deck struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Cover       string      `json:"cover"`
	CardEntries []CardEntry `json:"card_entries"`
}

// EntryIndex returns the position of the entry for cardID, or -1.
func (d Deck) EntryIndex(cardID int) int {
	for i, entry := range d.CardEntries {
		if entry.CardID == cardID {
			return i
		}
	}
	return -1
}

// Entry returns the entry for cardID if the deck holds that card.
func (d Deck) Entry(cardID int) (CardEntry, bool) {
	if i := d.EntryIndex(cardID); i >= 0 {
		return d.CardEntries[i], true
	}
	return CardEntry{}, false
}

// TotalCards sums the quantities of every entry.
func (d Deck) TotalCards() int {
	total := 0
	for _, entry := range d.CardEntries {
		total += entry.Qty
	}
	return total
}

// Clone returns a deep copy so callers never share the entry slice.
func (d Deck) Clone() Deck {
	out := d
	out.CardEntries = make([]CardEntry, len(d.CardEntries))
	copy(out.CardEntries, d.CardEntries)
	return out
}

// CloneDecks deep-copies a collection. The result is never nil.
func CloneDecks(decks []Deck) []Deck {
	out := make([]Deck, 0, len(decks))
	for _, d := range decks {
		out = append(out, d.Clone())
	}
	return out
}

// NextDeckID returns max(existing ids) + 1, or 1 for an empty collection.
// It is relative to the current collection, not a global counter: deleting
// the highest deck frees its id for the next creation.
func NextDeckID(decks []Deck) int {
	highest := 0
	for _, d := range decks {
		if d.ID > highest {
			highest = d.ID
		}
	}
	return highest + 1
}
