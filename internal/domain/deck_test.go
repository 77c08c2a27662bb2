package domain

import "testing"

func TestNextDeckID(t *testing.T) {
	tests := []struct {
		name     string
		decks    []Deck
		expected int
	}{
		{name: "empty collection", decks: nil, expected: 1},
		{name: "single deck", decks: []Deck{{ID: 1}}, expected: 2},
		{name: "gap after deletion", decks: []Deck{{ID: 2}}, expected: 3},
		{name: "unordered ids", decks: []Deck{{ID: 5}, {ID: 2}, {ID: 9}}, expected: 10},
		{name: "legacy deck without id", decks: []Deck{{ID: 0}}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextDeckID(tt.decks); got != tt.expected {
				t.Errorf("NextDeckID() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestDeckEntry(t *testing.T) {
	deck := Deck{CardEntries: []CardEntry{{CardID: 7, Qty: 2}, {CardID: 42, Qty: 3}}}

	entry, ok := deck.Entry(42)
	if !ok || entry.Qty != 3 {
		t.Fatalf("Entry(42) = %+v, %v; want qty 3", entry, ok)
	}
	if _, ok := deck.Entry(99); ok {
		t.Error("Entry(99) should be absent")
	}
	if got := deck.TotalCards(); got != 5 {
		t.Errorf("TotalCards() = %d, want 5", got)
	}
}

func TestDeckCloneIsIndependent(t *testing.T) {
	original := Deck{ID: 1, CardEntries: []CardEntry{{CardID: 1, Qty: 1}}}
	clone := original.Clone()
	clone.CardEntries[0].Qty = 4

	if original.CardEntries[0].Qty != 1 {
		t.Error("Clone() shares entries with the original")
	}

	decks := CloneDecks(nil)
	if decks == nil {
		t.Error("CloneDecks(nil) should return an empty, non-nil slice")
	}
}
