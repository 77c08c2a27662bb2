package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
)

// Tile is one deck as shown in the list.
type Tile struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Cover      string `json:"cover"`
	Entries    int    `json:"entries"`
	TotalCards int    `json:"total_cards"`
}

// CreateDeckInput is the deck creation form. Cover, when set, is an
// uploaded image; CoverURL is used as-is when no upload is given.
type CreateDeckInput struct {
	Name     string
	Type     string
	Cover    io.Reader
	CoverURL string
}

// DeckList lists decks as tiles and creates new ones. It follows the
// store's change notifications to keep its last rendering current.
type DeckList struct {
	store        DeckStore
	covers       CoverConverter
	defaultCover string
	log          logger.Logger

	mu        sync.RWMutex
	refreshes int
	last      []Tile
}

func NewDeckList(store DeckStore, covers CoverConverter, defaultCover string, log logger.Logger) *DeckList {
	if log == nil {
		log = logger.NewNop()
	}
	dl := &DeckList{
		store:        store,
		covers:       covers,
		defaultCover: defaultCover,
		log:          log,
	}
	store.OnChange(dl.onChange)
	return dl
}

// Render re-reads the store.
func (dl *DeckList) Render(ctx context.Context) []Tile {
	tiles := dl.tiles(dl.store.List(ctx))
	dl.mu.Lock()
	dl.last = tiles
	dl.mu.Unlock()
	return tiles
}

// Create validates the form, converts the cover and creates the deck.
// A cover that cannot be converted is dropped with a warning.
func (dl *DeckList) Create(ctx context.Context, in CreateDeckInput) (domain.Deck, []Tile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Deck{}, nil, fmt.Errorf("%w: deck name is required", domain.ErrValidation)
	}

	cover := strings.TrimSpace(in.CoverURL)
	if in.Cover != nil && dl.covers != nil {
		url, err := dl.covers.ToDataURL(in.Cover)
		if err != nil {
			dl.log.Warn("cover conversion failed, creating deck without cover",
				logger.String("deck", name),
				logger.Error(err))
			cover = ""
		} else {
			cover = url
		}
	}

	deck, err := dl.store.Create(ctx, name, in.Type, cover)
	if err != nil {
		return domain.Deck{}, nil, err
	}
	return deck, dl.Render(ctx), nil
}

// Refreshes counts the change notifications received.
func (dl *DeckList) Refreshes() int {
	dl.mu.RLock()
	defer dl.mu.RUnlock()
	return dl.refreshes
}

// LastRendered is the most recent tile set, from Render or a notification.
func (dl *DeckList) LastRendered() []Tile {
	dl.mu.RLock()
	defer dl.mu.RUnlock()
	out := make([]Tile, len(dl.last))
	copy(out, dl.last)
	return out
}

func (dl *DeckList) onChange(decks []domain.Deck) {
	tiles := dl.tiles(decks)
	dl.mu.Lock()
	dl.refreshes++
	dl.last = tiles
	dl.mu.Unlock()
}

func (dl *DeckList) tiles(decks []domain.Deck) []Tile {
	tiles := make([]Tile, 0, len(decks))
	for _, d := range decks {
		cover := d.Cover
		if cover == "" {
			cover = dl.defaultCover
		}
		tiles = append(tiles, Tile{
			ID:         d.ID,
			Name:       d.Name,
			Type:       d.Type,
			Cover:      cover,
			Entries:    len(d.CardEntries),
			TotalCards: d.TotalCards(),
		})
	}
	return tiles
}
