// Package views holds the view-models behind the HTTP surface: the deck
// list, one detail view per deck, and the catalog with favorites. Views
// read through the deck store and never persist anything themselves.
package views

import (
	"context"
	"io"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/notify"
)

// DeckStore is the part of decks.Store the views rely on.
type DeckStore interface {
	List(ctx context.Context) []domain.Deck
	GetByID(ctx context.Context, id int) (domain.Deck, bool)
	FindByName(ctx context.Context, name string) (domain.Deck, bool)
	Create(ctx context.Context, name, deckType, cover string) (domain.Deck, error)
	AddCard(ctx context.Context, deckID, cardID, qty int) (domain.CardEntry, error)
	RemoveCard(ctx context.Context, deckID, cardID, qty int) (bool, error)
	DeleteDeck(ctx context.Context, deckID int) (bool, error)
	OnChange(h notify.Handler)
	MaxCopies() int
}

// CardSource yields the catalog.
type CardSource interface {
	Cards(ctx context.Context) ([]domain.Card, error)
}

// FavoriteService is the remote favorites API.
type FavoriteService interface {
	Favorites(ctx context.Context) ([]domain.Favorite, error)
	FavoritesForCard(ctx context.Context, cardID int) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, cardID int) (domain.Favorite, error)
	DeleteFavorite(ctx context.Context, id string) error
}

// CoverConverter turns an uploaded image into a data URL.
type CoverConverter interface {
	ToDataURL(r io.Reader) (string, error)
}

// UserError pairs a failure with the message shown to the user.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message + ": " + e.Err.Error() }
func (e *UserError) Unwrap() error { return e.Err }

func canIncrement(qty, maxCopies int) bool {
	return maxCopies <= 0 || qty < maxCopies
}
