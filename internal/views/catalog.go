package views

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
)

// FavoriteFailureMessage is shown when a favorite toggle fails.
const FavoriteFailureMessage = "Could not update favorite."

// CardView is a catalog card with its favorite flag.
type CardView struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	ImgURL     string `json:"img_url"`
	IsFavorite bool   `json:"is_favorite"`
}

// DeckOption describes one deck in the add-to-deck selector: either the
// card is already there with its quantity, or the quantities that can be
// added are listed.
type DeckOption struct {
	DeckID        int    `json:"deck_id"`
	Name          string `json:"name"`
	AlreadyOnDeck bool   `json:"already_on_deck"`
	Qty           int    `json:"qty,omitempty"`
	Choices       []int  `json:"choices,omitempty"`
}

// Catalog joins the card catalog with favorites and routes add-to-deck
// choices to the store.
type Catalog struct {
	cards     CardSource
	favorites FavoriteService
	store     DeckStore
	log       logger.Logger
}

func NewCatalog(cards CardSource, favorites FavoriteService, store DeckStore, log logger.Logger) *Catalog {
	if log == nil {
		log = logger.NewNop()
	}
	return &Catalog{cards: cards, favorites: favorites, store: store, log: log}
}

// Cards lists the catalog with favorite flags. An unavailable catalog
// renders empty; unavailable favorites render every card unmarked.
func (c *Catalog) Cards(ctx context.Context) []CardView {
	cards, err := c.cards.Cards(ctx)
	if err != nil {
		c.log.Error("error fetching cards", logger.Error(err))
		return []CardView{}
	}

	favorite := map[int]bool{}
	favs, err := c.favorites.Favorites(ctx)
	if err != nil {
		c.log.Warn("error fetching favorites, showing none", logger.Error(err))
	}
	for _, f := range favs {
		favorite[f.CardID] = true
	}

	out := make([]CardView, 0, len(cards))
	for _, card := range cards {
		out = append(out, CardView{
			ID:         card.ID,
			Name:       card.Name,
			ImgURL:     card.ImgURL,
			IsFavorite: favorite[card.ID],
		})
	}
	return out
}

// ToggleFavorite removes the card's favorite if the service has one,
// otherwise adds it. It returns the new state, decided only after the
// remote call succeeded.
func (c *Catalog) ToggleFavorite(ctx context.Context, cardID int) (bool, error) {
	existing, err := c.favorites.FavoritesForCard(ctx, cardID)
	if err != nil {
		return false, c.favoriteFailure(cardID, err)
	}

	if len(existing) > 0 {
		if err := c.favorites.DeleteFavorite(ctx, existing[0].ID); err != nil {
			return false, c.favoriteFailure(cardID, err)
		}
		return false, nil
	}

	if _, err := c.favorites.AddFavorite(ctx, cardID); err != nil {
		return false, c.favoriteFailure(cardID, err)
	}
	return true, nil
}

// DeckOptions lists every deck for the add-to-deck selector of cardID.
func (c *Catalog) DeckOptions(ctx context.Context, cardID int) []DeckOption {
	maxCopies := c.store.MaxCopies()
	if maxCopies <= 0 {
		maxCopies = domain.MaxCopies
	}
	choices := make([]int, 0, maxCopies)
	for q := 1; q <= maxCopies; q++ {
		choices = append(choices, q)
	}

	all := c.store.List(ctx)
	out := make([]DeckOption, 0, len(all))
	for _, d := range all {
		opt := DeckOption{DeckID: d.ID, Name: d.Name}
		if entry, ok := d.Entry(cardID); ok {
			opt.AlreadyOnDeck = true
			opt.Qty = entry.Qty
		} else {
			opt.Choices = choices
		}
		out = append(out, opt)
	}
	return out
}

// AddToDeck adds qty copies of cardID to deckID.
func (c *Catalog) AddToDeck(ctx context.Context, deckID, cardID, qty int) (domain.CardEntry, error) {
	return c.store.AddCard(ctx, deckID, cardID, qty)
}

func (c *Catalog) favoriteFailure(cardID int, err error) error {
	c.log.Error("error toggling favorite", logger.Int("card_id", cardID), logger.Error(err))
	return &UserError{
		Message: FavoriteFailureMessage,
		Err:     fmt.Errorf("toggle favorite %d: %w", cardID, err),
	}
}
