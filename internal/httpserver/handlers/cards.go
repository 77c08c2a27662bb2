package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
)

type favoriteResponse struct {
	CardID     int  `json:"card_id"`
	IsFavorite bool `json:"is_favorite"`
}

// Cards serves the catalog with favorite flags.
func Cards(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.Cards(r.Context()))
	}
}

// CardDecks serves the add-to-deck choices for one card.
func CardDecks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cardID, err := pathID(r, "cardID")
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, d.Catalog.DeckOptions(r.Context(), cardID))
	}
}

// ToggleFavorite flips the favorite marker of a card on the remote service.
func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cardID, err := pathID(r, "cardID")
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		on, err := d.Catalog.ToggleFavorite(r.Context(), cardID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		d.Logger.Debug("favorite toggled",
			logger.Int("card_id", cardID),
			logger.Bool("is_favorite", on))
		writeJSON(w, http.StatusOK, favoriteResponse{CardID: cardID, IsFavorite: on})
	}
}
