package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/mw"
)

func init() { Register("cards", registerCards) }

func registerCards(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(d.Timeout, mw.EnforceHost(d.AllowedHosts, d.Logger), d.MutationLimit)

		r.Get("/cards", handlers.Cards(d))
		r.Get("/cards/{cardID}/decks", handlers.CardDecks(d))
		r.Post("/cards/{cardID}/favorite", handlers.ToggleFavorite(d))
	})
}
