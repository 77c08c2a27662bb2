package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/mw"
)

func init() { Register("decks", registerDecks) }

func registerDecks(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(d.Timeout, mw.EnforceHost(d.AllowedHosts, d.Logger), d.MutationLimit)

		r.Get("/decks", handlers.ListDecks(d))
		r.Post("/decks", handlers.CreateDeck(d))
		r.Get("/deck", handlers.DeckDetail(d))

		r.Route("/decks/{deckID}", func(r chi.Router) {
			r.Get("/", handlers.GetDeck(d))
			r.Delete("/", handlers.DeleteDeck(d))
			r.Post("/cards", handlers.AddCard(d))
			r.Post("/cards/{cardID}/increment", handlers.IncrementCard(d))
			r.Post("/cards/{cardID}/decrement", handlers.DecrementCard(d))
			r.Post("/cards/{cardID}/remove", handlers.RequestRemove(d))
			r.Post("/remove/confirm", handlers.ConfirmRemove(d))
			r.Post("/remove/cancel", handlers.CancelRemove(d))
		})
	})
}
