package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/mw"
)

func init() { Register("events", registerEvents) }

// The stream is long-lived: no request timeout here.
func registerEvents(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/events", handlers.Events(d))
}
