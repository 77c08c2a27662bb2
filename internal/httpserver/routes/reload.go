package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/mw"
)

func init() { Register("ops", registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	restricted := r.With(
		d.Timeout,
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	restricted.Post("/reload", handlers.Reload(d))
	restricted.Get("/infra", handlers.Infra(d))
}
