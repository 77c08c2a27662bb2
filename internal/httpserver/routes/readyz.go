package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/handlers"
)

func init() { Register("probes", registerProbes) }

// registerProbes exposes liveness and readiness without filters so
// orchestrators can always reach them.
func registerProbes(r chi.Router, d deps.Deps) {
	r.With(d.Timeout).Get("/healthz", handlers.Healthz(d))
	r.With(d.Timeout).Get("/readyz", handlers.Readyz(d))
}
