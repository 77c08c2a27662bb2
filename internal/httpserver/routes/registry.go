package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
)

// Registrar mounts one group of routes under /api.
type Registrar func(r chi.Router, d deps.Deps)

type entry struct {
	name string
	reg  Registrar
}

var registry []entry

// Register adds a route group. Called from init() in this package.
func Register(name string, reg Registrar) {
	registry = append(registry, entry{name: name, reg: reg})
}

// RegisterAll mounts every group and returns their names in mount order.
// Called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) []string {
	names := make([]string, 0, len(registry))
	for _, e := range registry {
		e.reg(r, d)
		names = append(names, e.name)
	}
	return names
}
