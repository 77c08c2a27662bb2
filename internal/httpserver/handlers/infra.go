package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool   `json:"ok"`
	Mode        string `json:"mode,omitempty"`
	CardsLoaded *int   `json:"cards_loaded,omitempty"`
	DecksStored *int   `json:"decks_stored,omitempty"`
	Clients     *int   `json:"clients,omitempty"`
	Dropped     *int64 `json:"dropped,omitempty"`
	LastReload  string `json:"last_reload,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of every component the service depends on.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"storage":  checkStorage(ctx, d),
			"catalog":  checkCatalog(d),
			"realtime": checkRealtime(d),
		}
		if d.Remote != nil {
			components["remote"] = checkRemote(ctx, d)
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode is critical without storage and degraded when the
// catalog or its service is missing.
func determineMode(components map[string]componentStatus) string {
	if s, ok := components["storage"]; ok && !s.OK {
		return "critical"
	}
	for _, name := range []string{"catalog", "remote"} {
		if c, ok := components[name]; ok && !c.OK {
			return "degraded"
		}
	}
	return "operational"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StorageBackend,
			Impact: "deck-changes-unavailable",
			Error:  err.Error(),
		}
	}
	count := len(d.Store.List(ctx))
	return componentStatus{OK: true, Mode: d.StorageBackend, DecksStored: &count}
}

func checkCatalog(d deps.Deps) componentStatus {
	if d.CatalogIndex == nil {
		return componentStatus{OK: false, Error: "catalog not configured"}
	}
	count := d.CatalogIndex.Count()
	status := componentStatus{
		OK:          d.CatalogIndex.Loaded(),
		Mode:        d.CatalogSource,
		CardsLoaded: &count,
		LastReload:  "never",
	}
	if last := d.CatalogIndex.LastReload(); !last.IsZero() {
		status.LastReload = last.Format(time.RFC3339)
	}
	if d.Reloader != nil {
		if _, err := d.Reloader.Status(); err != nil {
			status.Impact = "serving-stale-catalog"
			status.Error = err.Error()
		}
	}
	if !status.OK {
		status.Impact = "empty-catalog"
	}
	return status
}

func checkRealtime(d deps.Deps) componentStatus {
	if d.Hub == nil {
		return componentStatus{OK: false, Error: "hub not initialized"}
	}
	stats := d.Hub.Stats()
	return componentStatus{OK: true, Clients: &stats.Clients, Dropped: &stats.Dropped}
}

func checkRemote(ctx context.Context, d deps.Deps) componentStatus {
	if err := d.Remote.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Impact: "favorites-unavailable",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true}
}
