package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
)

const defaultHeartbeat = 25 * time.Second

// Events streams decks-updated notifications as Server-Sent Events.
func Events(d deps.Deps) http.HandlerFunc {
	heartbeat := d.HeartbeatEvery
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}

	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		ctx := r.Context()
		stream, cleanup := d.Hub.Subscribe(ctx)
		defer cleanup()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case ev := <-stream:
				payload, err := json.Marshal(ev.Decks)
				if err != nil {
					d.Logger.Error("failed to encode event", logger.Error(err))
					continue
				}
				if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Name, payload); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
