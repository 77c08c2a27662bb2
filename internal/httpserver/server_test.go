package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/catalog"
	"github.com/MrSnakeDoc/manaforge/internal/config"
	"github.com/MrSnakeDoc/manaforge/internal/decks"
	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
	"github.com/MrSnakeDoc/manaforge/internal/notify"
	"github.com/MrSnakeDoc/manaforge/internal/store"
	"github.com/MrSnakeDoc/manaforge/internal/views"
)

type staticCards []domain.Card

func (s staticCards) Cards(context.Context) ([]domain.Card, error) { return s, nil }

type noFavorites struct{}

func (noFavorites) Favorites(context.Context) ([]domain.Favorite, error) { return nil, nil }
func (noFavorites) FavoritesForCard(context.Context, int) ([]domain.Favorite, error) {
	return nil, nil
}
func (noFavorites) AddFavorite(_ context.Context, id int) (domain.Favorite, error) {
	return domain.Favorite{ID: "1", CardID: id}, nil
}
func (noFavorites) DeleteFavorite(context.Context, string) error { return nil }

type brokenSlot struct{ store.Slot }

func (brokenSlot) Ping(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, slot store.Slot, mutate func(*deps.Deps), cfgMutate func(*config.Config)) http.Handler {
	t.Helper()
	log := logger.NewNop()
	notifier := notify.New()
	s := decks.New(slot, decks.WithLogger(log), decks.WithNotifier(notifier))
	hub := notify.NewHub(4, log)
	hub.Attach(notifier)
	cards := catalog.NewCached(staticCards{{ID: 1, Name: "Lightning Bolt"}}, catalog.NewIndex(), log)

	d := deps.Deps{
		Logger:         log,
		StartTime:      time.Now(),
		Version:        "test",
		TimeNow:        time.Now,
		StorageBackend: config.BackendMemory,
		Store:          s,
		Hub:            hub,
		DeckList:       views.NewDeckList(s, nil, "default.png", log),
		Details:        views.NewDetailRegistry(s, cards, log),
		Catalog:        views.NewCatalog(cards, noFavorites{}, s, log),
		CatalogIndex:   cards.Index(),
		CatalogSource:  "static",
		ReloadTrigger:  make(chan struct{}, 1),
	}
	if mutate != nil {
		mutate(&d)
	}
	cfg := &config.Config{
		ListenPort:      ":0",
		RequestTimeout:  time.Second,
		RateLimitBurst:  100,
		RateLimitPerMin: 100,
		AllowedOrigins:  []string{"*"},
	}
	if cfgMutate != nil {
		cfgMutate(cfg)
	}
	return New(cfg, log, d).Handler()
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProbes(t *testing.T) {
	tests := []struct {
		name     string
		slot     store.Slot
		path     string
		wantCode int
		wantBody string
	}{
		{"healthz", store.NewMemory("k"), "/api/healthz", http.StatusOK, `"status":"ok"`},
		{"readyz ok", store.NewMemory("k"), "/api/readyz", http.StatusOK, `"ready":true`},
		{"readyz storage down", brokenSlot{store.NewMemory("k")}, "/api/readyz", http.StatusServiceUnavailable, `"storage unavailable"`},
		{"healthz ignores storage", brokenSlot{store.NewMemory("k")}, "/api/healthz", http.StatusOK, `"status":"ok"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestServer(t, tt.slot, nil, nil), http.MethodGet, tt.path)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestReloadQueuesOnce(t *testing.T) {
	h := newTestServer(t, store.NewMemory("k"), nil, nil)

	if rec := serve(h, http.MethodPost, "/api/reload"); rec.Code != http.StatusAccepted {
		t.Fatalf("first reload = %d, want 202", rec.Code)
	}
	if rec := serve(h, http.MethodPost, "/api/reload"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second reload = %d, want 429", rec.Code)
	}
}

func TestReloadDisabled(t *testing.T) {
	h := newTestServer(t, store.NewMemory("k"), func(d *deps.Deps) { d.ReloadTrigger = nil }, nil)
	if rec := serve(h, http.MethodPost, "/api/reload"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("reload = %d, want 503", rec.Code)
	}
}

func TestInfraRestrictedByNetwork(t *testing.T) {
	h := newTestServer(t, store.NewMemory("k"), func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	}, nil)
	// httptest requests come from 192.0.2.1.
	if rec := serve(h, http.MethodGet, "/api/infra"); rec.Code != http.StatusForbidden {
		t.Fatalf("infra = %d, want 403", rec.Code)
	}
}

func TestInfraReportsComponents(t *testing.T) {
	h := newTestServer(t, brokenSlot{store.NewMemory("k")}, nil, nil)
	rec := serve(h, http.MethodGet, "/api/infra")
	if rec.Code != http.StatusOK {
		t.Fatalf("infra = %d", rec.Code)
	}
	var body struct {
		Mode       string                     `json:"mode"`
		Components map[string]json.RawMessage `json:"components"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Mode != "critical" {
		t.Errorf("mode = %q, want critical", body.Mode)
	}
	for _, name := range []string{"storage", "catalog", "realtime"} {
		if _, ok := body.Components[name]; !ok {
			t.Errorf("missing component %q", name)
		}
	}
	if _, ok := body.Components["remote"]; ok {
		t.Error("remote reported without a remote service")
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, store.NewMemory("k"), nil, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/decks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	h := newTestServer(t, store.NewMemory("k"), nil, func(c *config.Config) {
		c.RateLimitBurst = 1
		c.RateLimitPerMin = 1
	})

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/decks", strings.NewReader(`{"name":"A"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := post(); code != http.StatusCreated {
		t.Fatalf("first create = %d, want 201", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second create = %d, want 429", code)
	}
	// Reads are never limited.
	for range 3 {
		if rec := serve(h, http.MethodGet, "/api/decks"); rec.Code != http.StatusOK {
			t.Fatalf("list = %d, want 200", rec.Code)
		}
	}
}

func TestUnknownDeckIs404(t *testing.T) {
	h := newTestServer(t, store.NewMemory("k"), nil, nil)
	for _, path := range []string{"/api/decks/7", "/api/deck?id=7"} {
		if rec := serve(h, http.MethodGet, path); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, rec.Code)
		}
	}
	if rec := serve(h, http.MethodDelete, "/api/decks/7"); rec.Code != http.StatusNotFound {
		t.Errorf("DELETE = %d, want 404", rec.Code)
	}
}
