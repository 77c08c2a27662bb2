package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/catalog"
	"github.com/MrSnakeDoc/manaforge/internal/decks"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
	"github.com/MrSnakeDoc/manaforge/internal/notify"
	"github.com/MrSnakeDoc/manaforge/internal/scheduler"
	"github.com/MrSnakeDoc/manaforge/internal/views"
)

// Middleware wraps a handler.
type Middleware = func(http.Handler) http.Handler

// Pinger is a remote dependency that can be health-checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access the server
	AllowedCIDRS   []string         // IPs allowed to access /reload and /infra
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	MaxUploadBytes int64            // limit of a deck creation request with a cover upload

	// Filled by httpserver.New when left nil.
	Timeout       Middleware // per-request timeout, never applied to the event stream
	MutationLimit Middleware // per-IP rate limit shared by every mutating route

	StorageBackend string       // memory | file | sqlite | postgres | redis
	Store          *decks.Store // single writer of the deck slot
	Hub            *notify.Hub  // relays decks-updated to streaming clients
	DeckList       *views.DeckList
	Details        *views.DetailRegistry
	Catalog        *views.Catalog
	CatalogIndex   *catalog.Index             // last catalog fetched
	CatalogSource  string                     // human readable origin of the catalog
	Remote         Pinger                     // card/favorite service, nil when unused
	Reloader       *scheduler.CatalogReloader // nil when the catalog is not refreshed
	ReloadTrigger  chan struct{}              // manual catalog reload
	HeartbeatEvery time.Duration              // keep-alive comment on the event stream
}
