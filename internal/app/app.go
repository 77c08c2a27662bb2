package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/catalog"
	"github.com/MrSnakeDoc/manaforge/internal/config"
	"github.com/MrSnakeDoc/manaforge/internal/cover"
	"github.com/MrSnakeDoc/manaforge/internal/decks"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
	"github.com/MrSnakeDoc/manaforge/internal/notify"
	"github.com/MrSnakeDoc/manaforge/internal/scheduler"
	"github.com/MrSnakeDoc/manaforge/internal/store"
	"github.com/MrSnakeDoc/manaforge/internal/utils"
	"github.com/MrSnakeDoc/manaforge/internal/version"
	"github.com/MrSnakeDoc/manaforge/internal/views"
)

const (
	hubBuffer      = 16
	heartbeatEvery = 20 * time.Second
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	slot     store.Slot
	store    *decks.Store
	reloader *scheduler.CatalogReloader
}

// New wires every component. The storage backend is connected here so a
// bad configuration fails before the server starts listening.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loggerClient, err := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		return nil, err
	}

	slot, err := OpenSlot(ctx, cfg, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}

	notifier := notify.New()
	deckStore := decks.New(slot,
		decks.WithLogger(loggerClient),
		decks.WithNotifier(notifier),
		decks.WithMaxCopies(cfg.MaxCopies),
	)

	hub := notify.NewHub(hubBuffer, loggerClient)
	hub.Attach(notifier)

	remote := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout, loggerClient)
	var source catalog.Source = remote
	sourceName := remote.BaseURL() + "/cards"
	if cfg.CatalogFile != "" {
		loggerClient.Info("catalog file configured, cards are read locally",
			logger.String("file", cfg.CatalogFile))
		source = catalog.NewFileSource(cfg.CatalogFile)
		sourceName = cfg.CatalogFile
	}
	cards := catalog.NewCached(source, catalog.NewIndex(), loggerClient)

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewCatalogReloader(cards, loggerClient, cfg.CatalogReloadInterval, reloadTrigger)

	covers := cover.NewConverter(cover.Options{
		MaxDimension: cfg.CoverMaxDimension,
		Quality:      cfg.CoverQuality,
		MaxBytes:     cfg.CoverMaxBytes,
	})

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		MaxUploadBytes: cfg.CoverMaxBytes,
		StorageBackend: cfg.StorageBackend,
		Store:          deckStore,
		Hub:            hub,
		DeckList:       views.NewDeckList(deckStore, covers, cfg.DefaultCover, loggerClient),
		Details:        views.NewDetailRegistry(deckStore, cards, loggerClient),
		Catalog:        views.NewCatalog(cards, remote, deckStore, loggerClient),
		CatalogIndex:   cards.Index(),
		CatalogSource:  sourceName,
		Remote:         remote,
		Reloader:       reloader,
		ReloadTrigger:  reloadTrigger,
		HeartbeatEvery: heartbeatEvery,
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   httpserver.New(cfg, loggerClient, d),
		slot:     slot,
		store:    deckStore,
		reloader: reloader,
	}, nil
}

// Handler exposes the router without starting the listener.
func (a *App) Handler() http.Handler { return a.server.Handler() }

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Manaforge v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.reloader.Start(ctx)
	a.logger.Info("catalog reloader started",
		logger.Duration("interval", a.cfg.CatalogReloadInterval))

	a.logger.Info("deck store ready",
		logger.String("backend", a.cfg.StorageBackend),
		logger.Int("decks", len(a.store.List(ctx))))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.reloader.Stop()
		a.closeSlot()
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeSlot()
	a.logger.Info("✅ Manaforge stopped cleanly")
	return nil
}

func (a *App) closeSlot() {
	if c, ok := a.slot.(store.Closer); ok {
		utils.CloseLogged(a.logger, a.cfg.StorageBackend, c)
	}
}
