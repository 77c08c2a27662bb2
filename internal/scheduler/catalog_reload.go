package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/logger"
)

// Refresher reloads a cached dataset.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// CatalogReloader refreshes the card catalog on a fixed interval and
// whenever a manual trigger is received.
type CatalogReloader struct {
	catalog       Refresher
	logger        logger.Logger
	interval      time.Duration
	manualTrigger chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once

	mu          sync.Mutex
	lastAttempt time.Time
	lastError   error
}

// NewCatalogReloader creates a reloader. manualTrigger may be nil when
// only the periodic refresh is wanted.
func NewCatalogReloader(
	catalog Refresher,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		catalog:       catalog,
		logger:        log,
		interval:      interval,
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
	}
}

// Start loads the catalog once, then keeps refreshing it in the
// background. A failed first load is logged, not returned: the remote
// service may come up later and views degrade to an empty catalog.
func (cr *CatalogReloader) Start(ctx context.Context) {
	if err := cr.Reload(ctx); err != nil {
		cr.logger.Warn("initial catalog load failed, will retry", logger.Error(err))
	}

	if cr.interval <= 0 && cr.manualTrigger == nil {
		return
	}

	var tick <-chan time.Time
	if cr.interval > 0 {
		ticker := time.NewTicker(cr.interval)
		tick = ticker.C
		go func() {
			<-cr.stopCh
			ticker.Stop()
		}()
	}

	go func() {
		for {
			select {
			case <-tick:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog", logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog", logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the background loop. Safe to call more than once.
func (cr *CatalogReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
}

// Reload refreshes the catalog now.
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	err := cr.catalog.Refresh(ctx)

	cr.mu.Lock()
	cr.lastAttempt = time.Now()
	cr.lastError = err
	cr.mu.Unlock()

	return err
}

// Status reports the last attempt time and its error, if any.
func (cr *CatalogReloader) Status() (time.Time, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.lastAttempt, cr.lastError
}
