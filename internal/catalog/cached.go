package catalog

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
)

// Cached serves the catalog from an Index kept fresh by Refresh. When the
// source fails the last good catalog stays in place.
type Cached struct {
	source Source
	index  *Index
	log    logger.Logger
}

func NewCached(source Source, index *Index, log logger.Logger) *Cached {
	if index == nil {
		index = NewIndex()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Cached{source: source, index: index, log: log}
}

func (c *Cached) Index() *Index { return c.index }

// Refresh fetches the catalog and replaces the index on success.
func (c *Cached) Refresh(ctx context.Context) error {
	cards, err := c.source.Cards(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}
	c.index.Update(cards)
	c.log.Info("catalog loaded", logger.Int("count", len(cards)))
	return nil
}

// Cards returns the indexed catalog, loading it on first use. A failed
// first load is returned; later failures never are since Refresh keeps
// the stale copy.
func (c *Cached) Cards(ctx context.Context) ([]domain.Card, error) {
	if !c.index.Loaded() {
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return c.index.All(), nil
}

// Card looks up a single card by id.
func (c *Cached) Card(ctx context.Context, id int) (domain.Card, bool) {
	if _, err := c.Cards(ctx); err != nil {
		c.log.Warn("catalog unavailable", logger.Error(err))
		return domain.Card{}, false
	}
	return c.index.Get(id)
}
