// Package catalog reads the card catalog and manages remote favorites.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
	"github.com/MrSnakeDoc/manaforge/internal/utils"
)

// maxResponseBytes bounds a single response body.
const maxResponseBytes = 16 << 20

// Source yields the full card catalog.
type Source interface {
	Cards(ctx context.Context) ([]domain.Card, error)
}

// Client talks to the remote card/favorite service. Every failure wraps
// domain.ErrNetwork.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// BaseURL is the service root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Cards returns GET /cards in the order served.
func (c *Client) Cards(ctx context.Context) ([]domain.Card, error) {
	var wire []wireCard
	if err := c.do(ctx, http.MethodGet, "/cards", nil, &wire); err != nil {
		return nil, err
	}
	cards := make([]domain.Card, 0, len(wire))
	for _, w := range wire {
		cards = append(cards, w.card())
	}
	return cards, nil
}

// Favorites returns every favorite marker.
func (c *Client) Favorites(ctx context.Context) ([]domain.Favorite, error) {
	return c.favorites(ctx, "/favorites")
}

// FavoritesForCard returns the markers recorded for one card.
func (c *Client) FavoritesForCard(ctx context.Context, cardID int) ([]domain.Favorite, error) {
	q := url.Values{"card_id": []string{strconv.Itoa(cardID)}}
	return c.favorites(ctx, "/favorites?"+q.Encode())
}

// AddFavorite posts a new marker for cardID.
func (c *Client) AddFavorite(ctx context.Context, cardID int) (domain.Favorite, error) {
	body := map[string]int{"card_id": cardID}
	var created wireFavorite
	if err := c.do(ctx, http.MethodPost, "/favorites", body, &created); err != nil {
		return domain.Favorite{}, err
	}
	fav := created.favorite()
	if fav.CardID == 0 {
		fav.CardID = cardID
	}
	return fav, nil
}

// DeleteFavorite removes the marker with the given remote id.
func (c *Client) DeleteFavorite(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: favorite id is required", domain.ErrValidation)
	}
	return c.do(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(id), nil, nil)
}

// Ping checks that the service answers at all.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/cards?_limit=1", nil, nil)
}

func (c *Client) favorites(ctx context.Context, path string) ([]domain.Favorite, error) {
	var wire []wireFavorite
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	favs := make([]domain.Favorite, 0, len(wire))
	for _, w := range wire {
		favs = append(favs, w.favorite())
	}
	return favs, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: build %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("catalog request failed",
			logger.String("method", method),
			logger.String("path", path),
			logger.Error(err))
		return fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	defer utils.Close(resp.Body)

	c.log.Debug("catalog request",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return fmt.Errorf("%w: %s %s returned %d", domain.ErrNetwork, method, path, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	return nil
}
