package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/httpserver/deps"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
	"github.com/MrSnakeDoc/manaforge/internal/utils"
	"github.com/MrSnakeDoc/manaforge/internal/views"
)

type createDeckRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Cover string `json:"cover"`
}

type createDeckResponse struct {
	Deck  domain.Deck  `json:"deck"`
	Decks []views.Tile `json:"decks"`
}

type addCardRequest struct {
	CardID int  `json:"card_id"`
	Qty    *int `json:"qty"`
}

// ListDecks serves the deck tiles.
func ListDecks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.DeckList.Render(r.Context()))
	}
}

// CreateDeck accepts JSON or a multipart form with an optional "image"
// file used as the cover.
func CreateDeck(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, cleanup, err := parseCreateDeck(w, r, d.MaxUploadBytes)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		defer cleanup()

		deck, tiles, err := d.DeckList.Create(r.Context(), in)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		d.Logger.Info("deck created",
			logger.Int("deck_id", deck.ID),
			logger.String("name", deck.Name))
		writeJSON(w, http.StatusCreated, createDeckResponse{Deck: deck, Decks: tiles})
	}
}

func parseCreateDeck(w http.ResponseWriter, r *http.Request, maxBytes int64) (views.CreateDeckInput, func(), error) {
	noop := func() {}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType != "multipart/form-data" {
		var body createDeckRequest
		if err := decodeJSON(r, &body); err != nil {
			return views.CreateDeckInput{}, noop, err
		}
		return views.CreateDeckInput{Name: body.Name, Type: body.Type, CoverURL: body.Cover}, noop, nil
	}

	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return views.CreateDeckInput{}, noop, fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrValidation, maxBytes)
		}
		return views.CreateDeckInput{}, noop, fmt.Errorf("%w: invalid form: %v", domain.ErrValidation, err)
	}

	in := views.CreateDeckInput{
		Name:     r.FormValue("name"),
		Type:     r.FormValue("type"),
		CoverURL: r.FormValue("cover"),
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		in.Cover = file
		return in, func() { utils.Close(file); cleanup() }, nil
	case errors.Is(err, http.ErrMissingFile):
		return in, cleanup, nil
	default:
		cleanup()
		return views.CreateDeckInput{}, noop, fmt.Errorf("%w: invalid cover upload: %v", domain.ErrValidation, err)
	}
}

// GetDeck serves the raw persisted deck.
func GetDeck(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "deckID")
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		deck, ok := d.Store.GetByID(r.Context(), id)
		if !ok {
			writeError(w, d.Logger, fmt.Errorf("%w: deck %d", domain.ErrNotFound, id))
			return
		}
		writeJSON(w, http.StatusOK, deck)
	}
}

// DeleteDeck removes a deck. The client asks for confirmation first.
func DeleteDeck(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dd, err := detailFromPath(d, r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if err := dd.Delete(r.Context()); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		d.Logger.Info("deck deleted", logger.Int("deck_id", dd.DeckID()))
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeckDetail renders a deck resolved by ?id=, or by ?name= when no id
// is given.
func DeckDetail(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		dd, err := d.Details.Resolve(r.Context(), q.Get("id"), q.Get("name"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		state, err := dd.Render(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

// AddCard adds copies of a card to a deck; qty defaults to 1.
func AddCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deckID, err := pathID(r, "deckID")
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		var body addCardRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		qty := 1
		if body.Qty != nil {
			qty = *body.Qty
		}
		entry, err := d.Catalog.AddToDeck(r.Context(), deckID, body.CardID, qty)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// IncrementCard adds one copy from the detail view.
func IncrementCard(d deps.Deps) http.HandlerFunc {
	return cardAction(d, func(r *http.Request, dd *views.DeckDetail, cardID int) (views.DetailState, error) {
		return dd.Increment(r.Context(), cardID)
	})
}

// DecrementCard removes one copy from the detail view.
func DecrementCard(d deps.Deps) http.HandlerFunc {
	return cardAction(d, func(r *http.Request, dd *views.DeckDetail, cardID int) (views.DetailState, error) {
		return dd.Decrement(r.Context(), cardID)
	})
}

// RequestRemove marks a card for removal, pending confirmation.
func RequestRemove(d deps.Deps) http.HandlerFunc {
	return cardAction(d, func(r *http.Request, dd *views.DeckDetail, cardID int) (views.DetailState, error) {
		dd.RequestRemove(cardID)
		return dd.Render(r.Context())
	})
}

// ConfirmRemove removes the pending card entirely.
func ConfirmRemove(d deps.Deps) http.HandlerFunc {
	return deckAction(d, func(r *http.Request, dd *views.DeckDetail) (views.DetailState, error) {
		return dd.ConfirmRemove(r.Context())
	})
}

// CancelRemove drops the pending removal.
func CancelRemove(d deps.Deps) http.HandlerFunc {
	return deckAction(d, func(r *http.Request, dd *views.DeckDetail) (views.DetailState, error) {
		dd.CancelRemove()
		return dd.Render(r.Context())
	})
}

func detailFromPath(d deps.Deps, r *http.Request) (*views.DeckDetail, error) {
	deckID, err := pathID(r, "deckID")
	if err != nil {
		return nil, err
	}
	return d.Details.Get(r.Context(), deckID)
}

func deckAction(d deps.Deps, fn func(*http.Request, *views.DeckDetail) (views.DetailState, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dd, err := detailFromPath(d, r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		state, err := fn(r, dd)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func cardAction(d deps.Deps, fn func(*http.Request, *views.DeckDetail, int) (views.DetailState, error)) http.HandlerFunc {
	return deckAction(d, func(r *http.Request, dd *views.DeckDetail) (views.DetailState, error) {
		cardID, err := pathID(r, "cardID")
		if err != nil {
			return views.DetailState{}, err
		}
		return fn(r, dd, cardID)
	})
}
