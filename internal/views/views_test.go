package views

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/manaforge/internal/decks"
	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/store"
)

type staticCards struct {
	cards []domain.Card
	err   error
}

func (s staticCards) Cards(context.Context) ([]domain.Card, error) { return s.cards, s.err }

type fakeFavorites struct {
	mu        sync.Mutex
	favorites []domain.Favorite
	listErr   error
	writeErr  error
	next      int
}

func (f *fakeFavorites) Favorites(context.Context) ([]domain.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Favorite(nil), f.favorites...), nil
}

func (f *fakeFavorites) FavoritesForCard(_ context.Context, cardID int) ([]domain.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Favorite
	for _, fav := range f.favorites {
		if fav.CardID == cardID {
			out = append(out, fav)
		}
	}
	return out, nil
}

func (f *fakeFavorites) AddFavorite(_ context.Context, cardID int) (domain.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return domain.Favorite{}, f.writeErr
	}
	f.next++
	fav := domain.Favorite{ID: "fav-" + string(rune('0'+f.next)), CardID: cardID}
	f.favorites = append(f.favorites, fav)
	return fav, nil
}

func (f *fakeFavorites) DeleteFavorite(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	for i, fav := range f.favorites {
		if fav.ID == id {
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return nil
		}
	}
	return errors.New("favorite not found")
}

type fakeCovers struct{ err error }

func (f fakeCovers) ToDataURL(r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(r)
	return "data:image/jpeg;base64," + string(b), nil
}

var testCatalog = staticCards{cards: []domain.Card{
	{ID: 1, Name: "Lightning Bolt", ImgURL: "bolt.png"},
	{ID: 2, Name: "Counterspell", ImgURL: "cs.png"},
	{ID: 3, Name: "Llanowar Elves", ImgURL: "elves.png"},
}}

func newStore() *decks.Store {
	return decks.New(store.NewMemory("manaforge_decks"))
}

func TestDeckListCreate(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	dl := NewDeckList(s, fakeCovers{}, "default.webp", nil)

	if _, _, err := dl.Create(ctx, CreateDeckInput{Name: "  "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Create(blank) error = %v, want ErrValidation", err)
	}

	deck, tiles, err := dl.Create(ctx, CreateDeckInput{Name: " Fire ", Type: "aggro", Cover: strings.NewReader("img")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if deck.Name != "Fire" || deck.Cover != "data:image/jpeg;base64,img" {
		t.Errorf("Create() = %+v", deck)
	}
	if len(tiles) != 1 || tiles[0].ID != deck.ID {
		t.Errorf("tiles = %+v", tiles)
	}

	if _, _, err := dl.Create(ctx, CreateDeckInput{Name: "Plain"}); err != nil {
		t.Fatalf("Create(no cover) error = %v", err)
	}
	tiles = dl.Render(ctx)
	if tiles[1].Cover != "default.webp" {
		t.Errorf("tile without cover shows %q, want the default cover", tiles[1].Cover)
	}
	if dl.Refreshes() != 2 {
		t.Errorf("Refreshes() = %d, want 2", dl.Refreshes())
	}
}

func TestDeckListCoverFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	dl := NewDeckList(s, fakeCovers{err: errors.New("bad image")}, "", nil)

	deck, _, err := dl.Create(ctx, CreateDeckInput{Name: "A", Cover: strings.NewReader("x"), CoverURL: "ignored"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if deck.Cover != "" {
		t.Errorf("Cover = %q, want empty after a failed conversion", deck.Cover)
	}
}

func TestDeckListFollowsNotifications(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	dl := NewDeckList(s, nil, "", nil)

	if _, err := s.Create(ctx, "Elsewhere", "", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.AddCard(ctx, 1, 2, 3); err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}

	last := dl.LastRendered()
	if len(last) != 1 || last[0].TotalCards != 3 || last[0].Entries != 1 {
		t.Errorf("LastRendered() = %+v", last)
	}
}

func setupDetail(t *testing.T) (*decks.Store, *DetailRegistry) {
	t.Helper()
	ctx := context.Background()
	s := newStore()
	if _, err := s.Create(ctx, "Fire Deck", "", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for card, qty := range map[int]int{1: 1, 2: 4, 99: 2} {
		if _, err := s.AddCard(ctx, 1, card, qty); err != nil {
			t.Fatalf("AddCard(%d) error = %v", card, err)
		}
	}
	return s, NewDetailRegistry(s, testCatalog, nil)
}

func TestDeckDetailRender(t *testing.T) {
	ctx := context.Background()
	_, reg := setupDetail(t)

	dd, err := reg.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	state, err := dd.Render(ctx)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(state.Rows) != 2 {
		t.Fatalf("rows = %+v, want 2 (card 99 is not in the catalog)", state.Rows)
	}
	rows := map[int]Row{}
	for _, r := range state.Rows {
		rows[r.CardID] = r
	}
	if r := rows[1]; !r.CanIncrement || r.CanDecrement || r.Name != "Lightning Bolt" {
		t.Errorf("row 1 = %+v, want increment only", r)
	}
	if r := rows[2]; r.CanIncrement || !r.CanDecrement {
		t.Errorf("row 2 = %+v, want decrement only", r)
	}
	if state.TotalCards != 7 {
		t.Errorf("TotalCards = %d, want 7", state.TotalCards)
	}
}

func TestDeckDetailIncrementDecrement(t *testing.T) {
	ctx := context.Background()
	s, reg := setupDetail(t)
	dd, _ := reg.Get(ctx, 1)

	if _, err := dd.Increment(ctx, 2); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Increment() at cap error = %v, want ErrValidation", err)
	}
	if _, err := dd.Decrement(ctx, 1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Decrement() at one copy error = %v, want ErrValidation", err)
	}
	if _, err := dd.Increment(ctx, 3); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Increment() of a card not in the deck error = %v, want ErrNotFound", err)
	}

	state, err := dd.Increment(ctx, 1)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if e, _ := mustDeck(t, s, 1).Entry(1); e.Qty != 2 {
		t.Errorf("qty after increment = %d, want 2", e.Qty)
	}
	if state.TotalCards != 8 {
		t.Errorf("rendered TotalCards = %d, want 8", state.TotalCards)
	}

	if _, err := dd.Decrement(ctx, 2); err != nil {
		t.Fatalf("Decrement() error = %v", err)
	}
	if e, _ := mustDeck(t, s, 1).Entry(2); e.Qty != 3 {
		t.Errorf("qty after decrement = %d, want 3", e.Qty)
	}
}

func TestDeckDetailRemoveFlow(t *testing.T) {
	ctx := context.Background()
	s, reg := setupDetail(t)
	dd, _ := reg.Get(ctx, 1)

	if _, err := dd.ConfirmRemove(ctx); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ConfirmRemove() without request error = %v, want ErrValidation", err)
	}

	dd.RequestRemove(1)
	dd.CancelRemove()
	if _, ok := dd.Pending(); ok {
		t.Fatal("CancelRemove() should clear the pending card")
	}
	if _, ok := mustDeck(t, s, 1).Entry(1); !ok {
		t.Fatal("CancelRemove() must not touch the deck")
	}

	dd.RequestRemove(1)
	dd.RequestRemove(2)
	again, _ := reg.Get(ctx, 1)
	if pending, ok := again.Pending(); !ok || pending != 2 {
		t.Fatalf("Pending() = %d, %v; want the latest request on the shared view", pending, ok)
	}

	state, err := dd.ConfirmRemove(ctx)
	if err != nil {
		t.Fatalf("ConfirmRemove() error = %v", err)
	}
	if state.PendingRemove != nil {
		t.Error("pending marker should be cleared after confirmation")
	}
	deck := mustDeck(t, s, 1)
	if _, ok := deck.Entry(2); ok {
		t.Error("card 2 should be removed entirely")
	}
	if _, ok := deck.Entry(1); !ok {
		t.Error("card 1 should be untouched")
	}
}

func TestDetailRegistryResolveAndPrune(t *testing.T) {
	ctx := context.Background()
	s, reg := setupDetail(t)

	byName, err := reg.Resolve(ctx, "", " Fire Deck ")
	if err != nil || byName.DeckID() != 1 {
		t.Fatalf("Resolve(name) = %v, %v", byName, err)
	}
	byID, err := reg.Resolve(ctx, "1", "ignored")
	if err != nil || byID != byName {
		t.Fatalf("Resolve(id) should return the same view, got %v, %v", byID, err)
	}

	tests := []struct {
		id, name string
		want     error
	}{
		{id: "abc", want: domain.ErrValidation},
		{want: domain.ErrValidation},
		{id: "42", want: domain.ErrNotFound},
		{name: "Missing", want: domain.ErrNotFound},
	}
	for _, tt := range tests {
		if _, err := reg.Resolve(ctx, tt.id, tt.name); !errors.Is(err, tt.want) {
			t.Errorf("Resolve(%q, %q) error = %v, want %v", tt.id, tt.name, err, tt.want)
		}
	}

	if err := byID.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("registry holds %d views after the deck was deleted", reg.Len())
	}
	if err := byID.Delete(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if len(s.List(ctx)) != 0 {
		t.Error("deck should be gone")
	}
}

func TestCatalogCardsAndFavorites(t *testing.T) {
	ctx := context.Background()
	favs := &fakeFavorites{favorites: []domain.Favorite{{ID: "a", CardID: 2}}}
	cat := NewCatalog(testCatalog, favs, newStore(), nil)

	cards := cat.Cards(ctx)
	if len(cards) != 3 || cards[0].IsFavorite || !cards[1].IsFavorite {
		t.Fatalf("Cards() = %+v", cards)
	}

	on, err := cat.ToggleFavorite(ctx, 1)
	if err != nil || !on {
		t.Fatalf("ToggleFavorite(1) = %v, %v; want true", on, err)
	}
	on, err = cat.ToggleFavorite(ctx, 2)
	if err != nil || on {
		t.Fatalf("ToggleFavorite(2) = %v, %v; want false", on, err)
	}

	remaining, _ := favs.Favorites(ctx)
	if len(remaining) != 1 || remaining[0].CardID != 1 {
		t.Errorf("favorites = %+v, want only card 1", remaining)
	}
}

func TestCatalogDegradesGracefully(t *testing.T) {
	ctx := context.Background()

	noFavs := NewCatalog(testCatalog, &fakeFavorites{listErr: errors.New("down")}, newStore(), nil)
	for _, c := range noFavs.Cards(ctx) {
		if c.IsFavorite {
			t.Errorf("card %d marked favorite while favorites are down", c.ID)
		}
	}

	noCards := NewCatalog(staticCards{err: errors.New("down")}, &fakeFavorites{}, newStore(), nil)
	if cards := noCards.Cards(ctx); cards == nil || len(cards) != 0 {
		t.Errorf("Cards() = %#v, want empty", cards)
	}
}

func TestToggleFavoriteFailure(t *testing.T) {
	favs := &fakeFavorites{writeErr: domain.ErrNetwork}
	cat := NewCatalog(testCatalog, favs, newStore(), nil)

	_, err := cat.ToggleFavorite(context.Background(), 1)
	var userErr *UserError
	if !errors.As(err, &userErr) || userErr.Message != FavoriteFailureMessage {
		t.Fatalf("ToggleFavorite() error = %v, want a UserError", err)
	}
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("ToggleFavorite() error = %v, want it to wrap ErrNetwork", err)
	}
	if len(favs.favorites) != 0 {
		t.Error("a failed toggle must not change favorites")
	}
}

func TestCatalogDeckOptions(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	cat := NewCatalog(testCatalog, &fakeFavorites{}, s, nil)

	for _, name := range []string{"Has it", "Without"} {
		if _, err := s.Create(ctx, name, "", ""); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := cat.AddToDeck(ctx, 1, 3, 2); err != nil {
		t.Fatalf("AddToDeck() error = %v", err)
	}

	opts := cat.DeckOptions(ctx, 3)
	if len(opts) != 2 {
		t.Fatalf("DeckOptions() = %+v", opts)
	}
	if !opts[0].AlreadyOnDeck || opts[0].Qty != 2 || len(opts[0].Choices) != 0 {
		t.Errorf("option for deck 1 = %+v", opts[0])
	}
	if opts[1].AlreadyOnDeck || len(opts[1].Choices) != domain.MaxCopies {
		t.Errorf("option for deck 2 = %+v", opts[1])
	}

	if _, err := cat.AddToDeck(ctx, 42, 3, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AddToDeck(unknown deck) error = %v, want ErrNotFound", err)
	}
}

func mustDeck(t *testing.T, s *decks.Store, id int) domain.Deck {
	t.Helper()
	d, ok := s.GetByID(context.Background(), id)
	if !ok {
		t.Fatalf("deck %d not found", id)
	}
	return d
}
