package store

import (
	"context"
	"testing"
)

func TestMemoryLoadEmpty(t *testing.T) {
	slot := NewMemory("decks")
	data, err := slot.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if data != nil {
		t.Errorf("Load() = %q, want nil", data)
	}
	if slot.Key() != "decks" {
		t.Errorf("Key() = %q, want decks", slot.Key())
	}
}

func TestMemorySaveCopiesPayload(t *testing.T) {
	ctx := context.Background()
	slot := NewMemory("decks")

	payload := []byte(`[{"id":1}]`)
	if err := slot.Save(ctx, payload); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	payload[0] = 'X'

	data, err := slot.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != `[{"id":1}]` {
		t.Errorf("Load() = %q, caller mutation leaked into the slot", data)
	}
}

func TestMemoryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slot := NewMemory("decks")
	if err := slot.Save(ctx, []byte("[]")); err == nil {
		t.Error("Save() with a canceled context should fail")
	}
	if _, err := slot.Load(ctx); err == nil {
		t.Error("Load() with a canceled context should fail")
	}
}
