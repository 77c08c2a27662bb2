package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested")

	slot, err := New(dir, "manaforge_decks")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	data, err := slot.Load(ctx)
	if err != nil {
		t.Fatalf("Load() on a missing file error = %v", err)
	}
	if data != nil {
		t.Fatalf("Load() on a missing file = %q, want nil", data)
	}

	if err := slot.Save(ctx, []byte(`[{"id":1,"name":"Burn"}]`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := slot.Save(ctx, []byte(`[]`)); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	data, err = slot.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Load() = %q, want []", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "manaforge_decks.json" {
		t.Errorf("data dir holds %v, want only the slot file", entries)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(t.TempDir(), ""); err == nil {
		t.Error("New() without a key should fail")
	}
}
