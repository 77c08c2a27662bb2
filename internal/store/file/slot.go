// Package file stores a slot as a JSON file on local disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/manaforge/internal/utils"
)

// Slot writes its payload to <dir>/<key>.json through a temp file and a
// rename, so readers never observe a partial write.
type Slot struct {
	key  string
	path string
}

// New returns a slot rooted in dir. The directory is created on first save.
func New(dir, key string) (*Slot, error) {
	if key == "" {
		return nil, errors.New("slot key is required")
	}
	if dir == "" {
		dir = "."
	}
	return &Slot{key: key, path: filepath.Join(dir, key+".json")}, nil
}

func (s *Slot) Key() string { return s.key }

// Path is the file backing the slot.
func (s *Slot) Path() string { return s.path }

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read slot file: %w", err)
	}
	return data, nil
}

func (s *Slot) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+s.key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		utils.Close(tmp)
		return fmt.Errorf("failed to write slot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		utils.Close(tmp)
		return fmt.Errorf("failed to sync slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close slot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace slot file: %w", err)
	}
	return nil
}
