package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileSource reads the catalog from a local YAML file:
//
//	cards:
//	  - id: 1
//	    name: Lightning Bolt
//	    img_url: https://...
type FileSource struct {
	path string
}

type fileSchema struct {
	Cards []fileCard `yaml:"cards"`
}

type fileCard struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	ImgURL string `yaml:"img_url"`
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Cards(ctx context.Context) ([]domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	cards := make([]domain.Card, 0, len(schema.Cards))
	seen := make(map[int]bool, len(schema.Cards))
	for i, c := range schema.Cards {
		if c.ID <= 0 {
			return nil, fmt.Errorf("catalog entry %d: id must be positive", i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %d", i, c.ID)
		}
		seen[c.ID] = true
		cards = append(cards, domain.Card{ID: c.ID, Name: c.Name, ImgURL: c.ImgURL})
	}
	return cards, nil
}
