package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
)

// flexInt decodes identifiers served either as numbers or as numeric
// strings ("42" and 42 are the same card).
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid numeric id %q", s)
		}
		*f = flexInt(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	i, err := n.Int64()
	if err != nil {
		return fmt.Errorf("invalid numeric id %s", n)
	}
	*f = flexInt(i)
	return nil
}

// flexID keeps an opaque identifier as a string whatever its JSON type.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type wireCard struct {
	ID     flexInt `json:"id"`
	Name   string  `json:"name"`
	ImgURL string  `json:"img_url"`
}

func (w wireCard) card() domain.Card {
	return domain.Card{ID: int(w.ID), Name: w.Name, ImgURL: w.ImgURL}
}

type wireFavorite struct {
	ID     flexID  `json:"id"`
	CardID flexInt `json:"card_id"`
}

func (w wireFavorite) favorite() domain.Favorite {
	return domain.Favorite{ID: string(w.ID), CardID: int(w.CardID)}
}
