package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Slot stores the payload as a plain string value without expiry.
// A single SET keeps each save atomic.
type Slot struct {
	client *redis.Client
	name   string
}

// NewSlot binds the named slot to an already connected client.
func NewSlot(client *redis.Client, name string) *Slot {
	return &Slot{client: client, name: name}
}

func (s *Slot) Key() string { return s.name }

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, SlotKey(s.name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get slot %s: %w", s.name, err)
	}
	return data, nil
}

func (s *Slot) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, SlotKey(s.name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", s.name, err)
	}
	return nil
}

func (s *Slot) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Slot) Close() error {
	return s.client.Close()
}
