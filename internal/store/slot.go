// Package store holds the persistence slot abstraction used by the deck
// store. A slot is one named key holding an opaque byte payload; the deck
// collection is stored there as a JSON array.
package store

import (
	"context"
	"sync"
)

// Slot is a single named persistence key.
//
// Load returns (nil, nil) when nothing was ever saved. Each Load and Save
// must be atomic with respect to the other; callers handle read-modify-write.
type Slot interface {
	Key() string
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Pinger is implemented by slots backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by slots owning a connection.
type Closer interface {
	Close() error
}

// Memory is a process-local slot, used for tests and ephemeral runs.
type Memory struct {
	key  string
	mu   sync.RWMutex
	data []byte
}

// NewMemory creates an empty in-memory slot.
func NewMemory(key string) *Memory {
	return &Memory{key: key}
}

func (m *Memory) Key() string { return m.key }

func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, nil
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *Memory) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.mu.Lock()
	m.data = buf
	m.mu.Unlock()
	return nil
}
