package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Persister stores full cart snapshots keyed by visitor cart id.
// Load returns an empty cart when nothing is stored for the key.
type Persister interface {
	Load(ctx context.Context, key string) (Cart, error)
	Save(ctx context.Context, key string, cart Cart) error
	Delete(ctx context.Context, key string) error
}

// MemoryPersister keeps snapshots in process. Used in dev and tests.
type MemoryPersister struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{carts: map[string][]byte{}}
}

func (m *MemoryPersister) Load(_ context.Context, key string) (Cart, error) {
	m.mu.RLock()
	raw, ok := m.carts[key]
	m.mu.RUnlock()
	if !ok {
		return Cart{}, nil
	}
	return decodeSnapshot(raw)
}

func (m *MemoryPersister) Save(_ context.Context, key string, cart Cart) error {
	raw, err := encodeSnapshot(cart)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.carts[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryPersister) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.carts, key)
	m.mu.Unlock()
	return nil
}

func encodeSnapshot(cart Cart) ([]byte, error) {
	raw, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return raw, nil
}

func decodeSnapshot(raw []byte) (Cart, error) {
	var cart Cart
	if len(raw) == 0 {
		return cart, nil
	}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return Cart{}, fmt.Errorf("decode cart snapshot: %w", err)
	}
	cart.normalize()
	return cart, nil
}
