package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type redisStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetAndTouch(ctx context.Context, key string, ttl time.Duration) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(cartID string) string
}

// RedisPersister stores JSON snapshots with a sliding TTL; every read or write
// pushes the expiry forward.
type RedisPersister struct {
	store redisStore
	ttl   time.Duration
}

func NewRedisPersister(store redisStore, ttl time.Duration) (*RedisPersister, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("cart ttl must not be negative")
	}
	return &RedisPersister{store: store, ttl: ttl}, nil
}

func (p *RedisPersister) Load(ctx context.Context, key string) (Cart, error) {
	raw, err := p.store.GetAndTouch(ctx, p.store.CartKey(key), p.ttl)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Cart{}, nil
		}
		return Cart{}, fmt.Errorf("load cart %s: %w", key, err)
	}
	return decodeSnapshot([]byte(raw))
}

func (p *RedisPersister) Save(ctx context.Context, key string, cart Cart) error {
	raw, err := encodeSnapshot(cart)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, p.store.CartKey(key), raw, p.ttl); err != nil {
		return fmt.Errorf("save cart %s: %w", key, err)
	}
	return nil
}

func (p *RedisPersister) Delete(ctx context.Context, key string) error {
	if err := p.store.Del(ctx, p.store.CartKey(key)); err != nil {
		return fmt.Errorf("delete cart %s: %w", key, err)
	}
	return nil
}
