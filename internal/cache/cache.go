package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

var ErrMiss = errors.New("cache miss")

const (
	KeyHeroStats     = "static:hero_stats"
	KeyCounterMatrix = "static:counter_matrix"
	PlayerPrefix     = "player:"
)

func PlayerKey(playerID string) string {
	return PlayerPrefix + playerID
}

type Entry struct {
	Key       string
	Payload   []byte
	StoredAt  time.Time
	ExpiresAt time.Time
}

func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is the cache contract. Get returns expired entries too; whether stale
// data is usable is the caller's decision.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Cached is a decoded cache entry.
type Cached[T any] struct {
	Value     T
	StoredAt  time.Time
	ExpiresAt time.Time
}

func (c *Cached[T]) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func GetJSON[T any](ctx context.Context, s Store, key string) (*Cached[T], error) {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(entry.Payload, &v); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return &Cached[T]{Value: v, StoredAt: entry.StoredAt, ExpiresAt: entry.ExpiresAt}, nil
}

func SetJSON[T any](ctx context.Context, s Store, key string, v T, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	return s.Set(ctx, key, payload, ttl)
}
