package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory keeps entries in process. Entries are stored without go-cache
// expiry so stale values stay readable; Entry.ExpiresAt carries the TTL.
type Memory struct {
	c   *gocache.Cache
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		c:   gocache.New(gocache.NoExpiration, 10*time.Minute),
		now: time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (*Entry, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	e := v.(Entry)
	return &e, nil
}

func (m *Memory) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	now := m.now()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.c.Set(key, Entry{
		Key:       key,
		Payload:   buf,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}, gocache.NoExpiration)
	return nil
}

// put stores an entry with its original timestamps.
func (m *Memory) put(e Entry) {
	m.c.Set(e.Key, e, gocache.NoExpiration)
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	for key := range m.c.Items() {
		if strings.HasPrefix(key, prefix) {
			m.c.Delete(key)
		}
	}
	return nil
}

// Layered reads the in-memory front first and back-fills it from the
// persistent store.
type Layered struct {
	front *Memory
	back  Store
}

func NewLayered(front *Memory, back Store) *Layered {
	return &Layered{front: front, back: back}
}

func (l *Layered) Get(ctx context.Context, key string) (*Entry, error) {
	if e, err := l.front.Get(ctx, key); err == nil {
		return e, nil
	}
	e, err := l.back.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	l.front.put(*e)
	return e, nil
}

func (l *Layered) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := l.back.Set(ctx, key, payload, ttl); err != nil {
		return err
	}
	return l.front.Set(ctx, key, payload, ttl)
}

func (l *Layered) Delete(ctx context.Context, key string) error {
	if err := l.back.Delete(ctx, key); err != nil {
		return err
	}
	return l.front.Delete(ctx, key)
}

func (l *Layered) DeletePrefix(ctx context.Context, prefix string) error {
	if err := l.back.DeletePrefix(ctx, prefix); err != nil {
		return err
	}
	return l.front.DeletePrefix(ctx, prefix)
}
