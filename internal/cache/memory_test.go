package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKeepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return base }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Hour))

	e, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), e.Payload)
	assert.False(t, e.Expired(base.Add(59*time.Minute)))
	assert.True(t, e.Expired(base.Add(time.Hour)))

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryDeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, PlayerKey("a"), []byte("1"), time.Hour))
	require.NoError(t, m.Set(ctx, PlayerKey("b"), []byte("2"), time.Hour))
	require.NoError(t, m.Set(ctx, KeyHeroStats, []byte("3"), time.Hour))

	require.NoError(t, m.Delete(ctx, PlayerKey("a")))
	_, err := m.Get(ctx, PlayerKey("a"))
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, PlayerKey("b"))
	assert.NoError(t, err)

	require.NoError(t, m.DeletePrefix(ctx, PlayerPrefix))
	_, err = m.Get(ctx, PlayerKey("b"))
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, KeyHeroStats)
	assert.NoError(t, err)
}

func TestLayeredBackfillsFront(t *testing.T) {
	ctx := context.Background()
	front, back := NewMemory(), NewMemory()
	l := NewLayered(front, back)

	require.NoError(t, back.Set(ctx, "k", []byte("v"), time.Hour))
	_, err := front.Get(ctx, "k")
	require.ErrorIs(t, err, ErrMiss)

	e, err := l.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), e.Payload)

	_, err = front.Get(ctx, "k")
	assert.NoError(t, err)

	require.NoError(t, l.Delete(ctx, "k"))
	_, err = l.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type payload struct {
		Rates map[int]float64 `json:"rates"`
	}
	require.NoError(t, SetJSON(ctx, m, "p", payload{Rates: map[int]float64{1: 0.5}}, time.Minute))

	got, err := GetJSON[payload](ctx, m, "p")
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Value.Rates[1])
	assert.False(t, got.Expired(got.StoredAt))

	require.NoError(t, m.Set(ctx, "broken", []byte("{"), time.Minute))
	_, err = GetJSON[payload](ctx, m, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
