package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"draft-assistant/internal/cache"
	"draft-assistant/internal/database"
	"draft-assistant/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewCacheRepository(openTestDB(t), zerolog.Nop())

	_, err := repo.Get(ctx, cache.KeyHeroStats)
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, repo.Set(ctx, cache.KeyHeroStats, []byte(`[1,2,3]`), time.Hour))
	entry, err := repo.Get(ctx, cache.KeyHeroStats)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2,3]`), entry.Payload)
	assert.False(t, entry.Expired(time.Now()))
	assert.True(t, entry.Expired(time.Now().Add(2*time.Hour)))

	require.NoError(t, repo.Set(ctx, cache.KeyHeroStats, []byte(`[4]`), time.Hour))
	entry, err = repo.Get(ctx, cache.KeyHeroStats)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[4]`), entry.Payload)

	require.NoError(t, repo.Delete(ctx, cache.KeyHeroStats))
	_, err = repo.Get(ctx, cache.KeyHeroStats)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestCacheRepositoryKeepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	repo := NewCacheRepository(openTestDB(t), zerolog.Nop())
	repo.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	require.NoError(t, repo.Set(ctx, cache.KeyCounterMatrix, []byte(`{}`), time.Hour))
	entry, err := repo.Get(ctx, cache.KeyCounterMatrix)
	require.NoError(t, err)
	assert.True(t, entry.Expired(time.Now()))
}

func TestCacheRepositoryDeletePrefix(t *testing.T) {
	ctx := context.Background()
	repo := NewCacheRepository(openTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Set(ctx, cache.PlayerKey("kai"), []byte(`{}`), time.Hour))
	require.NoError(t, repo.Set(ctx, cache.PlayerKey("body"), []byte(`{}`), time.Hour))
	require.NoError(t, repo.Set(ctx, cache.KeyHeroStats, []byte(`[]`), time.Hour))

	require.NoError(t, repo.DeletePrefix(ctx, cache.PlayerPrefix))

	_, err := repo.Get(ctx, cache.PlayerKey("kai"))
	assert.ErrorIs(t, err, cache.ErrMiss)
	_, err = repo.Get(ctx, cache.PlayerKey("body"))
	assert.ErrorIs(t, err, cache.ErrMiss)
	_, err = repo.Get(ctx, cache.KeyHeroStats)
	assert.NoError(t, err)
}

func TestPlayerRepositorySeeded(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository(openTestDB(t), zerolog.Nop())

	players, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 4)

	kai, err := repo.Get(ctx, "kai")
	require.NoError(t, err)
	assert.Equal(t, "139582452", kai.AccountID)

	_, err = repo.Get(ctx, "nobody")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository(openTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Upsert(ctx, &domain.PlayerProfile{ID: "guest", AccountID: "42", Name: "Guest"}))
	require.NoError(t, repo.Upsert(ctx, &domain.PlayerProfile{ID: "guest", AccountID: "43", Name: "Guest 2"}))

	got, err := repo.Get(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, "43", got.AccountID)
	assert.Equal(t, "Guest 2", got.Name)
}
