package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"draft-assistant/internal/cache"

	"github.com/rs/zerolog"
)

// CacheRepository is the sqlite-backed cache.Store.
type CacheRepository struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

func NewCacheRepository(sqlDB *sql.DB, logger zerolog.Logger) *CacheRepository {
	return &CacheRepository{db: sqlDB, logger: logger, now: time.Now}
}

func (r *CacheRepository) Get(ctx context.Context, key string) (*cache.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT key, payload, stored_at, expires_at FROM cache_entries WHERE key = ?`, key)

	var e cache.Entry
	if err := row.Scan(&e.Key, &e.Payload, &e.StoredAt, &e.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cache.ErrMiss
		}
		r.logger.Error().Err(err).Str("key", key).Msg("failed to read cache entry")
		return nil, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	return &e, nil
}

func (r *CacheRepository) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, payload, stored_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at`,
		key, payload, now, now.Add(ttl))
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to write cache entry")
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}

	r.logger.Debug().Str("key", key).Int("bytes", len(payload)).Dur("ttl", ttl).Msg("cache entry stored")
	return nil
}

func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

func (r *CacheRepository) DeletePrefix(ctx context.Context, prefix string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE instr(key, ?) = 1`, prefix)
	if err != nil {
		return fmt.Errorf("failed to delete cache entries with prefix %s: %w", prefix, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		r.logger.Debug().Str("prefix", prefix).Int64("deleted", n).Msg("cache entries deleted")
	}
	return nil
}
