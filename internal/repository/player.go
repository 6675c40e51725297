package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"draft-assistant/internal/domain"

	"github.com/rs/zerolog"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.PlayerProfile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, name, created_at, updated_at FROM player_profiles WHERE id = ?`, id)

	var p domain.PlayerProfile
	if err := row.Scan(&p.ID, &p.AccountID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		r.logger.Error().Err(err).Str("player_id", id).Msg("failed to get player")
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return &p, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]domain.PlayerProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, name, created_at, updated_at FROM player_profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []domain.PlayerProfile
	for rows.Next() {
		var p domain.PlayerProfile
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.PlayerProfile) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO player_profiles (id, account_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			name = excluded.name,
			updated_at = excluded.updated_at`,
		player.ID, player.AccountID, player.Name, now, now)
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", player.ID).Msg("failed to upsert player")
		return fmt.Errorf("failed to upsert player %s: %w", player.ID, err)
	}
	return nil
}
