package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"draft-assistant/internal/api"
	"draft-assistant/internal/cache"
	"draft-assistant/internal/config"
	"draft-assistant/internal/constants"
	"draft-assistant/internal/domain"
	"draft-assistant/internal/hero"
	"draft-assistant/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownPlayer         = errors.New("unknown player")
	ErrPlayerDataUnavailable = errors.New("player data unavailable")
)

// PlayerSource is implemented by api.OpenDotaClient.
type PlayerSource interface {
	GetPlayerHeroes(ctx context.Context, accountID string) ([]api.PlayerHeroEntry, error)
	GetPlayerProfile(ctx context.Context, accountID string) (*api.PlayerResponse, error)
}

type PlayerService struct {
	source PlayerSource
	repo   *repository.PlayerRepository
	store  cache.Store
	index  *hero.Index
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewPlayerService(source PlayerSource, repo *repository.PlayerRepository, store cache.Store, index *hero.Index, cfg *config.Config, logger zerolog.Logger) *PlayerService {
	return &PlayerService{
		source: source,
		repo:   repo,
		store:  store,
		index:  index,
		ttl:    cfg.PlayerCacheTTL,
		logger: logger,
		now:    time.Now,
	}
}

func (s *PlayerService) List(ctx context.Context) ([]domain.PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.repo.List(ctx)
}

func (s *PlayerService) Get(ctx context.Context, playerID string) (*domain.PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	p, err := s.repo.Get(ctx, playerID)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	return p, err
}

// Register adds or renames a player. A changed account drops the cached
// history so the next lookup fetches the new account.
func (s *PlayerService) Register(ctx context.Context, profile domain.PlayerProfile) (*domain.PlayerProfile, error) {
	if profile.ID == "" || profile.AccountID == "" {
		return nil, errors.New("player id and account id are required")
	}
	if profile.Name == "" {
		profile.Name = profile.ID
	}

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.repo.Upsert(dbCtx, &profile); err != nil {
		return nil, err
	}
	if err := s.Invalidate(ctx, profile.ID); err != nil {
		s.logger.Warn().Err(err).Str("player_id", profile.ID).Msg("failed to invalidate player cache")
	}

	s.logger.Info().Str("player_id", profile.ID).Str("account_id", profile.AccountID).Msg("player registered")
	return s.repo.Get(dbCtx, profile.ID)
}

// Proficiency returns the player's per-hero history restricted to the roster.
// Cached data is served until it expires; on a failed fetch stale cache is
// better than nothing.
func (s *PlayerService) Proficiency(ctx context.Context, playerID string, refresh bool) (*domain.PlayerData, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	profile, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	key := cache.PlayerKey(playerID)
	cached, cacheErr := cache.GetJSON[domain.PlayerData](ctx, s.store, key)
	if cacheErr != nil && !errors.Is(cacheErr, cache.ErrMiss) {
		s.logger.Warn().Err(cacheErr).Str("player_id", playerID).Msg("failed to read player cache")
	}

	if !refresh && cacheErr == nil && !cached.Expired(s.now()) {
		s.logger.Debug().Str("player_id", playerID).Msg("returning cached player data")
		return &cached.Value, nil
	}

	data, err := s.fetch(ctx, profile)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to fetch player data")
		if cacheErr == nil {
			s.logger.Warn().Str("player_id", playerID).Time("stored_at", cached.StoredAt).Msg("falling back to stale player data")
			return &cached.Value, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPlayerDataUnavailable, err)
	}

	if err := cache.SetJSON(ctx, s.store, key, data, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID).Msg("failed to cache player data")
	}

	s.logger.Info().Str("player_id", playerID).Int("heroes", len(data.Proficiency)).Msg("player data fetched")
	return data, nil
}

func (s *PlayerService) fetch(ctx context.Context, profile *domain.PlayerProfile) (*domain.PlayerData, error) {
	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	g, gCtx := errgroup.WithContext(apiCtx)
	var heroes []api.PlayerHeroEntry
	var info *api.PlayerResponse

	g.Go(func() error {
		var err error
		heroes, err = s.source.GetPlayerHeroes(gCtx, profile.AccountID)
		return err
	})

	// the profile only decorates the result, so its failure is not fatal
	g.Go(func() error {
		var err error
		info, err = s.source.GetPlayerProfile(gCtx, profile.AccountID)
		if err != nil {
			s.logger.Warn().Err(err).Str("account_id", profile.AccountID).Msg("failed to fetch player profile")
			info = nil
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &domain.PlayerData{
		PlayerID:    profile.ID,
		AccountID:   profile.AccountID,
		Proficiency: make(map[int]domain.PlayerHeroStat),
		FetchedAt:   s.now().UTC(),
	}
	if info != nil {
		data.PersonaName = info.Profile.PersonaName
		data.Avatar = info.Profile.AvatarFull
		if data.Avatar == "" {
			data.Avatar = info.Profile.Avatar
		}
	}

	for _, h := range heroes {
		id := int(h.HeroID)
		if !s.index.Contains(id) {
			continue
		}
		data.Proficiency[id] = newPlayerHeroStat(id, h)
	}
	return data, nil
}

// newPlayerHeroStat keeps the source's raw score, (wins*2 + games) * winRate.
// Scoring uses the normalized value computed by relation.NewProficiency.
func newPlayerHeroStat(id int, h api.PlayerHeroEntry) domain.PlayerHeroStat {
	var winRate float64
	if h.Games > 0 {
		winRate = float64(h.Win) / float64(h.Games)
	}
	return domain.PlayerHeroStat{
		HeroID:     id,
		Games:      h.Games,
		Wins:       h.Win,
		WinRate:    winRate,
		Score:      float64(h.Win*2+h.Games) * winRate,
		LastPlayed: h.LastPlayed,
	}
}

func (s *PlayerService) Invalidate(ctx context.Context, playerID string) error {
	return s.store.Delete(ctx, cache.PlayerKey(playerID))
}

func (s *PlayerService) InvalidateAll(ctx context.Context) error {
	return s.store.DeletePrefix(ctx, cache.PlayerPrefix)
}
