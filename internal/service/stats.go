package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"draft-assistant/internal/cache"
	"draft-assistant/internal/config"
	"draft-assistant/internal/constants"
	"draft-assistant/internal/domain"
	"draft-assistant/internal/hero"
	"draft-assistant/internal/stats"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrStatsUnavailable = errors.New("hero statistics unavailable")
	ErrStatsNotLoaded   = errors.New("hero statistics not loaded yet")
)

// StatsSource is implemented by api.OpenDotaClient.
type StatsSource interface {
	GetHeroAggregates(ctx context.Context, heroIDs []int) ([]domain.HeroAggregate, error)
	GetMatchupMatrix(ctx context.Context, heroIDs []int) (domain.MatchupMatrix, error)
}

type StatsService struct {
	source StatsSource
	store  cache.Store
	index  *hero.Index
	opts   stats.Options
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time

	loadMu     sync.Mutex
	current    atomic.Pointer[stats.Table]
	generation atomic.Uint64
}

func NewStatsService(source StatsSource, store cache.Store, index *hero.Index, cfg *config.Config, logger zerolog.Logger) *StatsService {
	return &StatsService{
		source: source,
		store:  store,
		index:  index,
		opts:   cfg.Stats,
		ttl:    cfg.StaticCacheTTL,
		logger: logger,
		now:    time.Now,
	}
}

type statsSnapshot struct {
	aggregates []domain.HeroAggregate
	matrix     domain.MatchupMatrix
	fresh      bool
}

// Load builds a new table and publishes it. Unless force is set a fresh and
// complete cache is used as is. A failed fetch falls back to whatever the
// cache holds, stale or not; the current table is kept if that fails too.
func (s *StatsService) Load(ctx context.Context, force bool) (*stats.Table, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, constants.StatsLoadTimeout)
	defer cancel()

	s.logger.Info().Bool("force", force).Msg("loading hero statistics")

	cached, cacheErr := s.readCache(ctx)
	if cacheErr != nil && !errors.Is(cacheErr, cache.ErrMiss) {
		s.logger.Warn().Err(cacheErr).Msg("failed to read statistics cache")
	}

	if !force && cacheErr == nil && cached.fresh {
		if cached.matrix.FilledRows() >= s.index.Len() {
			s.logger.Debug().Msg("using cached hero statistics")
			return s.publish(cached.aggregates, cached.matrix, "cache")
		}
		s.logger.Info().
			Int("rows", cached.matrix.FilledRows()).
			Int("roster", s.index.Len()).
			Msg("cached matchup matrix incomplete, refetching")
	}

	aggregates, matrix, err := s.fetch(ctx)
	if err == nil {
		if err := cache.SetJSON(ctx, s.store, cache.KeyHeroStats, aggregates, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache hero stats")
		}
		if err := cache.SetJSON(ctx, s.store, cache.KeyCounterMatrix, matrix, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache counter matrix")
		}
		return s.publish(aggregates, matrix, "source")
	}

	s.logger.Error().Err(err).Msg("failed to fetch hero statistics")
	if cacheErr == nil {
		s.logger.Warn().Msg("falling back to cached hero statistics")
		return s.publish(cached.aggregates, cached.matrix, "stale cache")
	}

	return nil, fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
}

func (s *StatsService) readCache(ctx context.Context) (*statsSnapshot, error) {
	heroStats, err := cache.GetJSON[[]domain.HeroAggregate](ctx, s.store, cache.KeyHeroStats)
	if err != nil {
		return nil, err
	}
	matrix, err := cache.GetJSON[domain.MatchupMatrix](ctx, s.store, cache.KeyCounterMatrix)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &statsSnapshot{
		aggregates: heroStats.Value,
		matrix:     matrix.Value,
		fresh:      !heroStats.Expired(now) && !matrix.Expired(now),
	}, nil
}

func (s *StatsService) fetch(ctx context.Context) ([]domain.HeroAggregate, domain.MatchupMatrix, error) {
	ids := s.index.IDs()

	g, gCtx := errgroup.WithContext(ctx)
	var aggregates []domain.HeroAggregate
	var matrix domain.MatchupMatrix

	g.Go(func() error {
		var err error
		aggregates, err = s.source.GetHeroAggregates(gCtx, ids)
		if err != nil {
			return fmt.Errorf("failed to fetch hero stats: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		matrix, err = s.source.GetMatchupMatrix(gCtx, ids)
		if err != nil {
			return fmt.Errorf("failed to fetch matchup matrix: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if len(aggregates) == 0 {
		return nil, nil, errors.New("source returned no hero stats")
	}
	return aggregates, matrix, nil
}

func (s *StatsService) publish(aggregates []domain.HeroAggregate, matrix domain.MatchupMatrix, origin string) (*stats.Table, error) {
	table, err := stats.Normalize(s.index, aggregates, matrix, s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize hero statistics: %w", err)
	}

	table = table.WithGeneration(s.generation.Add(1))
	s.current.Store(table)

	q := table.Quality()
	event := s.logger.Info()
	if len(q.MissingHeroes) > 0 {
		event = s.logger.Warn().Ints("missing_heroes", q.MissingHeroes)
	}
	event.
		Str("origin", origin).
		Uint64("generation", table.Generation()).
		Int("heroes", q.TotalHeroes).
		Int("counter_relations", q.TotalCounterRelations).
		Int("dropped_relations", q.DroppedRelations).
		Float64("avg_counters_per_hero", q.AverageCountersPerHero).
		Msg("hero statistics published")

	return table, nil
}

// Table returns the most recently published table.
func (s *StatsService) Table() (*stats.Table, error) {
	t := s.current.Load()
	if t == nil {
		return nil, ErrStatsNotLoaded
	}
	return t, nil
}

func (s *StatsService) Quality() (stats.Quality, error) {
	t, err := s.Table()
	if err != nil {
		return stats.Quality{}, err
	}
	return t.Quality(), nil
}
