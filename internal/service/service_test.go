package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"draft-assistant/internal/api"
	"draft-assistant/internal/cache"
	"draft-assistant/internal/config"
	"draft-assistant/internal/database"
	"draft-assistant/internal/domain"
	"draft-assistant/internal/hero"
	"draft-assistant/internal/relation"
	"draft-assistant/internal/repository"
	"draft-assistant/internal/scoring"
	"draft-assistant/internal/stats"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeStatsSource struct {
	mu         sync.Mutex
	aggregates []domain.HeroAggregate
	matrix     domain.MatchupMatrix
	err        error
	calls      int
}

func (f *fakeStatsSource) GetHeroAggregates(ctx context.Context, heroIDs []int) ([]domain.HeroAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.aggregates, nil
}

func (f *fakeStatsSource) GetMatchupMatrix(ctx context.Context, heroIDs []int) (domain.MatchupMatrix, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.matrix, nil
}

func (f *fakeStatsSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePlayerSource struct {
	mu     sync.Mutex
	heroes []api.PlayerHeroEntry
	err    error
	calls  int
}

func (f *fakePlayerSource) GetPlayerHeroes(ctx context.Context, accountID string) ([]api.PlayerHeroEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.heroes, nil
}

func (f *fakePlayerSource) GetPlayerProfile(ctx context.Context, accountID string) (*api.PlayerResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	res := &api.PlayerResponse{}
	res.Profile.PersonaName = "tester"
	return res, nil
}

func (f *fakePlayerSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func testConfig() *config.Config {
	return &config.Config{
		StaticCacheTTL: 24 * time.Hour,
		PlayerCacheTTL: 6 * time.Hour,
		Stats:          stats.DefaultOptions(),
		Scoring:        scoring.DefaultConfig(),
		Relation:       relation.DefaultConfig(),
		Proficiency:    relation.DefaultProficiencyConfig(),
	}
}

func testIndex(t *testing.T) *hero.Index {
	t.Helper()
	idx, err := hero.NewDefault()
	require.NoError(t, err)
	return idx
}

// fullSource reports every roster hero with distinct win rates and measured
// matchups for every pair.
func fullSource(idx *hero.Index) *fakeStatsSource {
	ids := idx.IDs()
	src := &fakeStatsSource{matrix: make(domain.MatchupMatrix)}
	for n, id := range ids {
		h, _ := idx.ByID(id)
		src.aggregates = append(src.aggregates, domain.HeroAggregate{
			HeroID:     id,
			SourceName: h.Name,
			TotalPicks: 1000,
			TotalWins:  470 + n*3,
		})
		row := make(map[int]domain.Matchup)
		for m, opp := range ids {
			if opp == id {
				continue
			}
			row[opp] = domain.Matchup{GamesPlayed: 200, Wins: 100 + (n-m)*2}
		}
		src.matrix[id] = row
	}
	return src
}

func newTestStatsService(t *testing.T, src StatsSource, store cache.Store) *StatsService {
	t.Helper()
	return NewStatsService(src, store, testIndex(t), testConfig(), zerolog.Nop())
}

func newTestPlayerService(t *testing.T, src PlayerSource, store cache.Store) *PlayerService {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.NewPlayerRepository(db, zerolog.Nop())
	return NewPlayerService(src, repo, store, testIndex(t), testConfig(), zerolog.Nop())
}

var errSourceDown = errors.New("source down")
