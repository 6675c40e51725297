package stats

import (
	"fmt"
	"sort"

	"draft-assistant/internal/domain"
	"draft-assistant/internal/hero"
)

const (
	NeutralWinRate = 0.5

	DefaultMinGames  = 25
	DefaultShrinkage = 20.0
)

type Options struct {
	// MinGames is the smallest matchup sample kept. Smaller samples are dropped
	// so the estimator can fall back instead of trusting noise.
	MinGames int
	// Shrinkage is the prior strength k in (wins + k*prior) / (games + k).
	Shrinkage float64
	Prior     float64
}

func DefaultOptions() Options {
	return Options{
		MinGames:  DefaultMinGames,
		Shrinkage: DefaultShrinkage,
		Prior:     NeutralWinRate,
	}
}

func (o Options) Validate() error {
	if o.MinGames < 0 {
		return fmt.Errorf("min games must be non-negative, got %d", o.MinGames)
	}
	if o.Shrinkage < 0 {
		return fmt.Errorf("shrinkage must be non-negative, got %f", o.Shrinkage)
	}
	if o.Prior < 0 || o.Prior > 1 {
		return fmt.Errorf("prior must be in [0,1], got %f", o.Prior)
	}
	return nil
}

// Quality summarizes how much of the roster the upstream data covers.
type Quality struct {
	TotalHeroes            int     `json:"total_heroes"`
	HeroesWithCounterData  int     `json:"heroes_with_counter_data"`
	TotalCounterRelations  int     `json:"total_counter_relations"`
	DroppedRelations       int     `json:"dropped_relations"`
	AverageCountersPerHero float64 `json:"average_counters_per_hero"`
	MissingHeroes          []int   `json:"missing_heroes"`
}

// WinRate fails soft to the neutral rate when there are no picks.
func WinRate(wins, picks int) float64 {
	if picks <= 0 {
		return NeutralWinRate
	}
	return float64(wins) / float64(picks)
}

// Shrink pulls a small-sample win rate toward prior.
func Shrink(wins, games int, k, prior float64) float64 {
	denom := float64(games) + k
	if denom <= 0 {
		return prior
	}
	return (float64(wins) + k*prior) / denom
}

// Normalize turns raw source output into a Table. Heroes outside the roster
// are ignored; roster heroes with no aggregate row are left out and reported
// as missing.
func Normalize(idx *hero.Index, aggregates []domain.HeroAggregate, matrix domain.MatchupMatrix, opts Options) (*Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	t := &Table{
		heroes:  make(map[int]HeroStats, idx.Len()),
		aliases: make(map[string]int, idx.Len()*3),
	}

	for alias, id := range idx.Aliases() {
		t.aliases[alias] = id
	}

	q := Quality{}

	for _, agg := range aggregates {
		if !idx.Contains(agg.HeroID) {
			continue
		}
		if _, seen := t.heroes[agg.HeroID]; seen {
			continue
		}

		counters := make(map[int]float64)
		for opponent, m := range matrix[agg.HeroID] {
			if !idx.Contains(opponent) || opponent == agg.HeroID {
				continue
			}
			if m.GamesPlayed <= 0 || m.GamesPlayed < opts.MinGames {
				q.DroppedRelations++
				continue
			}
			counters[opponent] = Shrink(m.Wins, m.GamesPlayed, opts.Shrinkage, opts.Prior)
		}

		t.heroes[agg.HeroID] = HeroStats{
			ID:       agg.HeroID,
			WinRate:  WinRate(agg.TotalWins, agg.TotalPicks),
			Picks:    agg.TotalPicks,
			Wins:     agg.TotalWins,
			Counters: counters,
		}

		if agg.SourceName != "" {
			key := hero.NormalizeAlias(agg.SourceName)
			if _, taken := t.aliases[key]; !taken {
				t.aliases[key] = agg.HeroID
			}
		}

		if len(counters) > 0 {
			q.HeroesWithCounterData++
			q.TotalCounterRelations += len(counters)
		}
	}

	q.TotalHeroes = len(t.heroes)
	if q.HeroesWithCounterData > 0 {
		q.AverageCountersPerHero = float64(q.TotalCounterRelations) / float64(q.HeroesWithCounterData)
	}
	for _, id := range idx.IDs() {
		if _, ok := t.heroes[id]; !ok {
			q.MissingHeroes = append(q.MissingHeroes, id)
		}
	}
	sort.Ints(q.MissingHeroes)
	t.quality = q

	return t, nil
}
