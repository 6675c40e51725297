package scoring

import (
	"testing"
	"time"

	"draft-assistant/internal/domain"
	"draft-assistant/internal/hero"
	"draft-assistant/internal/relation"
	"draft-assistant/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	idx    *hero.Index
	engine *Engine
	ids    []int
}

// newFixture builds a table covering the whole default roster with win rates
// spread around 0.5 and a handful of measured matchups.
func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	idx, err := hero.NewDefault()
	require.NoError(t, err)

	ids := idx.IDs()
	aggregates := make([]domain.HeroAggregate, 0, len(ids))
	for n, id := range ids {
		aggregates = append(aggregates, domain.HeroAggregate{
			HeroID:     id,
			TotalPicks: 1000,
			TotalWins:  460 + n*4,
		})
	}
	matrix := domain.MatchupMatrix{}
	for n, id := range ids {
		row := map[int]domain.Matchup{}
		for m, opp := range ids {
			if opp == id || (n+m)%3 != 0 {
				continue
			}
			row[opp] = domain.Matchup{Wins: 40 + (n*7+m*3)%30, GamesPlayed: 100}
		}
		matrix[id] = row
	}

	table, err := stats.Normalize(idx, aggregates, matrix, stats.DefaultOptions())
	require.NoError(t, err)

	engine, err := NewEngine(relation.NewEstimator(table), DefaultConfig(), opts...)
	require.NoError(t, err)

	return fixture{idx: idx, engine: engine, ids: ids}
}

func playerFor(ids ...int) *relation.Proficiency {
	now := time.Unix(1_700_000_000, 0)
	data := &domain.PlayerData{Proficiency: map[int]domain.PlayerHeroStat{}}
	for n, id := range ids {
		games := 20 + n*15
		data.Proficiency[id] = domain.PlayerHeroStat{
			HeroID: id, Games: games, Wins: games / 2, WinRate: 0.5, LastPlayed: now.Unix(),
		}
	}
	return relation.NewProficiency(data, relation.DefaultProficiencyConfig(), now)
}

func TestDefaultProfilesAreValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	assert.Greater(t, WithoutPlayerWeights.CounterRelation, WithoutPlayerWeights.VersionWinRate)
	assert.InDelta(t, 1.0, WithPlayerWeights.Sum(), 1e-9)

	bad := DefaultConfig()
	bad.WithPlayer.SynergyRelation = 0.5
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.TeamCeil = 100
	assert.Error(t, bad.Validate())
}

func TestVersionScoreClampedAndMonotonic(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, 30.0, f.engine.VersionScore(0.1))
	assert.Equal(t, 70.0, f.engine.VersionScore(0.9))
	assert.InDelta(t, 52.0, f.engine.VersionScore(0.52), 1e-9)

	prev := 0.0
	for wr := 0.0; wr <= 1.0; wr += 0.01 {
		got := f.engine.VersionScore(wr)
		assert.GreaterOrEqual(t, got, prev)
		assert.Equal(t, got, relation.Clamp(got, 30, 70))
		prev = got
	}
}

func TestRecommendEmptyDraft(t *testing.T) {
	f := newFixture(t)

	recs := f.engine.Recommend(f.idx.All(), nil, nil, nil)
	require.Len(t, recs, DefaultConfig().RecommendationLimit)
	for _, r := range recs {
		assert.Equal(t, NeutralScore, r.Breakdown.CounterScore)
		assert.Nil(t, r.Breakdown.SynergyScore)
		assert.Nil(t, r.Breakdown.ProficiencyScore)
		assert.Equal(t, ProfileWithoutPlayer, r.Breakdown.Profile)
	}
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Breakdown.TotalScore, recs[i].Breakdown.TotalScore)
	}
}

func TestRecommendExcludesDrafted(t *testing.T) {
	f := newFixture(t)
	allies := f.ids[:2]
	enemies := f.ids[2:6]

	cfg := DefaultConfig()
	cfg.RecommendationLimit = 100
	engine, err := NewEngine(f.engine.est, cfg)
	require.NoError(t, err)

	recs := engine.Recommend(f.idx.All(), allies, enemies, nil)
	assert.Len(t, recs, len(f.ids)-6)
	for _, r := range recs {
		assert.NotContains(t, allies, r.Hero.ID)
		assert.NotContains(t, enemies, r.Hero.ID)
		assert.GreaterOrEqual(t, r.TotalScore, 0)
		assert.LessOrEqual(t, r.TotalScore, 100)
	}
}

func TestRecommendFullAllySide(t *testing.T) {
	f := newFixture(t)
	recs := f.engine.Recommend(f.idx.All(), f.ids[:5], nil, nil)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecommendFewerCandidatesThanLimit(t *testing.T) {
	f := newFixture(t)
	roster := f.idx.All()[:4]
	recs := f.engine.Recommend(roster, []int{roster[0].ID}, []int{roster[1].ID}, nil)
	assert.Len(t, recs, 2)
}

func TestScoreHeroIsDeterministic(t *testing.T) {
	f := newFixture(t)
	p := playerFor(f.ids[0], f.ids[1])

	a := f.engine.ScoreHero(f.ids[7], f.ids[:2], f.ids[10:13], p)
	b := f.engine.ScoreHero(f.ids[7], f.ids[:2], f.ids[10:13], p)
	assert.Equal(t, a, b)

	c := f.engine.ScoreHero(f.ids[7], f.ids[:2], f.ids[10:13], nil)
	d := f.engine.ScoreHero(f.ids[7], f.ids[:2], f.ids[10:13], nil)
	assert.Equal(t, c, d)
}

func TestScoreHeroWithPlayer(t *testing.T) {
	f := newFixture(t)
	p := playerFor(f.ids[3], f.ids[4])

	b := f.engine.ScoreHero(f.ids[3], nil, nil, p)
	require.NotNil(t, b.SynergyScore)
	require.NotNil(t, b.ProficiencyScore)
	assert.Equal(t, ProfileWithPlayer, b.Profile)
	assert.Equal(t, NeutralScore, *b.SynergyScore)
	assert.Greater(t, *b.ProficiencyScore, 0.0)

	w := WithPlayerWeights
	expected := w.VersionWinRate*b.VersionScore + w.CounterRelation*b.CounterScore +
		w.SynergyRelation**b.SynergyScore + w.PlayerProficiency**b.ProficiencyScore
	assert.InDelta(t, expected, b.TotalScore, 1e-9)

	uncovered := f.engine.ScoreHero(f.ids[9], nil, nil, p)
	assert.Equal(t, 0.0, *uncovered.ProficiencyScore)
}

func TestProficiencyCoverage(t *testing.T) {
	f := newFixture(t)
	p := playerFor(f.ids[0], f.ids[1])

	for n, id := range f.ids {
		score := f.engine.est.ProficiencyScore(id, p)
		if n < 2 {
			assert.Greater(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
			continue
		}
		assert.Equal(t, 0.0, score, "hero %d", id)
	}
}

func TestCounterScoreMonotonic(t *testing.T) {
	f := newFixture(t)
	id := f.ids[0]

	// an unknown enemy is neutral through the fallback
	assert.InDelta(t, f.engine.est.CounterFallback(f.engine.est.HeroWinRate(id), 0.5)*100,
		f.engine.CounterScore(id, []int{9999}), 1e-9)

	score := f.engine.CounterScore(id, f.ids[10:15])
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestEstimateTeamWinRate(t *testing.T) {
	f := newFixture(t)

	assert.Nil(t, f.engine.EstimateTeamWinRate(f.ids[:4], f.ids[5:10], nil))
	assert.Nil(t, f.engine.EstimateTeamWinRate(f.ids[:5], f.ids[5:9], nil))
	assert.Nil(t, f.engine.EstimateTeamWinRate(nil, nil, nil))

	res := f.engine.EstimateTeamWinRate(f.ids[:5], f.ids[5:10], nil)
	require.NotNil(t, res)
	assert.Equal(t, 100.0, res.Ally+res.Enemy)
	assert.GreaterOrEqual(t, res.Ally, 20.0)
	assert.LessOrEqual(t, res.Ally, 80.0)

	// the strongest heroes sit at the end of the roster in this fixture
	strong := f.engine.EstimateTeamWinRate(f.ids[15:20], f.ids[:5], nil)
	weak := f.engine.EstimateTeamWinRate(f.ids[:5], f.ids[15:20], nil)
	require.NotNil(t, strong)
	require.NotNil(t, weak)
	assert.Greater(t, strong.Ally, weak.Ally)
	assert.Equal(t, 100.0, weak.Ally+weak.Enemy)

	withPlayer := f.engine.EstimateTeamWinRate(f.ids[:5], f.ids[5:10], playerFor(f.ids[0]))
	require.NotNil(t, withPlayer)
	assert.Equal(t, 100.0, withPlayer.Ally+withPlayer.Enemy)
}

func TestTeamWinRateCountsEveryAllyProficiency(t *testing.T) {
	f := newFixture(t)
	allies, enemies := f.ids[:5], f.ids[5:10]

	// ids[1] becomes the best hero in the wider pool, ids[0] still scores above zero
	one := f.engine.EstimateTeamWinRate(allies, enemies, playerFor(f.ids[0]))
	two := f.engine.EstimateTeamWinRate(allies, enemies, playerFor(f.ids[0], f.ids[1]))
	require.NotNil(t, one)
	require.NotNil(t, two)
	assert.Greater(t, two.Ally, one.Ally)

	none := f.engine.EstimateTeamWinRate(allies, enemies, playerFor(f.ids[19]))
	require.NotNil(t, none)
	assert.Less(t, none.Ally, one.Ally)
}

func TestSplitHundred(t *testing.T) {
	for _, v := range []float64{20, 23.3333333, 49.99, 50, 61.7, 80} {
		got := splitHundred(v)
		assert.Equal(t, 100.0, got.Ally+got.Enemy, "%f", v)
		assert.InDelta(t, v, got.Ally, 1e-9)
	}
}

func TestObserverReceivesEvents(t *testing.T) {
	var events []Event
	f := newFixture(t, WithObserver(func(e Event) { events = append(events, e) }))

	f.engine.Recommend(f.idx.All(), nil, nil, nil)
	assert.Len(t, events, len(f.ids))
}
