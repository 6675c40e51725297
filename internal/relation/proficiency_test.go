package relation

import (
	"testing"
	"time"

	"draft-assistant/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawProficiencyDiminishingReturns(t *testing.T) {
	cfg := DefaultProficiencyConfig()

	score := func(games int) float64 {
		return RawProficiency(domain.PlayerHeroStat{Games: games, Wins: games / 2, WinRate: 0.5}, cfg)
	}

	gain1 := score(20) - score(10)
	gain2 := score(110) - score(100)
	assert.Greater(t, gain1, 0.0)
	assert.Greater(t, gain1, gain2)

	assert.Equal(t, 0.0, RawProficiency(domain.PlayerHeroStat{}, cfg))
}

func TestNormalizeProficiencyScalesToHundred(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	heroes := map[int]domain.PlayerHeroStat{
		1: {Games: 100, Wins: 60, WinRate: 0.6, LastPlayed: now.Unix()},
		2: {Games: 10, Wins: 4, WinRate: 0.4, LastPlayed: now.Unix()},
	}

	scores := NormalizeProficiency(heroes, DefaultProficiencyConfig(), now)
	require.Len(t, scores, 2)
	assert.InDelta(t, 100.0, scores[1], 1e-9)
	assert.Greater(t, scores[2], 0.0)
	assert.Less(t, scores[2], 100.0)
}

func TestNormalizeProficiencyAllZero(t *testing.T) {
	scores := NormalizeProficiency(map[int]domain.PlayerHeroStat{7: {}}, DefaultProficiencyConfig(), time.Now())
	assert.Equal(t, 0.0, scores[7])
}

func TestRecencyFactor(t *testing.T) {
	cfg := DefaultProficiencyConfig()
	now := time.Unix(1_700_000_000, 0)
	day := 24 * time.Hour

	assert.Equal(t, 1.0, RecencyFactor(now.Add(-10*day).Unix(), cfg, now))
	assert.Equal(t, 1.0, RecencyFactor(0, cfg, now))

	mid := RecencyFactor(now.Add(-120*day).Unix(), cfg, now)
	assert.InDelta(t, 0.75, mid, 1e-9)

	assert.Equal(t, cfg.DecayFloor, RecencyFactor(now.Add(-2000*day).Unix(), cfg, now))
}

func TestProficiencyCoversOnlyPlayedHeroes(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	p := NewProficiency(&domain.PlayerData{Proficiency: map[int]domain.PlayerHeroStat{
		1: {Games: 50, Wins: 30, WinRate: 0.6, LastPlayed: now.Unix()},
		2: {Games: 20, Wins: 8, WinRate: 0.4, LastPlayed: now.Unix()},
	}}, DefaultProficiencyConfig(), now)
	require.NotNil(t, p)

	assert.Equal(t, 0.0, p.Score(3))
	assert.Greater(t, p.Score(2), 0.0)
	assert.LessOrEqual(t, p.Score(1), 100.0)

	assert.Nil(t, NewProficiency(nil, DefaultProficiencyConfig(), now))
}
