package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"OPENDOTA_BASE_URL", "OPENDOTA_API_KEY", "DB_PATH", "SERVER_PORT", "LOG_LEVEL",
		"STATIC_CACHE_TTL", "PLAYER_CACHE_TTL", "MATCHUP_REQUEST_INTERVAL", "FETCH_RETRIES",
		"MIN_MATCHUP_GAMES", "SHRINKAGE_STRENGTH", "RECOMMENDATION_LIMIT",
		"COUNTER_FALLBACK_FLOOR", "COUNTER_FALLBACK_CEIL", "SYNERGY_FLOOR", "SYNERGY_CEIL",
		"PROFICIENCY_GRACE", "PROFICIENCY_DECAY_SPAN", "PROFICIENCY_DECAY_FLOOR",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://api.opendota.com/api", cfg.OpenDotaBaseURL)
	assert.Equal(t, 24*time.Hour, cfg.StaticCacheTTL)
	assert.Equal(t, 6*time.Hour, cfg.PlayerCacheTTL)
	assert.Equal(t, 25, cfg.Stats.MinGames)
	assert.Equal(t, 20.0, cfg.Stats.Shrinkage)
	assert.Equal(t, 3, cfg.Scoring.RecommendationLimit)
	assert.Equal(t, 0.3, cfg.Relation.CounterFloor)
	assert.Equal(t, 0.54, cfg.Relation.SynergyCeil)
	assert.Equal(t, 30*24*time.Hour, cfg.Proficiency.Grace)
	assert.Equal(t, 0.5, cfg.Proficiency.DecayFloor)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MIN_MATCHUP_GAMES", "50")
	t.Setenv("SHRINKAGE_STRENGTH", "10.5")
	t.Setenv("RECOMMENDATION_LIMIT", "5")
	t.Setenv("PLAYER_CACHE_TTL", "1h")
	t.Setenv("COUNTER_FALLBACK_CEIL", "0.65")
	t.Setenv("PROFICIENCY_GRACE", "168h")
	t.Setenv("PROFICIENCY_DECAY_FLOOR", "0.25")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0.65, cfg.Relation.CounterCeil)
	assert.Equal(t, 7*24*time.Hour, cfg.Proficiency.Grace)
	assert.Equal(t, 0.25, cfg.Proficiency.DecayFloor)
	assert.Equal(t, 50, cfg.Stats.MinGames)
	assert.Equal(t, 10.5, cfg.Stats.Shrinkage)
	assert.Equal(t, 5, cfg.Scoring.RecommendationLimit)
	assert.Equal(t, time.Hour, cfg.PlayerCacheTTL)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"MIN_MATCHUP_GAMES":       "-1",
		"RECOMMENDATION_LIMIT":    "0",
		"STATIC_CACHE_TTL":        "soon",
		"SHRINKAGE_STRENGTH":      "strong",
		"PLAYER_CACHE_TTL":        "48h",
		"COUNTER_FALLBACK_FLOOR":  "0.8",
		"SYNERGY_CEIL":            "1.5",
		"PROFICIENCY_DECAY_FLOOR": "1.2",
		"PROFICIENCY_DECAY_SPAN":  "-1h",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
