package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"draft-assistant/internal/constants"
	"draft-assistant/internal/relation"
	"draft-assistant/internal/scoring"
	"draft-assistant/internal/stats"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	OpenDotaBaseURL string
	OpenDotaAPIKey  string
	DBPath          string
	ServerPort      string
	LogLevel        string

	StaticCacheTTL time.Duration
	PlayerCacheTTL time.Duration

	MatchupRequestInterval time.Duration
	FetchRetries           int

	Stats       stats.Options
	Scoring     scoring.Config
	Relation    relation.Config
	Proficiency relation.ProficiencyConfig
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("opendota_base_url", cfg.OpenDotaBaseURL).
		Bool("opendota_api_key", cfg.OpenDotaAPIKey != "").
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("static_cache_ttl", cfg.StaticCacheTTL).
		Dur("player_cache_ttl", cfg.PlayerCacheTTL).
		Int("min_matchup_games", cfg.Stats.MinGames).
		Float64("shrinkage", cfg.Stats.Shrinkage).
		Int("recommendation_limit", cfg.Scoring.RecommendationLimit).
		Float64("proficiency_decay_floor", cfg.Proficiency.DecayFloor).
		Msg("configuration loaded")

	return cfg, nil
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	var err error
	cfg := &Config{
		OpenDotaBaseURL: getEnv("OPENDOTA_BASE_URL", "https://api.opendota.com/api"),
		OpenDotaAPIKey:  getEnv("OPENDOTA_API_KEY", ""),
		DBPath:          getEnv("DB_PATH", "draft.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Stats:           stats.DefaultOptions(),
		Scoring:         scoring.DefaultConfig(),
		Relation:        relation.DefaultConfig(),
		Proficiency:     relation.DefaultProficiencyConfig(),
	}

	if cfg.StaticCacheTTL, err = getDuration("STATIC_CACHE_TTL", constants.StaticCacheTTL); err != nil {
		return nil, err
	}
	if cfg.PlayerCacheTTL, err = getDuration("PLAYER_CACHE_TTL", constants.PlayerCacheTTL); err != nil {
		return nil, err
	}
	if cfg.MatchupRequestInterval, err = getDuration("MATCHUP_REQUEST_INTERVAL", constants.MatchupRequestInterval); err != nil {
		return nil, err
	}
	if cfg.FetchRetries, err = getInt("FETCH_RETRIES", constants.FetchRetries); err != nil {
		return nil, err
	}
	if cfg.Stats.MinGames, err = getInt("MIN_MATCHUP_GAMES", stats.DefaultMinGames); err != nil {
		return nil, err
	}
	if cfg.Stats.Shrinkage, err = getFloat("SHRINKAGE_STRENGTH", stats.DefaultShrinkage); err != nil {
		return nil, err
	}
	if cfg.Scoring.RecommendationLimit, err = getInt("RECOMMENDATION_LIMIT", cfg.Scoring.RecommendationLimit); err != nil {
		return nil, err
	}
	if cfg.Relation.CounterFloor, err = getFloat("COUNTER_FALLBACK_FLOOR", cfg.Relation.CounterFloor); err != nil {
		return nil, err
	}
	if cfg.Relation.CounterCeil, err = getFloat("COUNTER_FALLBACK_CEIL", cfg.Relation.CounterCeil); err != nil {
		return nil, err
	}
	if cfg.Relation.SynergyFloor, err = getFloat("SYNERGY_FLOOR", cfg.Relation.SynergyFloor); err != nil {
		return nil, err
	}
	if cfg.Relation.SynergyCeil, err = getFloat("SYNERGY_CEIL", cfg.Relation.SynergyCeil); err != nil {
		return nil, err
	}
	if cfg.Proficiency.Grace, err = getDuration("PROFICIENCY_GRACE", cfg.Proficiency.Grace); err != nil {
		return nil, err
	}
	if cfg.Proficiency.DecaySpan, err = getDuration("PROFICIENCY_DECAY_SPAN", cfg.Proficiency.DecaySpan); err != nil {
		return nil, err
	}
	if cfg.Proficiency.DecayFloor, err = getFloat("PROFICIENCY_DECAY_FLOOR", cfg.Proficiency.DecayFloor); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OpenDotaBaseURL == "" {
		return fmt.Errorf("OPENDOTA_BASE_URL must not be empty")
	}
	if c.StaticCacheTTL <= 0 || c.PlayerCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.PlayerCacheTTL > c.StaticCacheTTL {
		return fmt.Errorf("PLAYER_CACHE_TTL (%s) must not exceed STATIC_CACHE_TTL (%s)", c.PlayerCacheTTL, c.StaticCacheTTL)
	}
	if c.MatchupRequestInterval < 0 {
		return fmt.Errorf("MATCHUP_REQUEST_INTERVAL must not be negative")
	}
	if c.FetchRetries < 0 {
		return fmt.Errorf("FETCH_RETRIES must not be negative")
	}
	if err := c.Stats.Validate(); err != nil {
		return err
	}
	if err := c.Relation.Validate(); err != nil {
		return err
	}
	if err := c.Proficiency.Validate(); err != nil {
		return err
	}
	return c.Scoring.Validate()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

var Module = fx.Provide(Load)
