package constants

import "time"

const (
	StaticCacheTTL = 24 * time.Hour
	PlayerCacheTTL = 6 * time.Hour
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	// building the matchup matrix is one request per roster hero
	StatsLoadTimeout = 2 * time.Minute
)

const (
	MatchupRequestInterval = 100 * time.Millisecond
	FetchRetries           = 3
	RetryBaseDelay         = 500 * time.Millisecond
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
