package fx

import (
	"database/sql"

	"draft-assistant/internal/api"
	"draft-assistant/internal/cache"
	"draft-assistant/internal/config"
	"draft-assistant/internal/database"
	"draft-assistant/internal/hero"
	"draft-assistant/internal/logger"
	"draft-assistant/internal/repository"
	"draft-assistant/internal/server"
	"draft-assistant/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideCache puts the in-process cache in front of the sqlite one.
func ProvideCache(sqlDB *sql.DB, logger zerolog.Logger) cache.Store {
	return cache.NewLayered(cache.NewMemory(), repository.NewCacheRepository(sqlDB, logger))
}

func ProvideStatsSource(c *api.OpenDotaClient) service.StatsSource {
	return c
}

func ProvidePlayerSource(c *api.OpenDotaClient) service.PlayerSource {
	return c
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(hero.NewDefault),
	// storage
	fx.Provide(ProvideCache),
	fx.Provide(repository.NewPlayerRepository),
	// api client
	fx.Provide(api.NewOpenDotaClient),
	fx.Provide(ProvideStatsSource),
	fx.Provide(ProvidePlayerSource),
	// svc
	fx.Provide(service.NewStatsService),
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewDraftService),
	// server
	fx.Provide(server.NewDraftServer),
)
