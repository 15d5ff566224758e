package fx

import (
	"context"

	"scam-arena/internal/api"
	"scam-arena/internal/config"
	"scam-arena/internal/database"
	"scam-arena/internal/db"
	"scam-arena/internal/keyring"
	"scam-arena/internal/logger"
	"scam-arena/internal/repository"
	"scam-arena/internal/server"
	"scam-arena/internal/service"
	"scam-arena/internal/supabase"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideStores picks the persistence backend: the hosted store when a
// Supabase URL is configured, otherwise a local SQLite file when DB_PATH is
// set. With neither, the hosted client is returned unconfigured and every
// call fails with a configuration error.
func ProvideStores(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (service.AgentStore, service.BattleStore, error) {
	if cfg.SupabaseURL == "" && cfg.DBPath != "" {
		sqlDB, err := database.Open(cfg.DBPath, logger)
		if err != nil {
			return nil, nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if err := sqlDB.Close(); err != nil {
					logger.Warn().Err(err).Msg("error closing database connection")
				}
				return nil
			},
		})

		queries := db.New(sqlDB)
		logger.Info().Str("path", cfg.DBPath).Msg("using sqlite store")
		return repository.NewAgentRepository(queries, logger),
			repository.NewBattleRepository(queries, logger),
			nil
	}

	client := supabase.NewClient(cfg, logger)
	logger.Info().Str("url", cfg.SupabaseURL).Msg("using supabase store")
	return supabase.NewAgentTable(client), supabase.NewBattleTable(client), nil
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	// stores
	fx.Provide(ProvideStores),
	// inference
	fx.Provide(
		fx.Annotate(keyring.NewFromConfig, fx.As(new(api.KeySource))),
		fx.Annotate(api.NewCerebrasClient, fx.As(new(service.Chatter))),
	),
	fx.Provide(service.DefaultRand),
	fx.Provide(service.SystemClock),
	// svc
	fx.Provide(service.NewPitchGenerator),
	fx.Provide(service.NewBattleResolver),
	fx.Provide(service.NewAgentService),
	fx.Provide(service.NewBattleService),
	// server
	fx.Provide(server.NewArenaServer),
)
