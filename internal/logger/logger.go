package logger

import (
	"os"

	"scam-arena/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(zerolog.DebugLevel)

	return logger
}

// ApplyLevel sets the process-wide level from LOG_LEVEL. The logger itself is
// built before config so config loading can log.
func ApplyLevel(cfg *config.Config, logger zerolog.Logger) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level, keeping debug")
		return
	}
	zerolog.SetGlobalLevel(level)
	logger.Debug().Str("level", level.String()).Msg("log level applied")
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(ApplyLevel),
)
