package config

import (
	"fmt"
	"os"

	"scam-arena/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	CerebrasAPIKeys []string
	CerebrasBaseURL string
	CerebrasModel   string

	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	DBPath     string
	ServerPort string
	LogLevel   string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		CerebrasAPIKeys:    apiKeys(),
		CerebrasBaseURL:    getEnv("CEREBRAS_BASE_URL", "https://api.cerebras.ai/v1"),
		CerebrasModel:      getEnv("CEREBRAS_MODEL", constants.DefaultModel),
		SupabaseURL:        getEnv("SUPABASE_URL", os.Getenv("NEXT_PUBLIC_SUPABASE_URL")),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", os.Getenv("NEXT_PUBLIC_SUPABASE_ANON_KEY")),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		DBPath:             getEnv("DB_PATH", ""),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	// missing credentials are reported at first use, not at startup
	if len(cfg.CerebrasAPIKeys) == 0 {
		logger.Warn().Msg("no CEREBRAS_API_KEY_n values set, model calls will fail")
	}
	if cfg.SupabaseURL == "" && cfg.DBPath == "" {
		logger.Warn().Msg("neither SUPABASE_URL nor DB_PATH set, data calls will fail")
	}

	logger.Info().
		Int("api_keys", len(cfg.CerebrasAPIKeys)).
		Str("cerebras_base_url", cfg.CerebrasBaseURL).
		Str("model", cfg.CerebrasModel).
		Str("supabase_url", cfg.SupabaseURL).
		Str("supabase_service_key", Mask(cfg.SupabaseServiceKey)).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

// apiKeys collects CEREBRAS_API_KEY_1..N in order, skipping unset slots.
func apiKeys() []string {
	var keys []string
	for i := 1; i <= constants.MaxAPIKeys; i++ {
		if v := os.Getenv(fmt.Sprintf("CEREBRAS_API_KEY_%d", i)); v != "" {
			keys = append(keys, v)
		}
	}
	return keys
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
