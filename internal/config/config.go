package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every variable. Unprefixed names such as PORT and DB_PATH are
// still honored as fallbacks.
const EnvPrefix = "PRINTQUOTE"

const (
	EnvAppEnv      = "PRINTQUOTE_APP_ENV"
	EnvPort        = "PRINTQUOTE_PORT"
	EnvDBPath      = "PRINTQUOTE_DB_PATH"
	EnvLogLevel    = "PRINTQUOTE_LOG_LEVEL"
	EnvLogFormat   = "PRINTQUOTE_LOG_FORMAT"
	EnvQuoteStore  = "PRINTQUOTE_QUOTE_STORE"
	EnvRedisURL    = "PRINTQUOTE_REDIS_URL"
	EnvRatesPath   = "PRINTQUOTE_RATES_PATH"
	EnvAutoMigrate = "PRINTQUOTE_AUTO_MIGRATE"
	EnvSeed        = "PRINTQUOTE_SEED"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"dev"`
	Port      string `envconfig:"PORT" default:"8080"`
	DBPath    string `envconfig:"DB_PATH" default:"./dev.db"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	QuoteStore string `envconfig:"QUOTE_STORE" default:"sqlite"`
	RedisURL   string `envconfig:"REDIS_URL"`

	// RatesPath points at a JSON rate table. Empty uses the built-in rates.
	RatesPath string `envconfig:"RATES_PATH"`

	AutoMigrate bool `envconfig:"AUTO_MIGRATE" default:"true"`
	Seed        bool `envconfig:"SEED" default:"true"`
}

// Load reads .env (if present) and the environment, then validates the result.
func Load() (Config, error) {
	// Best-effort: production injects real env, and existing variables win.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.QuoteStore {
	case StoreSQLite:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvRedisURL, EnvQuoteStore, StoreRedis)
		}
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvQuoteStore, StoreSQLite, StoreRedis, c.QuoteStore)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("%s must be json or console, got %q", EnvLogFormat, c.LogFormat)
	}
	return nil
}

// IsDev reports whether the app runs in the dev environment.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.AppEnv, AppEnvDev)
}

// IsProd reports whether the app runs in production.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.AppEnv, AppEnvProd)
}
