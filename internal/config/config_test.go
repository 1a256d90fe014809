package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.DBPath != "./dev.db" {
		t.Fatalf("DBPath=%q, want %q", cfg.DBPath, "./dev.db")
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "8080")
	}
	if cfg.QuoteStore != StoreSQLite {
		t.Fatalf("QuoteStore=%q, want %q", cfg.QuoteStore, StoreSQLite)
	}
	if !cfg.IsDev() || cfg.IsProd() {
		t.Fatalf("expected dev environment, got %q", cfg.AppEnv)
	}
	if !cfg.AutoMigrate || !cfg.Seed {
		t.Fatalf("expected migrations and seed on by default: %+v", cfg)
	}
}

func TestLoad_PrefixedEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv(EnvAppEnv, "PROD")
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvQuoteStore, StoreRedis)
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvSeed, "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.IsProd() {
		t.Fatalf("expected prod environment, got %q", cfg.AppEnv)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "9090")
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.RedisURL)
	}
	if cfg.Seed {
		t.Fatal("expected seed to be disabled")
	}
}

func TestLoad_UnprefixedFallback(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_PATH", "/tmp/quotes.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DBPath != "/tmp/quotes.db" {
		t.Fatalf("DBPath=%q, want %q", cfg.DBPath, "/tmp/quotes.db")
	}
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := chdirTemp(t)
	content := []byte(`
# comment

PRINTQUOTE_PORT=7000
export PRINTQUOTE_LOG_LEVEL=debug
PRINTQUOTE_RATES_PATH="rates.json"
`)
	if err := os.WriteFile(filepath.Join(dir, ".env"), content, 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	t.Setenv(EnvPort, "7100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Port != "7100" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "7100")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel=%q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.RatesPath != "rates.json" {
		t.Fatalf("RatesPath=%q, want %q", cfg.RatesPath, "rates.json")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{EnvQuoteStore: "postgres"}},
		{"redis without url", map[string]string{EnvQuoteStore: StoreRedis}},
		{"unknown log format", map[string]string{EnvLogFormat: "xml"}},
		{"bad bool", map[string]string{EnvAutoMigrate: "maybe"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chdirTemp(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected Load() to fail")
			}
		})
	}
}

var allEnv = []string{
	EnvAppEnv, EnvPort, EnvDBPath, EnvLogLevel, EnvLogFormat,
	EnvQuoteStore, EnvRedisURL, EnvRatesPath, EnvAutoMigrate, EnvSeed,
}

// chdirTemp isolates Load from the host: it runs in an empty directory with every
// config variable unset, restored after the test.
func chdirTemp(t *testing.T) string {
	t.Helper()

	for _, key := range allEnv {
		for _, k := range []string{key, strings.TrimPrefix(key, EnvPrefix+"_")} {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%q): %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}
