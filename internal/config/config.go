// Package config resolves runtime settings. Each value is taken from an
// explicit override first, then the environment, then a compiled-in default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBackendURL   = "http://localhost:8000"
	DefaultListenAddr   = ":8080"
	DefaultCacheTTL     = 5 * time.Minute
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultHistoryLimit = 50
)

// Environment variables checked for the optimizer URL, most specific first.
var backendURLKeys = []string{"BUSROUTE_BACKEND_URL", "BACKEND_URL"}

type Config struct {
	BackendURL   string
	ListenAddr   string
	DatabaseURL  string
	RedisAddress string
	RedisPass    string
	RedisDB      int
	CacheTTL     time.Duration
	HTTPTimeout  time.Duration
	HistoryLimit int
	LogFormat    string
	Debug        bool
}

// Overrides carries explicitly supplied values (CLI flags, tests).
// Empty fields fall through to the environment.
type Overrides struct {
	BackendURL string
	ListenAddr string
}

// LoadDotEnv reads a .env file when present. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found (using environment variables)")
	}
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// First returns the first non-blank environment value among keys.
func First(keys []string, fallback string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return fallback
}

// Load resolves the configuration. It does not read .env; call LoadDotEnv
// first when that is wanted.
func Load(o Overrides) (Config, error) {
	cfg := Config{
		BackendURL:   pick(o.BackendURL, First(backendURLKeys, DefaultBackendURL)),
		ListenAddr:   pick(o.ListenAddr, Get("BUSROUTE_LISTEN", DefaultListenAddr)),
		DatabaseURL:  Get("DATABASE_URL", ""),
		RedisAddress: Get("REDIS_ADDRESS", ""),
		RedisPass:    Get("REDIS_PASSWORD", ""),
		LogFormat:    Get("BUSROUTE_LOG_FORMAT", ""),
		Debug:        Get("BUSROUTE_DEBUG", "") == "YES",
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.HistoryLimit, err = getInt("BUSROUTE_HISTORY_LIMIT", DefaultHistoryLimit); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getDuration("BUSROUTE_CACHE_TTL", DefaultCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = getDuration("BUSROUTE_HTTP_TIMEOUT", DefaultHTTPTimeout); err != nil {
		return Config{}, err
	}

	if cfg.BackendURL == "" {
		return Config{}, fmt.Errorf("load config: backend url must be non-empty")
	}

	return cfg, nil
}

func pick(override, resolved string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	return resolved
}

func getInt(key string, fallback int) (int, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("load config: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("load config: %s: %w", key, err)
	}
	return d, nil
}
