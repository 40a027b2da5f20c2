package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Unknown-error policies for check-time failures.
const (
	UnknownPolicyAllow = "allow"
	UnknownPolicyBlock = "block"
)

// DevAdminToken is used when ADMIN_TOKEN is unset. main warns loudly about it.
const DevAdminToken = "dev-admin-token-change-in-production"

// Server captures process level configuration. Everything an administrator edits
// at runtime (API token, enabled flag, message) lives in the settings store instead.
type Server struct {
	Addr       string
	AdminToken string
	HookSecret string

	Reputation ReputationConfig
	Settings   SettingsConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
}

// ReputationConfig configures the outbound API client.
type ReputationConfig struct {
	BaseURL string
	// Timeout is an optional client timeout; zero leaves only the caller's context.
	Timeout       time.Duration
	UnknownPolicy string
}

type SettingsConfig struct {
	Backend string
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

// RedisConfig mirrors the go-redis options we override.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Format string
	Level  string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:       envOr("MAILGUARD_ADDR", ":8080"),
		AdminToken: envOr("ADMIN_TOKEN", DevAdminToken),
		HookSecret: os.Getenv("HOOK_SECRET"),
		Reputation: ReputationConfig{
			BaseURL:       envOr("REPUTATION_BASE_URL", "https://api.api-aries.online"),
			UnknownPolicy: strings.ToLower(envOr("UNKNOWN_ERROR_POLICY", UnknownPolicyAllow)),
		},
		Settings: SettingsConfig{
			Backend: strings.ToLower(envOr("SETTINGS_BACKEND", BackendMemory)),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Log: LogConfig{
			Format: strings.ToLower(envOr("LOG_FORMAT", "json")),
			Level:  strings.ToLower(envOr("LOG_LEVEL", "info")),
		},
	}

	var err error
	if cfg.Reputation.Timeout, err = durationEnv("REPUTATION_HTTP_TIMEOUT", 0); err != nil {
		return Server{}, err
	}
	if cfg.Database.MaxOpenConns, err = intEnv("DATABASE_MAX_OPEN_CONNS", 10); err != nil {
		return Server{}, err
	}
	if cfg.Redis.PoolSize, err = intEnv("REDIS_POOL_SIZE", 10); err != nil {
		return Server{}, err
	}
	if cfg.Redis.MinIdleConns, err = intEnv("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return Server{}, err
	}
	if cfg.Redis.DialTimeout, err = durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.ReadTimeout, err = durationEnv("REDIS_READ_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.WriteTimeout, err = durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}

	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	switch c.Settings.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("SETTINGS_BACKEND=postgres requires DATABASE_URL")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("SETTINGS_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unsupported SETTINGS_BACKEND %q", c.Settings.Backend)
	}

	switch c.Reputation.UnknownPolicy {
	case UnknownPolicyAllow, UnknownPolicyBlock:
	default:
		return fmt.Errorf("unsupported UNKNOWN_ERROR_POLICY %q", c.Reputation.UnknownPolicy)
	}
	if c.Reputation.Timeout < 0 {
		return fmt.Errorf("REPUTATION_HTTP_TIMEOUT must not be negative")
	}
	return nil
}

// UsesDevAdminToken reports whether the admin surface is protected by the built-in
// development token.
func (c Server) UsesDevAdminToken() bool {
	return c.AdminToken == DevAdminToken
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q", key, v)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, v)
	}
	return d, nil
}
