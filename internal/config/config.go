package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageFile     = "file"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port           string
	Env            string
	StorageBackend string
	DataFile       string
	MigrationsPath string
	PublicBaseURL  string
	AllowedOrigins []string

	DB     DatabaseConfig
	Redis  RedisConfig
	Share  ShareConfig
	Worker WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters. URL, when set,
// takes precedence over the individual fields.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the connection string for lib/pq.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// ShareConfig controls shared depleted-product lists.
type ShareConfig struct {
	TTL             time.Duration
	RateLimit       int
	RateLimitWindow time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	ReconcileInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", StoragePostgres))
	cfg.DataFile = getEnv("DATA_FILE", "data/productos.json")
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", "file://migrations")
	cfg.PublicBaseURL = strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", ""), "/")
	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"))

	// Database
	cfg.DB = DatabaseConfig{
		URL:      getEnv("DATABASE_URL", ""),
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis (optional: share links are disabled without it)
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	var err error
	if cfg.Share.TTL, err = parseDurationEnv("SHARE_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid SHARE_TTL: %w", err)
	}
	if cfg.Share.RateLimitWindow, err = parseDurationEnv("SHARE_RATE_LIMIT_WINDOW", "1m"); err != nil {
		return nil, fmt.Errorf("invalid SHARE_RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.Share.RateLimit = getEnvInt("SHARE_RATE_LIMIT", 10)

	// Workers (durations); zero disables the worker.
	if cfg.Worker.ReconcileInterval, err = parseDurationEnv("RECONCILE_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case StoragePostgres:
		if c.DB.URL == "" && (c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "") {
			return errors.New("database configuration incomplete: set DATABASE_URL or DB_HOST, DB_USER and DB_NAME")
		}
	case StorageFile:
		if c.DataFile == "" {
			return errors.New("DATA_FILE must be set for the file storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q: use %q or %q", c.StorageBackend, StoragePostgres, StorageFile)
	}
	if c.Redis.Enabled() && c.Share.TTL <= 0 {
		return errors.New("SHARE_TTL must be > 0 when share links are enabled")
	}
	if c.Share.RateLimit < 0 {
		return errors.New("SHARE_RATE_LIMIT must be >= 0")
	}
	if c.Share.RateLimit > 0 && c.Share.RateLimitWindow <= 0 {
		return errors.New("SHARE_RATE_LIMIT_WINDOW must be > 0 when SHARE_RATE_LIMIT is set")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
