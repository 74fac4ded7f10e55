package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port     string
	LogLevel string
	GinMode  string

	Database DatabaseConfig
	Cache    CacheConfig
	Search   SearchConfig
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// CacheConfig is disabled when Addr is empty.
type CacheConfig struct {
	Addr       string
	DB         int
	TTLSeconds int
}

// SearchConfig is disabled when Addr is empty.
type SearchConfig struct {
	Addr  string
	Index string
}

func mustEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:     mustEnv("APP_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),
		GinMode:  mustEnv("GIN_MODE", "release"),
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     mustEnv("DB_HOST", "postgres"),
			Port:     mustEnv("DB_PORT", "5432"),
			User:     mustEnv("DB_USER", "pantun"),
			Password: mustEnv("DB_PASSWORD", "pantunpass"),
			Name:     mustEnv("DB_NAME", "pantundb"),
			SSLMode:  mustEnv("DB_SSLMODE", "disable"),
		},
		Cache: CacheConfig{
			Addr:       os.Getenv("REDIS_ADDR"),
			DB:         mustEnvInt("REDIS_DB", 0),
			TTLSeconds: mustEnvInt("CACHE_TTL_SECONDS", 300),
		},
		Search: SearchConfig{
			Addr:  os.Getenv("ES_ADDR"),
			Index: mustEnv("ES_INDEX", "pantun"),
		},
	}
}

// ConnString prefers DATABASE_URL and falls back to the DB_* parts.
func (d DatabaseConfig) ConnString() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (c *Config) Validate() error {
	var errs []error
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("invalid APP_PORT %q", c.Port))
	}
	if c.Cache.Addr != "" && c.Cache.TTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %d", c.Cache.TTLSeconds))
	}
	if c.Search.Addr != "" && c.Search.Index == "" {
		errs = append(errs, errors.New("ES_INDEX must not be empty when ES_ADDR is set"))
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("invalid GIN_MODE %q", c.GinMode))
	}
	return errors.Join(errs...)
}
