// Package config loads shelf settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bookshelf/src/internal/bookmeta"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheLRU    = "lru"
	CacheRedis  = "redis"
)

// Config holds every tunable the CLI and API server read.
type Config struct {
	DataFile     string
	Primary      bookmeta.Source
	Timeout      time.Duration
	RPS          float64
	Cache        string
	CacheSize    int
	RedisAddr    string
	RedisTTL     time.Duration
	Addr         string
	LogLevel     slog.Level
	GoogleAPIKey string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataFile:  "data/books.yaml",
		Primary:   bookmeta.GoogleBooks,
		Timeout:   15 * time.Second,
		Cache:     CacheMemory,
		CacheSize: 256,
		RedisAddr: "localhost:6379",
		RedisTTL:  24 * time.Hour,
		Addr:      ":8080",
		LogLevel:  slog.LevelInfo,
	}
}

// Load reads the named .env files (missing files are ignored; existing
// environment variables win) and then the SHELF_* environment.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	var err error
	c.DataFile = get("SHELF_DATA_FILE", c.DataFile)
	if c.Primary, err = bookmeta.ParseSource(get("SHELF_PRIMARY", string(c.Primary))); err != nil {
		return Config{}, fmt.Errorf("config: SHELF_PRIMARY: %w", err)
	}
	if c.Timeout, err = time.ParseDuration(get("SHELF_TIMEOUT", c.Timeout.String())); err != nil {
		return Config{}, fmt.Errorf("config: SHELF_TIMEOUT: %w", err)
	}
	if c.RPS, err = strconv.ParseFloat(get("SHELF_RPS", "0"), 64); err != nil {
		return Config{}, fmt.Errorf("config: SHELF_RPS: %w", err)
	}
	c.Cache = strings.ToLower(get("SHELF_CACHE", c.Cache))
	switch c.Cache {
	case CacheNone, CacheMemory, CacheLRU, CacheRedis:
	default:
		return Config{}, fmt.Errorf("config: SHELF_CACHE: unknown backend %q", c.Cache)
	}
	if c.CacheSize, err = strconv.Atoi(get("SHELF_CACHE_SIZE", strconv.Itoa(c.CacheSize))); err != nil {
		return Config{}, fmt.Errorf("config: SHELF_CACHE_SIZE: %w", err)
	}
	c.RedisAddr = get("SHELF_REDIS_ADDR", c.RedisAddr)
	if c.RedisTTL, err = time.ParseDuration(get("SHELF_REDIS_TTL", c.RedisTTL.String())); err != nil {
		return Config{}, fmt.Errorf("config: SHELF_REDIS_TTL: %w", err)
	}
	c.Addr = get("SHELF_ADDR", c.Addr)
	if err := c.LogLevel.UnmarshalText([]byte(get("SHELF_LOG_LEVEL", c.LogLevel.String()))); err != nil {
		return Config{}, fmt.Errorf("config: SHELF_LOG_LEVEL: %w", err)
	}
	c.GoogleAPIKey = get("GOOGLE_BOOKS_API_KEY", "")
	return c, nil
}
