package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration for the wallet core.
type Server struct {
	Addr            string
	LogLevel        string
	LogFormat       string
	IssuerMarkers   []string
	ErrorBuffer     int
	ViewTTL         time.Duration
	ShutdownTimeout time.Duration
	Tracing         bool
	Redis           RedisConfig
}

// RedisConfig configures the credential record store. An empty URL keeps
// records in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultRedisConfig mirrors go-redis defaults closely enough for a single wallet.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		PoolSize:     10,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	redisCfg := DefaultRedisConfig()
	redisCfg.URL = os.Getenv("REDIS_URL")
	redisCfg.PoolSize = intEnv("REDIS_POOL_SIZE", redisCfg.PoolSize)
	redisCfg.MinIdleConns = intEnv("REDIS_MIN_IDLE_CONNS", redisCfg.MinIdleConns)
	redisCfg.DialTimeout = durationEnv("REDIS_DIAL_TIMEOUT", redisCfg.DialTimeout)
	redisCfg.ReadTimeout = durationEnv("REDIS_READ_TIMEOUT", redisCfg.ReadTimeout)
	redisCfg.WriteTimeout = durationEnv("REDIS_WRITE_TIMEOUT", redisCfg.WriteTimeout)

	return Server{
		Addr:            stringEnv("WALLET_ADDR", ":8080"),
		LogLevel:        stringEnv("WALLET_LOG_LEVEL", "info"),
		LogFormat:       stringEnv("WALLET_LOG_FORMAT", "json"),
		IssuerMarkers:   listEnv("WALLET_ISSUER_MARKERS"),
		ErrorBuffer:     intEnv("WALLET_ERROR_BUFFER", 64),
		ViewTTL:         durationEnv("WALLET_VIEW_TTL", 30*time.Minute),
		ShutdownTimeout: durationEnv("WALLET_SHUTDOWN_TIMEOUT", 10*time.Second),
		Tracing:         boolEnv("WALLET_TRACING"),
		Redis:           redisCfg,
	}
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func boolEnv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

// listEnv splits a comma separated variable, dropping blanks. Returns nil when unset.
func listEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
