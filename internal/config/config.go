package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds application configuration from environment.
// Loaded once at startup and passed to constructors; read-only afterwards.
type Config struct {
	HTTPPort        string
	DatabaseURL     string
	DBPoolSize      int
	RedisURL        string
	RedisPoolSize   int
	CacheTTL        time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaPartitions int
	JWTSecret       string
	TokenTTL        time.Duration
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// ErrMissingSecret is returned when JWT_SECRET is unset. The service cannot
// issue or validate tokens without it, so startup must fail.
var ErrMissingSecret = errors.New("config: JWT_SECRET is not set")

// Load returns the application config (reads the environment once).
func Load() (*Config, error) {
	cfgOnce.Do(func() {
		cfg = &Config{
			HTTPPort:        getEnv("HTTP_PORT", "8080"),
			DatabaseURL:     os.Getenv("DATABASE_URL"),
			DBPoolSize:      getIntEnv("DB_POOL_SIZE", 50),
			RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
			RedisPoolSize:   getIntEnv("REDIS_POOL_SIZE", 100),
			CacheTTL:        time.Duration(getIntEnv("CACHE_TTL_SEC", 300)) * time.Second,
			KafkaBrokers:    getSliceEnv("KAFKA_BROKERS", "localhost:9092"),
			KafkaTopic:      getEnv("KAFKA_TODO_TOPIC", "todo-events"),
			KafkaPartitions: getIntEnv("KAFKA_PARTITIONS", 16),
			JWTSecret:       os.Getenv("JWT_SECRET"),
			TokenTTL:        time.Duration(getIntEnv("TOKEN_TTL_MIN", 60)) * time.Minute,
		}
	})
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getSliceEnv(key, defaultVal string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = defaultVal
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
