package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/avend/stockroom/pkg/database"
	"github.com/avend/stockroom/pkg/logger"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
}

// RedisConfig holds the response cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// KafkaConfig holds event bus configuration; empty Brokers disables Kafka
type KafkaConfig struct {
	Brokers []string
	GroupID string
}

// Config holds all service configuration
type Config struct {
	ServiceName        string
	Server             ServerConfig
	DB                 database.Config
	Session            SessionConfig
	Redis              RedisConfig
	Kafka              KafkaConfig
	PermissionSeedFile string
}

// Load reads configuration from the environment, with an optional .env file
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// .env file is optional
		logger.Logger.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		ServiceName: getEnv("SERVICE_NAME", "stockroom"),
		Server: ServerConfig{
			Port:            getEnv("HTTP_PORT", "8080"),
			Env:             getEnv("APP_ENV", "development"),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		DB: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stockroom"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE", "_SESSION"),
			TTL:        getDuration("SESSION_TTL", 12*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			CacheTTL: getDuration("CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: getList("KAFKA_BROKERS"),
			GroupID: getEnv("KAFKA_GROUP_ID", "stockroom"),
		},
		PermissionSeedFile: getEnv("PERMISSION_SEED_FILE", ""),
	}
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
