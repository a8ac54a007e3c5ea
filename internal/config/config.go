package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	SQLitePath     string
	MigrateOnStart bool

	// Redis
	RedisURL         string
	RedisPoolSize    int
	RedisDialTimeout time.Duration
	RedisIOTimeout   time.Duration

	// Server
	Port        string
	FrontendURL string

	// Tables
	TableConfigPath     string
	TableIdleMinutes    int
	MaxTables           int
	BroadcastEveryTicks int

	// Websocket input
	WSMessagesPerSecond float64
	WSMessageBurst      int

	// Security
	JWTSecret      string
	SeatTokenHours int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "snooker.db"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL:         getEnv("REDIS_URL", ""),
		RedisPoolSize:    getEnvInt("REDIS_POOL_SIZE", 20),
		RedisDialTimeout: time.Duration(getEnvInt("REDIS_DIAL_TIMEOUT_MS", 2000)) * time.Millisecond,
		RedisIOTimeout:   time.Duration(getEnvInt("REDIS_IO_TIMEOUT_MS", 1000)) * time.Millisecond,

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Tables
		TableConfigPath:     getEnv("TABLE_CONFIG", ""),
		TableIdleMinutes:    getEnvInt("TABLE_IDLE_MINUTES", 30),
		MaxTables:           getEnvInt("MAX_TABLES", 200),
		BroadcastEveryTicks: getEnvInt("BROADCAST_EVERY_TICKS", 2),

		// Websocket input
		WSMessagesPerSecond: getEnvFloat("WS_MESSAGES_PER_SECOND", 60),
		WSMessageBurst:      getEnvInt("WS_MESSAGE_BURST", 30),

		// Security
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		SeatTokenHours: getEnvInt("SEAT_TOKEN_HOURS", 12),
	}
}

// UsePostgres reports whether history goes to Postgres rather than SQLite.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}
