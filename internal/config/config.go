package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store drivers accepted by STORE_DRIVER
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	LogLevel    string
	LogDir      string // empty = stdout only
	LogMaxFiles int

	// Storage
	StoreDriver string
	DatabaseURL string
	TablePrefix string
	// MongoDB (names kept compatible with existing deployments)
	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool // requires a replica set
	SQLitePath        string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	databaseURL := getEnv("DATABASE_URL", "")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		LogLevel:    getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),

		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", getDefaultStoreDriver(env, databaseURL))),
		DatabaseURL:       databaseURL,
		TablePrefix:       getTablePrefix(env),
		MongoURI:          getEnv("MONGODB_CONNECTION_STRING", ""),
		MongoDatabase:     getEnv("MONGODB_DATABASE_NAME", "Unity"),
		MongoTransactions: getEnv("MONGODB_TRANSACTIONS", "false") == "true",
		SQLitePath:        getEnv("SQLITE_PATH", "./data/devspace.db"),
	}
}

// Validate checks that the selected store driver has what it needs
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case StoreDriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_CONNECTION_STRING is required for store driver %q", c.StoreDriver)
		}
	case StoreDriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for store driver %q", c.StoreDriver)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	return nil
}

// getDefaultStoreDriver falls back to the in-memory store only for local development
func getDefaultStoreDriver(env, databaseURL string) string {
	if env == "dev" && databaseURL == "" {
		return StoreDriverMemory
	}
	return StoreDriverPostgres
}

// getDefaultLogLevel returns the default log level based on environment
func getDefaultLogLevel(env string) string {
	if env == "dev" {
		return "debug"
	}
	return "info"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
