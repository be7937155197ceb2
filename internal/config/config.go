package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr string

	// Upstream records API (products, customers, sales, invoices).
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	// Local last-known-snapshot store.
	HistoryDBPath string

	Logger LoggerConfig
}

type LoggerConfig struct {
	Level string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:         getenv("APP_SERVICE", "bizcore"),
		AppVersion:      getenv("APP_VERSION", "0.1.0"),
		Environment:     getenv("ENVIRONMENT", "development"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		UpstreamBaseURL: strings.TrimRight(getenv("UPSTREAM_BASE_URL", "http://localhost:5000/api"), "/"),
		UpstreamTimeout: time.Duration(getenvInt64("UPSTREAM_TIMEOUT_SECONDS", 12)) * time.Second,
		HistoryDBPath:   getenv("HISTORY_DB_PATH", "bizcore-history.db"),
		Logger: LoggerConfig{
			Level: getenv("LOG_LEVEL", "info"),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

// Module wires application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewSalesConfigHolder),
)
