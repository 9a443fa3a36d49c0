// Package config reads server and terminal settings from the environment.
// An optional .env file in the working directory is loaded first; variables
// already set in the environment win over it.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server configures cmd/server.
type Server struct {
	Port         int
	DBPath       string
	DatabaseDSN  string
	JWTSecret    string
	TokenTTL     time.Duration
	SeedDemo     bool
	DemoPassword string
}

// UsePostgres reports whether DATABASE_DSN selects the gorm store.
func (c Server) UsePostgres() bool {
	return c.DatabaseDSN != ""
}

// Terminal configures cmd/terminal.
type Terminal struct {
	APIBase        string
	LocationCode   string
	CounterCode    string
	StatePath      string
	Username       string
	Password       string
	SyncTimeout    time.Duration
	RequestTimeout time.Duration

	// MetricsAddr serves the terminal's Prometheus metrics when set.
	MetricsAddr string

	// H2C talks HTTP/2 over cleartext to an http:// backend.
	H2C bool
}

// defaultJWTSecret is only meant for local development.
const defaultJWTSecret = "tillpoint-dev-secret"

// LoadServer reads the server settings.
func LoadServer() Server {
	loadDotEnv()
	cfg := Server{
		Port:         getInt("PORT", 8080),
		DBPath:       getEnv("DB_PATH", "./data/pos.db"),
		DatabaseDSN:  getEnv("DATABASE_DSN", ""),
		JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:     getDuration("TOKEN_TTL", 24*time.Hour),
		SeedDemo:     getBool("SEED_DEMO", true),
		DemoPassword: getEnv("DEMO_PASSWORD", "demo123"),
	}
	if cfg.JWTSecret == defaultJWTSecret {
		slog.Warn("JWT_SECRET not set, using development secret")
	}
	return cfg
}

// LoadTerminal reads the terminal settings.
func LoadTerminal() Terminal {
	loadDotEnv()
	return Terminal{
		APIBase:        strings.TrimRight(getEnv("POS_API_BASE", "http://localhost:8080"), "/"),
		LocationCode:   getEnv("POS_LOCATION", "LOC001"),
		CounterCode:    getEnv("POS_COUNTER", "CNT01"),
		StatePath:      getEnv("POS_STATE_PATH", "./data/terminal.json"),
		Username:       getEnv("POS_USERNAME", ""),
		Password:       getEnv("POS_PASSWORD", ""),
		SyncTimeout:    getDuration("POS_SYNC_TIMEOUT", 5*time.Second),
		RequestTimeout: getDuration("POS_REQUEST_TIMEOUT", 10*time.Second),
		MetricsAddr:    getEnv("POS_METRICS_ADDR", ""),
		H2C:            getBool("POS_H2C", true),
	}
}

func loadDotEnv() {
	// A missing .env is the normal case.
	_ = godotenv.Load()
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Ignoring invalid integer setting", "key", key, "value", v)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Ignoring invalid boolean setting", "key", key, "value", v)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("Ignoring invalid duration setting", "key", key, "value", v)
		return fallback
	}
	return d
}
