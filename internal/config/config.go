package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort    int
	DatabasePath  string
	PublicDir     string // Directory the HTML pages are served from
	SessionSecret string
	SessionTTL    int // Session lifetime in hours
	SweepSchedule string
	CORSOrigin    string
}

// Load loads configuration from environment variables or sets defaults.
// A missing SESSION_SECRET is a startup misconfiguration and fails the load.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	ttlStr := getEnv("SESSION_TTL_HOURS", "24")
	ttl, err := strconv.Atoi(ttlStr)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return nil, errors.New("SESSION_SECRET must be set")
	}

	return &Config{
		ServerPort:    port,
		DatabasePath:  getEnv("DATABASE_PATH", "./data/lobby.db"),
		PublicDir:     getEnv("PUBLIC_DIR", "./public"),
		SessionSecret: secret,
		SessionTTL:    ttl,
		SweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 1m"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
