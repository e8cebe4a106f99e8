package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	RiotAPIKey string
	DBPath     string
	ServerPort string
	LogLevel   string

	// RosterCapacity caps how many feeders can be tracked at once. One
	// knob for both the server checks and the UI hint.
	RosterCapacity int

	// StaleAfter is how old a feeder's cached stats may get before a list
	// request re-aggregates it without being asked to.
	StaleAfter time.Duration

	// RiotRPS feeds the shared token bucket in front of the Riot API.
	RiotRPS float64
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey:     getEnv("RIOT_API_KEY", ""),
		DBPath:         getEnv("DB_PATH", "feeders.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RosterCapacity: getEnvInt("ROSTER_CAPACITY", 10),
		StaleAfter:     getEnvDuration("STALE_AFTER", 1*time.Hour),
		RiotRPS:        getEnvFloat("RIOT_RPS", 0.75),
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY is required")
	}
	if cfg.RosterCapacity <= 0 {
		return nil, fmt.Errorf("ROSTER_CAPACITY must be positive, got %d", cfg.RosterCapacity)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Int("roster_capacity", cfg.RosterCapacity).
		Dur("stale_after", cfg.StaleAfter).
		Float64("riot_rps", cfg.RiotRPS).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
