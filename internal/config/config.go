// Package config loads process configuration from environment
// variables, with getEnv fallbacks for every setting the database and
// cache layers need.
package config

import (
	"os"
	"strconv"
	"time"
)

// DB holds Postgres connection settings for the agency-owned stores
// (timetables, precomputed walking distances).
type DB struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MinConns int32
	MaxConns int32
}

// Redis holds connection settings for the route/walk cache.
type Redis struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// Solver holds process-wide (but read-only after startup) solver tuning
// knobs: the request-deadline default and the concurrency cap enforced
// by search.Limiter.
type Solver struct {
	DefaultTimeout    time.Duration
	MaxConcurrent     int
	WalkingSpeedMPS   float64
	MaxVariatorCount  int
}

// Config aggregates every env-driven setting the process needs.
type Config struct {
	DB     DB
	Redis  Redis
	Solver Solver
}

// Load reads Config from the environment, applying sensible defaults
// for local development's database and Redis settings.
func Load() Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	dbMin, _ := strconv.Atoi(getEnv("DB_MIN_CONNS", "2"))
	dbMax, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))

	redisPort, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisTTL, err := time.ParseDuration(getEnv("ROUTE_CACHE_TTL", "10m"))
	if err != nil {
		redisTTL = 10 * time.Minute
	}

	timeout, err := time.ParseDuration(getEnv("SOLVE_TIMEOUT", "5s"))
	if err != nil {
		timeout = 5 * time.Second
	}
	maxConcurrent, _ := strconv.Atoi(getEnv("SOLVE_MAX_CONCURRENT", "32"))
	walkingSpeed, err := strconv.ParseFloat(getEnv("WALKING_SPEED_MPS", "1.35"), 64)
	if err != nil {
		walkingSpeed = 1.35
	}
	maxVariatorCount, _ := strconv.Atoi(getEnv("MAX_ITINERARY_COUNT", "3"))
	if maxVariatorCount <= 0 {
		maxVariatorCount = 3
	}

	return Config{
		DB: DB{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			Database: getEnv("DB_NAME", "itinerary"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MinConns: int32(dbMin),
			MaxConns: int32(dbMax),
		},
		Redis: Redis{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			TTL:      redisTTL,
		},
		Solver: Solver{
			DefaultTimeout:   timeout,
			MaxConcurrent:    maxConcurrent,
			WalkingSpeedMPS:  walkingSpeed,
			MaxVariatorCount: maxVariatorCount,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
