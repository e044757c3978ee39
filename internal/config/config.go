package config

import (
	"os"
	"strconv"
	"time"

	"game_arcade/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string // empty disables match-history persistence
	JWTSecret   string

	RedisAddr     string // empty disables the redis rate limiter
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// Nim ruleset
	NimPileSize     int
	NimMaxTake      int
	NimTakeLastWins bool

	// Session lifecycle
	SessionIdleTTL time.Duration
	SweepInterval  time.Duration

	// REST rate limiting
	APIRateLimit  int
	APIRateWindow time.Duration
}

// Load reads the environment (plus an optional .env file) and fails fast on
// required settings.
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		LogLevel: envDefault("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		NimPileSize:     envInt("NIM_PILE_SIZE", 21),
		NimMaxTake:      envInt("NIM_MAX_TAKE", 3),
		NimTakeLastWins: os.Getenv("NIM_MISERE") != "true",

		SessionIdleTTL: envSeconds("SESSION_IDLE_TTL_SECONDS", 5*time.Minute),
		SweepInterval:  envSeconds("SWEEP_INTERVAL_SECONDS", time.Minute),

		APIRateLimit:  envInt("API_RATE_LIMIT", 60),
		APIRateWindow: envSeconds("API_RATE_WINDOW_SECONDS", time.Minute),
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
