package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"labattendance/internal/attendance"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	StoreBackend    string
	DatabaseURL     string
	SQLitePath      string
	ResetMode       attendance.ResetMode
	SecretKey       string
	RedisAddr       string
	RateLimitPerMin int
	ShutdownTimeout time.Duration
}

// Production reports whether the app runs in a production environment.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// Load returns application config populated from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present; real environment
// variables take precedence over it.
func Load() App {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}
	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", getEnv("PORT", "8080")),
		StoreBackend:    getEnv("STORE_BACKEND", "auto"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "attendance.db"),
		ResetMode:       resetModeEnv("RESET_MODE", "CLEAR_MODE"),
		SecretKey:       getEnv("SECRET_KEY", "dev-secret-key-change-in-production"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
		ShutdownTimeout: durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func resetModeEnv(key, alias string) attendance.ResetMode {
	raw := getEnv(key, os.Getenv(alias))
	mode, err := attendance.ParseResetMode(raw)
	if err != nil {
		log.Printf("invalid reset mode for %s: %v, using fallback %s", key, err, mode)
	}
	return mode
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
