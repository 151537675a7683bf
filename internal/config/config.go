// Package config provides configuration for the application
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/flashcards/backend/internal/srs"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	SRS       srs.Config
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds the secret shared with the auth service that issues access tokens
type JWTConfig struct {
	Secret string
}

// RateLimitConfig holds per-IP rate limit settings
type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load reads configuration from environment variables
//
// A .env file in the working directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	serverPort, err := intFromEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	// Rate limit configuration
	rateLimit, err := intFromEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	if rateLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", rateLimit)
	}
	cfg.RateLimit.RequestsPerMinute = rateLimit

	// Scheduler configuration
	srsCfg, err := loadSRSConfig()
	if err != nil {
		return nil, err
	}
	cfg.SRS = srsCfg

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC&charset=utf8mb4&multiStatements=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// loadSRSConfig starts from srs.DefaultConfig and applies SRS_* overrides
func loadSRSConfig() (srs.Config, error) {
	cfg := srs.DefaultConfig()

	durations := []struct {
		key   string
		field *time.Duration
	}{
		{"SRS_AGAIN_STEP", &cfg.AgainStep},
		{"SRS_MCQ_STEP", &cfg.MCQStep},
		{"SRS_TYPING_STEP", &cfg.TypingStep},
		{"SRS_RELEARNING_STEP", &cfg.RelearningStep},
	}
	for _, d := range durations {
		raw := os.Getenv(d.key)
		if raw == "" {
			continue
		}
		value, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.field = value
	}

	ints := []struct {
		key   string
		field *int
	}{
		{"SRS_GRADUATING_INTERVAL", &cfg.GraduatingInterval},
		{"SRS_EASY_INTERVAL", &cfg.EasyInterval},
		{"SRS_MIN_LAPSE_INTERVAL", &cfg.MinLapseInterval},
		{"SRS_MAX_INTERVAL", &cfg.MaxInterval},
	}
	for _, i := range ints {
		value, err := intFromEnv(i.key, *i.field)
		if err != nil {
			return cfg, err
		}
		*i.field = value
	}

	floats := []struct {
		key   string
		field *float64
	}{
		{"SRS_INITIAL_EASE", &cfg.InitialEase},
		{"SRS_MIN_EASE", &cfg.MinEase},
		{"SRS_AGAIN_EASE_PENALTY", &cfg.AgainEasePenalty},
		{"SRS_HARD_EASE_PENALTY", &cfg.HardEasePenalty},
		{"SRS_EASY_EASE_BONUS", &cfg.EasyEaseBonus},
		{"SRS_HARD_MULTIPLIER", &cfg.HardMultiplier},
		{"SRS_EASY_BONUS", &cfg.EasyBonus},
		{"SRS_LAPSE_MULTIPLIER", &cfg.LapseMultiplier},
	}
	for _, f := range floats {
		raw := os.Getenv(f.key)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.field = value
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid scheduler configuration: %w", err)
	}

	return cfg, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// parseOrigins splits a comma-separated origin list, allowing all origins when it is empty
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
