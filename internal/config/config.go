// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Assessor providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

type Config struct {
	Server   ServerConfig
	Assessor AssessorConfig
	NATSURL  string
	Cleanup  CleanupConfig
}

type ServerConfig struct {
	DBPath    string
	Addr      string
	UploadDir string
	LogFile   string
}

type AssessorConfig struct {
	Provider        string
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
}

type CleanupConfig struct {
	Retention   time.Duration
	OrphanGrace time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			DBPath:    getEnv("EBAYSALES_DB", "ebaysales.sqlite3"),
			Addr:      getEnv("EBAYSALES_ADDR", ":8080"),
			UploadDir: getEnv("EBAYSALES_UPLOAD_DIR", "uploads"),
			LogFile:   getEnv("EBAYSALES_LOG", ""),
		},
		Assessor: AssessorConfig{
			Provider:        strings.ToLower(getEnv("ASSESSOR_PROVIDER", ProviderAnthropic)),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_MODEL", ""),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			GeminiModel:     getEnv("GEMINI_MODEL", ""),
		},
		NATSURL: getEnv("NATS_URL", ""),
		Cleanup: CleanupConfig{
			Retention:   getEnvDuration("CLEANUP_RETENTION", 90*24*time.Hour),
			OrphanGrace: getEnvDuration("CLEANUP_ORPHAN_GRACE", time.Hour),
		},
	}

	switch cfg.Assessor.Provider {
	case ProviderAnthropic, ProviderGemini:
	default:
		return nil, fmt.Errorf("unknown ASSESSOR_PROVIDER %q", cfg.Assessor.Provider)
	}
	return cfg, nil
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
		slog.Warn("invalid integer, using default", "key", key)
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("2160h") or a bare number of days.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if days := getEnvInt(key, -1); days >= 0 {
			return time.Duration(days) * 24 * time.Hour
		}
		slog.Warn("invalid duration, using default", "key", key)
	}
	return defaultValue
}
