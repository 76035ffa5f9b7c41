// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string

	// Telegram bot configuration
	BotToken      string
	GroupID       string
	WebhookSecret string

	MigrationsPath string
}

// Load reads configuration from the environment. The bot credential, target
// group and database URL have no defaults and must be present; a missing value
// is a startup error, not something to recover from at runtime.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("API_PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		BotToken:       os.Getenv("BOT_TOKEN"),
		GroupID:        os.Getenv("TELEGRAM_GROUP_ID"),
		WebhookSecret:  os.Getenv("WEBHOOK_SECRET"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/db/migrations"),
	}

	var missing []string
	if cfg.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if cfg.GroupID == "" {
		missing = append(missing, "TELEGRAM_GROUP_ID")
	}
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
