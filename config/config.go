package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the bot needs from the process environment.
type Config struct {
	BotToken      string
	WebhookSecret string
	WebhookHost   string // externally visible host, empty means long polling
	Port          int

	SpreadsheetID     string
	GoogleCredentials string // service account JSON
	FleetSheet        string
	ReportsSheet      string

	RootFolderID      string
	ContractsFolderID string

	CacheTTL    time.Duration
	AuditDBPath string
	AdminChatID int64

	LogLevel string
}

// Load reads configuration from the environment. A .env file is honored
// when present so local runs don't need exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:          os.Getenv("BOT_TOKEN"),
		WebhookSecret:     getEnv("WEBHOOK_SECRET", "supersecret"),
		WebhookHost:       os.Getenv("WEBHOOK_HOST"),
		Port:              getEnvInt("PORT", 8080),
		SpreadsheetID:     os.Getenv("SHEET_ID"),
		GoogleCredentials: os.Getenv("GOOGLE_CREDENTIALS"),
		FleetSheet:        getEnv("FLEET_SHEET", "список наших байков"),
		ReportsSheet:      getEnv("REPORTS_SHEET", "Отчёты"),
		RootFolderID:      os.Getenv("DRIVE_ROOT_FOLDER_ID"),
		ContractsFolderID: os.Getenv("DRIVE_CONTRACTS_FOLDER_ID"),
		CacheTTL:          time.Duration(getEnvInt("CACHE_TTL", 30)) * time.Second,
		AuditDBPath:       getEnv("AUDIT_DB_PATH", "motorent.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if raw := os.Getenv("ADMIN_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID %q: %w", raw, err)
		}
		cfg.AdminChatID = id
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set")
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("SHEET_ID is not set")
	}
	if cfg.GoogleCredentials == "" {
		return nil, fmt.Errorf("GOOGLE_CREDENTIALS is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
