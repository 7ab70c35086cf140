package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Workbook      WorkbookConfig
	Inbox         InboxConfig
	Observability ObservabilityConfig
	Logging       LoggingConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// WorkbookConfig locates the spreadsheet rows are appended to.
type WorkbookConfig struct {
	Path string
}

// InboxConfig drives the watch mode: documents dropped into Dir are
// processed on Schedule and moved to ArchiveDir afterwards.
type InboxConfig struct {
	Dir        string
	ArchiveDir string
	Schedule   string
	Workers    int
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("POSTGRES_ENABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "termsheets"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Workbook: WorkbookConfig{
			Path: getEnv("WORKBOOK_PATH", "database.xlsx"),
		},
		Inbox: InboxConfig{
			Dir:        getEnv("INBOX_DIR", "inbox"),
			ArchiveDir: getEnv("ARCHIVE_DIR", "processed"),
			Schedule:   getEnv("INBOX_SCHEDULE", "@every 1m"),
			Workers:    getEnvAsInt("INBOX_WORKERS", 4),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Workbook.Path == "" {
		return nil, errors.New("WORKBOOK_PATH must not be empty")
	}

	if cfg.Inbox.Workers < 1 {
		return nil, errors.New("INBOX_WORKERS must be at least 1")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
