package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"survivor-pool-go/logging"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
	Email    EmailConfig    `json:"email"`
	Admin    AdminConfig    `json:"admin"`
	Feed     FeedConfig     `json:"feed"`
	App      AppConfig      `json:"app"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `json:"port"`
	Host        string `json:"host"`
	Environment string `json:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// EmailConfig holds SMTP configuration for pick reminders
type EmailConfig struct {
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     string `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	FromEmail    string `json:"from_email"`
	FromName     string `json:"from_name"`
}

// AdminConfig holds the shared-secret token for the trigger surface
type AdminConfig struct {
	Token string `json:"token"`
}

// FeedConfig holds upstream feed configuration
type FeedConfig struct {
	ScoreboardURL string        `json:"scoreboard_url"`
	OddsURL       string        `json:"odds_url"`
	Timeout       time.Duration `json:"timeout"`
	RatePerSecond float64       `json:"rate_per_second"`
	MaxAttempts   int           `json:"max_attempts"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	CurrentSeason  int           `json:"current_season"`
	IsDevelopment  bool          `json:"is_development"`
	SweeperEnabled bool          `json:"sweeper_enabled"`
	SweepInterval  time.Duration `json:"sweep_interval"`
	SweepDeadline  time.Duration `json:"sweep_deadline"`
	ReminderWindow time.Duration `json:"reminder_window"`
	WorkerCount    int           `json:"worker_count"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Missing .env is fine; env vars may be set directly
		logging.Warnf("Could not load .env file: %v", err)
	}

	environment := getEnv("ENVIRONMENT", "development")
	isDevelopment := strings.ToLower(environment) == "development"

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Environment: environment,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", "survivor"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "survivor_pool"),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", "survivor-pool"),
			EnableColor: getBoolEnv("LOG_COLOR", true),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", ""),
			FromName:     getEnv("FROM_NAME", "Survivor Pool"),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
		Feed: FeedConfig{
			ScoreboardURL: getEnv("FEED_SCOREBOARD_URL", "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard"),
			OddsURL:       getEnv("FEED_ODDS_URL", "https://sports.core.api.espn.com/v2/sports/football/leagues/nfl/events"),
			Timeout:       getDurationEnv("FEED_TIMEOUT", 10*time.Second),
			RatePerSecond: getFloatEnv("FEED_RATE_PER_SECOND", 4),
			MaxAttempts:   getIntEnv("FEED_MAX_ATTEMPTS", 3),
		},
		App: AppConfig{
			CurrentSeason:  getIntEnv("CURRENT_SEASON", 2025),
			IsDevelopment:  isDevelopment,
			SweeperEnabled: getBoolEnv("SWEEPER_ENABLED", true),
			SweepInterval:  getDurationEnv("SWEEP_INTERVAL", 5*time.Minute),
			SweepDeadline:  getDurationEnv("SWEEP_DEADLINE", 4*time.Minute),
			ReminderWindow: getDurationEnv("REMINDER_WINDOW", 3*time.Hour),
			WorkerCount:    getIntEnv("WORKER_COUNT", 8),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("database port is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Admin.Token == "" && !c.App.IsDevelopment {
		return fmt.Errorf("admin token is required outside development")
	}

	if c.App.CurrentSeason < 2020 || c.App.CurrentSeason > 2035 {
		return fmt.Errorf("current season must be between 2020 and 2035, got: %d", c.App.CurrentSeason)
	}
	if c.App.WorkerCount < 1 {
		return fmt.Errorf("worker count must be at least 1, got: %d", c.App.WorkerCount)
	}
	if c.Feed.MaxAttempts < 1 {
		return fmt.Errorf("feed max attempts must be at least 1, got: %d", c.Feed.MaxAttempts)
	}

	return nil
}

// IsEmailConfigured returns true if the reminder mailer is configured
func (c *Config) IsEmailConfigured() bool {
	return c.Email.SMTPHost != "" &&
		c.Email.SMTPUsername != "" &&
		c.Email.SMTPPassword != "" &&
		c.Email.FromEmail != ""
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (Environment: %s)", c.GetServerAddress(), c.Server.Environment)
	logging.Infof("Database: %s:%s/%s (Username: %s, Auth: %t)",
		c.Database.Host, c.Database.Port, c.Database.Database,
		c.Database.Username, c.Database.Password != "")
	logging.Infof("Logging: Level=%s, Prefix=%s, Color=%t",
		c.Logging.Level, c.Logging.Prefix, c.Logging.EnableColor)
	logging.Infof("Email: Configured=%t, Host=%s, From=%s",
		c.IsEmailConfigured(), c.Email.SMTPHost, c.Email.FromEmail)
	logging.Infof("Admin: TokenSet=%t", c.Admin.Token != "")
	logging.Infof("Feed: %s (rate=%.1f/s, attempts=%d)",
		c.Feed.ScoreboardURL, c.Feed.RatePerSecond, c.Feed.MaxAttempts)
	logging.Infof("App: Season=%d, Development=%t, Sweeper=%t every %v, ReminderWindow=%v, Workers=%d",
		c.App.CurrentSeason, c.App.IsDevelopment, c.App.SweeperEnabled,
		c.App.SweepInterval, c.App.ReminderWindow, c.App.WorkerCount)
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
