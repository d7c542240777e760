package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// CasdoorConfig holds the identity provider settings.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
	RedirectURL  string
}

// SMTPConfig holds the outbound mail settings. An empty Host means mail
// delivery falls back to console logging.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Configured() bool {
	return c.Host != ""
}

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	BaseURL     string

	DatabaseURL   string
	SessionSecret string
	UploadDir     string

	// Comma-separated exact-match emails granted the master role at
	// first login. Changing the list never updates existing accounts.
	MasterEmails []string

	RedisURL     string
	KafkaBrokers []string

	GeminiAPIKey string

	Casdoor CasdoorConfig
	SMTP    SMTPConfig
}

// LoadConfig reads configuration from the environment, loading a local
// .env file first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),

		MasterEmails: splitList(os.Getenv("MASTER_EMAILS")),

		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
			RedirectURL:  getEnv("CASDOOR_REDIRECT_URL", getEnv("BASE_URL", "http://localhost:8080")+"/authorize"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("MAIL_FROM", "no-reply@classroom.local"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
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
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
