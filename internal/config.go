package internal

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Remote API configuration. Every service URL falls back to APIBaseURL
	// so a single-host deployment only needs API_BASE_URL.
	APIBaseURL         string
	AuthAPIURL         string
	BidsAPIURL         string
	ChatDealAPIURL     string
	ProfileAgingAPIURL string
	CountsAPIURL       string
	PriceSummaryAPIURL string
	CandidatesAPIURL   string
	TransactionsAPIURL string
	APITimeout         time.Duration

	// LoginRole is sent with every login request. The dashboard is only
	// usable by super admins.
	LoginRole string

	// Session configuration
	SessionTTL    time.Duration // single authoritative lifetime for cookie and record
	SessionStore  string        // "memory", "postgres" or "redis"
	DatabaseUrl   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

// IsSecure reports whether cookies should carry the Secure flag.
func (c *Config) IsSecure() bool {
	return c.Env != "development"
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		APIBaseURL: getEnv("API_BASE_URL", ""),
		APITimeout: getEnvDuration("API_TIMEOUT", 15*time.Second),
		LoginRole:  getEnv("LOGIN_ROLE", "Super Admin"),

		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionStore:  getEnv("SESSION_STORE", "memory"),
		DatabaseUrl:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	cfg.AuthAPIURL = getEnv("AUTH_API_URL", cfg.APIBaseURL)
	cfg.BidsAPIURL = getEnv("BIDS_API_URL", cfg.APIBaseURL)
	cfg.ChatDealAPIURL = getEnv("CHAT_DEAL_API_URL", cfg.APIBaseURL)
	cfg.ProfileAgingAPIURL = getEnv("PROFILE_AGING_API_URL", cfg.APIBaseURL)
	cfg.CountsAPIURL = getEnv("COUNTS_API_URL", cfg.APIBaseURL)
	cfg.PriceSummaryAPIURL = getEnv("PRICE_SUMMARY_API_URL", cfg.APIBaseURL)
	cfg.CandidatesAPIURL = getEnv("CANDIDATES_API_URL", cfg.APIBaseURL)
	cfg.TransactionsAPIURL = getEnv("TRANSACTIONS_API_URL", cfg.APIBaseURL)

	// Required
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}

	for name, raw := range map[string]string{
		"API_BASE_URL":          cfg.APIBaseURL,
		"AUTH_API_URL":          cfg.AuthAPIURL,
		"BIDS_API_URL":          cfg.BidsAPIURL,
		"CHAT_DEAL_API_URL":     cfg.ChatDealAPIURL,
		"PROFILE_AGING_API_URL": cfg.ProfileAgingAPIURL,
		"COUNTS_API_URL":        cfg.CountsAPIURL,
		"PRICE_SUMMARY_API_URL": cfg.PriceSummaryAPIURL,
		"CANDIDATES_API_URL":    cfg.CandidatesAPIURL,
		"TRANSACTIONS_API_URL":  cfg.TransactionsAPIURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%s must be an absolute URL, got: %q", name, raw)
		}
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got: %s", cfg.SessionTTL)
	}

	// Validate session store configuration
	switch cfg.SessionStore {
	case "memory":
	case "postgres":
		if cfg.DatabaseUrl == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when SESSION_STORE is 'postgres'")
		}
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when SESSION_STORE is 'redis'")
		}
	default:
		return nil, fmt.Errorf("SESSION_STORE must be one of 'memory', 'postgres' or 'redis', got: %s", cfg.SessionStore)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
