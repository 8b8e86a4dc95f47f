package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken        string
	DatabaseURL          string
	ManagerTelegramIDs   []int64
	LogLevel             string
	Environment          string
	CronSpecSessionSweep string        // How often idle chat sessions are swept
	SessionTTL           time.Duration // Idle time after which a session is dropped
	PaymentLeadDays      int
	PolicyLeadDays       int
	CurrencyLocale       string
	CurrencySuffix       string
	DealsPageSize        int
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	managerIDs := os.Getenv("MANAGER_TELEGRAM_IDS")
	if managerIDs == "" {
		return nil, fmt.Errorf("MANAGER_TELEGRAM_IDS is not set")
	}
	cfg.ManagerTelegramIDs, err = parseIDList(managerIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid MANAGER_TELEGRAM_IDS: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecSessionSweep = os.Getenv("CRON_SPEC_SESSION_SWEEP")
	if cfg.CronSpecSessionSweep == "" {
		cfg.CronSpecSessionSweep = "*/15 * * * *" // Default: every 15 minutes
	}

	cfg.SessionTTL = 2 * time.Hour
	if v := os.Getenv("SESSION_TTL"); v != "" {
		cfg.SessionTTL, err = time.ParseDuration(v)
		if err != nil || cfg.SessionTTL <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL %q", v)
		}
	}

	if cfg.PaymentLeadDays, err = intFromEnv("PAYMENT_LEAD_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.PolicyLeadDays, err = intFromEnv("POLICY_LEAD_DAYS", 45); err != nil {
		return nil, err
	}
	if cfg.DealsPageSize, err = intFromEnv("DEALS_PAGE_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.DealsPageSize == 0 {
		return nil, fmt.Errorf("DEALS_PAGE_SIZE must be positive")
	}

	cfg.CurrencyLocale = os.Getenv("CURRENCY_LOCALE")
	if cfg.CurrencyLocale == "" {
		cfg.CurrencyLocale = "ru"
	}
	cfg.CurrencySuffix = os.Getenv("CURRENCY_SUFFIX")
	if cfg.CurrencySuffix == "" {
		cfg.CurrencySuffix = "₽"
	}

	return cfg, nil
}

// intFromEnv reads a non-negative integer, falling back to def when unset.
func intFromEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return n, nil
}

func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no IDs given")
	}
	return ids, nil
}
