package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost/deals")
	t.Setenv("MANAGER_TELEGRAM_IDS", "101, 202")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{"LOG_LEVEL", "ENVIRONMENT", "CRON_SPEC_SESSION_SWEEP", "SESSION_TTL",
		"PAYMENT_LEAD_DAYS", "POLICY_LEAD_DAYS", "DEALS_PAGE_SIZE", "CURRENCY_LOCALE", "CURRENCY_SUFFIX"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{101, 202}, cfg.ManagerTelegramIDs)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "*/15 * * * *", cfg.CronSpecSessionSweep)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30, cfg.PaymentLeadDays)
	assert.Equal(t, 45, cfg.PolicyLeadDays)
	assert.Equal(t, 10, cfg.DealsPageSize)
	assert.Equal(t, "ru", cfg.CurrencyLocale)
	assert.Equal(t, "₽", cfg.CurrencySuffix)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("PAYMENT_LEAD_DAYS", "14")
	t.Setenv("POLICY_LEAD_DAYS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 14, cfg.PaymentLeadDays)
	assert.Equal(t, 60, cfg.PolicyLeadDays)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing token", "TELEGRAM_TOKEN", ""},
		{"missing database", "DATABASE_URL", ""},
		{"missing managers", "MANAGER_TELEGRAM_IDS", ""},
		{"bad manager id", "MANAGER_TELEGRAM_IDS", "12,abc"},
		{"bad ttl", "SESSION_TTL", "soon"},
		{"negative lead", "PAYMENT_LEAD_DAYS", "-1"},
		{"zero page size", "DEALS_PAGE_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
