package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the service.
type Config struct {
	DatabaseURL   string
	SweepInterval time.Duration
	LeadDays      int
	SyncDailyAt   string // HH:MM wall-clock time for the nightly reminder top-up
	TelegramToken string
	MetricsAddr   string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SweepInterval: parseDuration(strings.TrimSpace(os.Getenv("SWEEP_INTERVAL"))),
		LeadDays:      3,
		SyncDailyAt:   strings.TrimSpace(os.Getenv("SYNC_DAILY_AT")),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		MetricsAddr:   strings.TrimSpace(os.Getenv("METRICS_ADDR")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "billminder.db"
	}

	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}

	if raw := strings.TrimSpace(os.Getenv("LEAD_DAYS")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			return cfg, fmt.Errorf("LEAD_DAYS must be a non-negative integer, got %q", raw)
		}
		cfg.LeadDays = days
	}

	if cfg.SyncDailyAt == "" {
		cfg.SyncDailyAt = "03:00"
	}

	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":9090"
	}

	return cfg, nil
}

func parseDuration(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
