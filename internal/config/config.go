package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultPort          = "8080"
	defaultTimezone      = "America/New_York"
	defaultAdminTokenTTL = "168h" // 7 days
	defaultBaseURL       = "http://localhost:8080"
	defaultFromEmail     = "bookings@dayspa.local"
)

type Config struct {
	Port        string
	DatabaseURL string

	BusinessTimezone *time.Location

	AdminSecret       string
	AdminPasswordHash string
	AdminTokenTTL     time.Duration
	StaffTokenSecret  string

	StripeSecretKey     string
	StripeWebhookSecret string

	ResendAPIKey string
	FromEmail    string
	AdminEmail   string

	// BaseURL is the public origin used for checkout success/cancel links.
	BaseURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", defaultPort),
		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AdminSecret:         strings.TrimSpace(os.Getenv("ADMIN_SECRET")),
		AdminPasswordHash:   strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
		StaffTokenSecret:    strings.TrimSpace(os.Getenv("STAFF_TOKEN_SECRET")),
		StripeSecretKey:     strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		StripeWebhookSecret: strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),
		ResendAPIKey:        strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		FromEmail:           getEnv("FROM_EMAIL", defaultFromEmail),
		AdminEmail:          strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		BaseURL:             getEnv("PUBLIC_BASE_URL", defaultBaseURL),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if cfg.AdminSecret == "" {
		return nil, fmt.Errorf("ADMIN_SECRET is empty")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is empty")
	}
	if cfg.StaffTokenSecret == "" {
		// A separate staff secret is optional; fall back to the admin one.
		cfg.StaffTokenSecret = cfg.AdminSecret
	}

	ttl, err := time.ParseDuration(getEnv("ADMIN_TOKEN_TTL", defaultAdminTokenTTL))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TOKEN_TTL: %w", err)
	}
	cfg.AdminTokenTTL = ttl

	tz := getEnv("BUSINESS_TIMEZONE", defaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", tz, err)
	}
	cfg.BusinessTimezone = loc

	return cfg, nil
}

func getEnv(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}
