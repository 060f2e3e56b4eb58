/*
Package config loads runtime configuration from the environment, with an
optional .env file for local development.
*/
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of the server.
type Config struct {
	Port   string
	DBPath string

	// JWTSecret signs and verifies bearer tokens. Required.
	JWTSecret string

	// Calendar identifiers for the two mirrored calendars.
	HolidayCalendarID      string
	AvailabilityCalendarID string

	// AMQPURL enables the queue-backed notifier when set; empty falls
	// back to the log notifier.
	AMQPURL   string
	MailQueue string

	// ReconcileInterval is how often the calendar audit runs.
	ReconcileInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                   getenv("PORT", "8080"),
		DBPath:                 getenv("DB_PATH", "./data/staffcentre.db"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		HolidayCalendarID:      getenv("STAFF_HOLIDAY_CALENDAR_ID", "staff-holidays"),
		AvailabilityCalendarID: getenv("CONTRACTOR_AVAILABILITY_CALENDAR_ID", "contractor-availability"),
		AMQPURL:                os.Getenv("AMQP_URL"),
		MailQueue:              getenv("MAIL_QUEUE", "mail.outbound"),
		ReconcileInterval:      time.Hour,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if raw := os.Getenv("RECONCILE_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RECONCILE_INTERVAL %q: %w", raw, err)
		}
		cfg.ReconcileInterval = d
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
