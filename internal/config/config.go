// Package config loads environment driven settings for the attendance
// service.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures every environment variable the service reads.
type Config struct {
	HTTPPort            int           `env:"ATTENDANCE_HTTP_PORT" envDefault:"8080"`
	SQLiteDSN           string        `env:"ATTENDANCE_SQLITE_DSN" envDefault:"file:attendance.db?_pragma=foreign_keys(1)"`
	SessionTTL          time.Duration `env:"ATTENDANCE_SESSION_TTL" envDefault:"720h"`
	GuestEmailDomain    string        `env:"ATTENDANCE_GUEST_EMAIL_DOMAIN" envDefault:"guests.local"`
	PublicBaseURL       string        `env:"ATTENDANCE_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	GuestRetention      time.Duration `env:"ATTENDANCE_GUEST_RETENTION" envDefault:"720h"`
	GuestSweepInterval  time.Duration `env:"ATTENDANCE_GUEST_SWEEP_INTERVAL" envDefault:"1h"`
	ShutdownGracePeriod time.Duration `env:"ATTENDANCE_SHUTDOWN_GRACE" envDefault:"10s"`
}

// Load parses configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("config: ATTENDANCE_HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.SQLiteDSN == "" {
		return fmt.Errorf("config: ATTENDANCE_SQLITE_DSN must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: ATTENDANCE_SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.GuestRetention <= 0 {
		return fmt.Errorf("config: ATTENDANCE_GUEST_RETENTION must be positive, got %s", c.GuestRetention)
	}
	if c.GuestSweepInterval <= 0 {
		return fmt.Errorf("config: ATTENDANCE_GUEST_SWEEP_INTERVAL must be positive, got %s", c.GuestSweepInterval)
	}
	return nil
}
