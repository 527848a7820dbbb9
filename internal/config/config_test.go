package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults when the environment is empty", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 8080 {
			t.Errorf("HTTPPort = %d, want 8080", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:attendance.db?_pragma=foreign_keys(1)" {
			t.Errorf("SQLiteDSN = %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 720*time.Hour {
			t.Errorf("SessionTTL = %s, want 720h", cfg.SessionTTL)
		}
		if cfg.GuestEmailDomain != "guests.local" {
			t.Errorf("GuestEmailDomain = %q", cfg.GuestEmailDomain)
		}
	})

	t.Run("reads explicit values from the environment", func(t *testing.T) {
		t.Setenv("ATTENDANCE_HTTP_PORT", "9090")
		t.Setenv("ATTENDANCE_SESSION_TTL", "2h")
		t.Setenv("ATTENDANCE_PUBLIC_BASE_URL", "https://events.example.com")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 {
			t.Errorf("HTTPPort = %d, want 9090", cfg.HTTPPort)
		}
		if cfg.SessionTTL != 2*time.Hour {
			t.Errorf("SessionTTL = %s, want 2h", cfg.SessionTTL)
		}
		if cfg.PublicBaseURL != "https://events.example.com" {
			t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
		}
	})

	t.Run("rejects an out of range port", func(t *testing.T) {
		t.Setenv("ATTENDANCE_HTTP_PORT", "70000")

		if _, err := Load(); err == nil {
			t.Fatal("Load accepted an out of range port")
		}
	})

	t.Run("rejects a non-positive session ttl", func(t *testing.T) {
		t.Setenv("ATTENDANCE_SESSION_TTL", "-1h")

		if _, err := Load(); err == nil {
			t.Fatal("Load accepted a negative session ttl")
		}
	})

	t.Run("rejects a malformed duration", func(t *testing.T) {
		t.Setenv("ATTENDANCE_GUEST_RETENTION", "soon")

		if _, err := Load(); err == nil {
			t.Fatal("Load accepted a malformed duration")
		}
	})
}
