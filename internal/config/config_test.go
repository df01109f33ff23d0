package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/casework_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.SweepInterval != 15*time.Minute {
		t.Errorf("expected default sweep interval 15m, got %v", cfg.SweepInterval)
	}
	if cfg.SweepBatchSize != 500 {
		t.Errorf("expected default sweep batch 500, got %d", cfg.SweepBatchSize)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestHolidays(t *testing.T) {
	cfg := &Config{HolidayDates: []string{"2026-01-01", " 2026-07-04 "}}
	days, err := cfg.Holidays()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 holidays, got %d", len(days))
	}
	if days[0].Month() != time.January || days[0].Day() != 1 {
		t.Errorf("unexpected first holiday: %v", days[0])
	}
}

func TestHolidays_Malformed(t *testing.T) {
	cfg := &Config{HolidayDates: []string{"not-a-date"}}
	if _, err := cfg.Holidays(); err == nil {
		t.Fatal("expected error for malformed holiday date")
	}
}
