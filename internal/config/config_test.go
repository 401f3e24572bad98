package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SLOT_STEP", "SLOT_DATE_COUNT", "SLOT_HORIZON_DAYS", "BACKEND_TIMEOUT", "RUN_MIGRATIONS", "CURRENCY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.SlotStep != 15*time.Minute {
		t.Fatalf("expected 15m step, got %s", cfg.SlotStep)
	}
	if cfg.SlotDateCount != 8 || cfg.SlotHorizonDays != 60 {
		t.Fatalf("unexpected slot defaults: %d dates, %d days", cfg.SlotDateCount, cfg.SlotHorizonDays)
	}
	if cfg.BackendTimeout != 10*time.Second {
		t.Fatalf("expected 10s backend timeout, got %s", cfg.BackendTimeout)
	}
	if !cfg.RunMigrations {
		t.Fatalf("expected migrations on by default")
	}
	if cfg.Currency != "EUR" {
		t.Fatalf("expected EUR, got %s", cfg.Currency)
	}
}

func TestLoadClampsInvalidValues(t *testing.T) {
	t.Setenv("SLOT_DATE_COUNT", "3")
	t.Setenv("SLOT_STEP", "nonsense")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("CURRENCY", "usd")

	cfg := Load()
	if cfg.SlotDateCount != 8 {
		t.Fatalf("expected date count clamped to 8, got %d", cfg.SlotDateCount)
	}
	if cfg.SlotStep != 15*time.Minute {
		t.Fatalf("expected fallback step, got %s", cfg.SlotStep)
	}
	if cfg.RunMigrations {
		t.Fatalf("expected migrations disabled")
	}
	if cfg.Currency != "USD" {
		t.Fatalf("expected upper-cased currency, got %s", cfg.Currency)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" https://a.example, ,https://b.example ")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected split: %#v", got)
	}
	if splitCSV("  ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := Config{Timezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}
