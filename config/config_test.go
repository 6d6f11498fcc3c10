package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"
)

func TestValidateSuccess(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateFailsOnBadRisk(t *testing.T) {
	cfg := Default()
	cfg.RiskPerTrade = -0.01 // invalid
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative RiskPerTrade")
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.EntryPeriod = 0
	cfg.MaxUnits = 0
	cfg.MinShares = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 3 {
		t.Fatalf("expected 3 aggregated errors, got %d: %v", n, err)
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "turtle.yaml")
	body := "symbols: [SPY, QQQ]\nentry_period: 40\nrisk_per_trade: 0.01\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TURTLE_EXIT_PERIOD", "15")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.EntryPeriod != 40 || cfg.RiskPerTrade != 0.01 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.ExitPeriod != 15 {
		t.Fatalf("expected env override exit_period=15, got %d", cfg.ExitPeriod)
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "SPY" {
		t.Fatalf("unexpected symbols %v", cfg.Symbols)
	}
	if cfg.MaxUnits != 4 || cfg.ATRMultiplier != 2 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("max_units: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for max_units=0")
	}
}
