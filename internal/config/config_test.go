package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "RAW_DATA_ROOT", "CAPACITY_MAH", "FIRST_CRATE", "CHECK_IR", "MAX_PARALLEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Enabled {
		t.Errorf("persistence should be disabled without DATABASE_URL")
	}
	if cfg.Data.RawRoot != "Rawdata" {
		t.Errorf("raw root default: expected Rawdata, got %q", cfg.Data.RawRoot)
	}
	if cfg.Analysis.FirstCRate != 0.2 {
		t.Errorf("first c-rate default: expected 0.2, got %v", cfg.Analysis.FirstCRate)
	}
	if cfg.Analysis.MaxParallel != 4 {
		t.Errorf("max parallel default: expected 4, got %d", cfg.Analysis.MaxParallel)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cycles")
	t.Setenv("CAPACITY_MAH", "1689")
	t.Setenv("CHECK_IR", "true")
	t.Setenv("MAX_PARALLEL", "8")
	t.Setenv("FIRST_CRATE", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Database.Enabled {
		t.Errorf("persistence should be enabled with DATABASE_URL")
	}
	if cfg.Analysis.CapacityMAh != 1689 {
		t.Errorf("capacity: expected 1689, got %v", cfg.Analysis.CapacityMAh)
	}
	if !cfg.Analysis.CheckIR {
		t.Errorf("check IR should be enabled")
	}
	if cfg.Analysis.MaxParallel != 8 {
		t.Errorf("max parallel: expected 8, got %d", cfg.Analysis.MaxParallel)
	}
}

func TestLoad_RejectsNonPositiveCRate(t *testing.T) {
	t.Setenv("FIRST_CRATE", "-1")
	if _, err := Load(); err == nil {
		t.Errorf("expected an error for a non-positive first C-rate")
	}
}
