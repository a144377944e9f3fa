package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config does not validate: %v", err)
	}
	if cfg.SampleSize != 1024 || cfg.Seed != 123 {
		t.Errorf("Default sampling parameters = (k=%d, seed=%d), want (1024, 123)", cfg.SampleSize, cfg.Seed)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
dataset:
  url: https://example.com/tiny.txt.gz
  path: /tmp/tiny.txt
sample_size: 16
seed: 42
workers: 2
tolerance:
  abs: 1e-6
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Dataset.URL != "https://example.com/tiny.txt.gz" {
		t.Errorf("URL = %q", cfg.Dataset.URL)
	}
	if cfg.SampleSize != 16 || cfg.Seed != 42 || cfg.Workers != 2 {
		t.Errorf("Got k=%d seed=%d workers=%d", cfg.SampleSize, cfg.Seed, cfg.Workers)
	}
	if cfg.Tolerance.Abs != 1e-6 {
		t.Errorf("Tolerance.Abs = %g", cfg.Tolerance.Abs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Loaded config does not validate: %v", err)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Error("Expected defaults for empty path")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"zero sample size": func(c *Config) { c.SampleSize = 0 },
		"zero workers":     func(c *Config) { c.Workers = 0 },
		"missing URL":      func(c *Config) { c.Dataset.URL = "" },
		"missing path":     func(c *Config) { c.Dataset.Path = "" },
		"negative abs tol": func(c *Config) { c.Tolerance.Abs = -1 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrConfigInvalid) {
			t.Errorf("%s: expected ErrConfigInvalid, got %v", name, err)
		}
	}
}
