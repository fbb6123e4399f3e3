package config

import (
	"os"
	"testing"
)

// writeTempConfig creates a minimal configuration file required for
// LoadConfig and returns its path.
func writeTempConfig(t *testing.T) string {
	t.Helper()
	content := `trendflow:
  name: "TestApp"
  version: "1.0"
collector:
  output_dir: results
`
	f, err := os.CreateTemp(t.TempDir(), "cfg-*.yml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	return f.Name()
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEYS", "key-a, key-b")
	path := writeTempConfig(t)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.APIKeys) != 2 || cfg.APIKeys[1] != "key-b" {
		t.Fatalf("api keys not parsed from env: %v", cfg.APIKeys)
	}
	if cfg.Quota.DailyBudget != 10000 {
		t.Fatalf("expected default daily budget, got %d", cfg.Quota.DailyBudget)
	}
	if cfg.YouTube.CategoryID != "26" {
		t.Fatalf("expected default category, got %s", cfg.YouTube.CategoryID)
	}
}

func TestLoadConfigMissingKeys(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEYS", "")
	path := writeTempConfig(t)

	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected validation error when no API keys are set")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEYS", "key-a")
	t.Setenv("OUTPUT_DIRECTORY", "/tmp/datasets")
	t.Setenv("MIN_VIEW_COUNT", "500")
	t.Setenv("ENABLE_DATA_VALIDATION", "false")
	path := writeTempConfig(t)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Collector.OutputDir != "/tmp/datasets" {
		t.Fatalf("output dir override ignored: %s", cfg.Collector.OutputDir)
	}
	if cfg.Collector.MinViewCount != 500 {
		t.Fatalf("min view count override ignored: %d", cfg.Collector.MinViewCount)
	}
	if cfg.Collector.EnableValidation {
		t.Fatalf("validation flag override ignored")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("does-not-exist.yml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
