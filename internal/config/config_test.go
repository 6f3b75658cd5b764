package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom missing file: %v", err)
	}
	def := DefaultConfig()
	if cfg != def {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadFrom_PartialOverride(t *testing.T) {
	path := writeConfig(t, `
[goal]
goal_weight = 85.0

[storage]
backend = "sqlite"
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Goal.GoalWeight != 85.0 {
		t.Fatalf("goal_weight = %v, want 85.0", cfg.Goal.GoalWeight)
	}
	if cfg.Goal.StartWeight != 102.3 {
		t.Fatalf("start_weight = %v, want default 102.3", cfg.Goal.StartWeight)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Fatalf("backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Input.MaxWeight != 150.0 {
		t.Fatalf("max_weight = %v, want default 150.0", cfg.Input.MaxWeight)
	}
}

func TestLoadFrom_RejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "[storage]\nbackend = \"postgres\"\n")
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom accepted an unknown backend")
	}
}

func TestLoadFrom_RejectsInvertedInputRange(t *testing.T) {
	path := writeConfig(t, "[input]\nmin_weight = 150.0\nmax_weight = 60.0\n")
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom accepted min_weight above max_weight")
	}
}

func TestLoadFrom_BadTOML(t *testing.T) {
	path := writeConfig(t, "[goal\nstart_weight = ")
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom accepted malformed TOML")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Goal.WeeklyLossRate = 0.5
	cfg.Appearance.Theme = "catppuccin-mocha"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if !Exists(path) {
		t.Fatal("config file missing after SaveTo")
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestGoalConfig(t *testing.T) {
	g, err := DefaultConfig().GoalConfig()
	if err != nil {
		t.Fatalf("GoalConfig: %v", err)
	}
	if g.StartDate.Format("2006-01-02") != "2025-07-07" {
		t.Fatalf("StartDate = %s, want 2025-07-07", g.StartDate)
	}
	if g.DailyLossRate() <= 0 {
		t.Fatalf("DailyLossRate = %v, want positive", g.DailyLossRate())
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad date", func(c *Config) { c.Goal.StartDate = "07-07-2025" }},
		{"zero start", func(c *Config) { c.Goal.StartWeight = 0 }},
		{"negative rate", func(c *Config) { c.Goal.WeeklyLossRate = -0.1 }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(&cfg)
		if _, err := cfg.GoalConfig(); !errors.Is(err, ErrInvalidGoal) {
			t.Errorf("%s: err = %v, want ErrInvalidGoal", tt.name, err)
		}
	}
}

func TestStorePath(t *testing.T) {
	t.Setenv("WEIGHTLOG_STORE", "")
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg := DefaultConfig()
	if got := StorePath(cfg); got != filepath.Join("/data", AppName, "gewicht_log.csv") {
		t.Fatalf("csv default path = %q", got)
	}
	cfg.Storage.Backend = BackendSQLite
	if got := StorePath(cfg); got != filepath.Join("/data", AppName, "gewicht_log.db") {
		t.Fatalf("sqlite default path = %q", got)
	}
	cfg.Storage.Path = "/tmp/mine.csv"
	if got := StorePath(cfg); got != "/tmp/mine.csv" {
		t.Fatalf("configured path = %q", got)
	}
	t.Setenv("WEIGHTLOG_STORE", "/env/log.csv")
	if got := StorePath(cfg); got != "/env/log.csv" {
		t.Fatalf("env path = %q", got)
	}
}
