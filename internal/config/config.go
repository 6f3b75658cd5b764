// Package config loads and saves the weightlog TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"

	"github.com/BurntSushi/toml"
)

// AppName names the config and data directories.
const AppName = "weightlog"

// ErrInvalidGoal is returned by GoalConfig when the [goal] section cannot
// produce a usable trajectory.
var ErrInvalidGoal = errors.New("invalid goal configuration")

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config holds all weightlog configuration.
type Config struct {
	Goal       GoalSection      `toml:"goal"`
	Storage    StorageConfig    `toml:"storage"`
	Input      InputConfig      `toml:"input"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// GoalSection is the on-disk form of the goal trajectory.
type GoalSection struct {
	StartWeight    float64 `toml:"start_weight"`
	GoalWeight     float64 `toml:"goal_weight"`
	StartDate      string  `toml:"start_date"`
	WeeklyLossRate float64 `toml:"weekly_loss_rate"`
}

// StorageConfig selects where the observation log lives.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path,omitempty"`
}

// InputConfig bounds accepted weight input.
type InputConfig struct {
	MinWeight float64 `toml:"min_weight"`
	MaxWeight float64 `toml:"max_weight"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds `weightlog serve` settings.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Mode  string `toml:"mode"`
	Level string `toml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Goal: GoalSection{
			StartWeight:    102.3,
			GoalWeight:     89.0,
			StartDate:      "2025-07-07",
			WeeklyLossRate: 0.64,
		},
		Storage: StorageConfig{
			Backend: BackendCSV,
		},
		Input: InputConfig{
			MinWeight: 60.0,
			MaxWeight: 150.0,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8788",
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Mode:  "dev",
			Level: "warn",
		},
	}
}

// GoalConfig converts the [goal] section into the immutable value used by every
// computation.
func (c Config) GoalConfig() (model.GoalConfig, error) {
	g := c.Goal
	start, err := time.Parse(model.DateLayout, strings.TrimSpace(g.StartDate))
	if err != nil {
		return model.GoalConfig{}, fmt.Errorf("%w: start_date %q: %v", ErrInvalidGoal, g.StartDate, err)
	}
	if g.StartWeight <= 0 || g.GoalWeight <= 0 {
		return model.GoalConfig{}, fmt.Errorf("%w: weights must be positive", ErrInvalidGoal)
	}
	if g.WeeklyLossRate < 0 {
		return model.GoalConfig{}, fmt.Errorf("%w: weekly_loss_rate must not be negative", ErrInvalidGoal)
	}
	return model.GoalConfig{
		StartWeight:    g.StartWeight,
		GoalWeight:     g.GoalWeight,
		StartDate:      model.Day(start),
		WeeklyLossRate: g.WeeklyLossRate,
	}, nil
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppName)
}

// DataDir returns the XDG-compliant data directory holding the log.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", AppName)
}

// ConfigPath returns the full path to the default config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// StorePath resolves the observation log location: WEIGHTLOG_STORE wins,
// then [storage] path, then a backend-specific file in DataDir.
func StorePath(cfg Config) string {
	if p := os.Getenv("WEIGHTLOG_STORE"); p != "" {
		return p
	}
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	if cfg.Storage.Backend == BackendSQLite {
		return filepath.Join(DataDir(), "gewicht_log.db")
	}
	return filepath.Join(DataDir(), "gewicht_log.csv")
}

// Load reads the default config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
// Keys missing from the file keep their default values.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // config path is chosen by the local user
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.Storage.Backend {
	case BackendCSV, BackendSQLite:
	case "":
		cfg.Storage.Backend = BackendCSV
	default:
		return cfg, fmt.Errorf("parsing config: unknown storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Input.MinWeight >= cfg.Input.MaxWeight {
		return cfg, fmt.Errorf("parsing config: input min_weight %.1f must be below max_weight %.1f",
			cfg.Input.MinWeight, cfg.Input.MaxWeight)
	}

	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
