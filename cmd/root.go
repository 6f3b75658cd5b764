// Package cmd implements the weightlog CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/weightlog/internal/config"
	"github.com/theirongolddev/weightlog/internal/logger"
	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagStore  string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:          "weightlog",
	Short:        "Personal weight tracking dashboard",
	Long:         "Log your daily weight and compare it with a linear trajectory toward your goal.",
	SilenceUsage: true,
	RunE:         runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Weight log file, overrides config and WEIGHTLOG_STORE")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors to stderr")
}

// runtime bundles what every command needs: the effective config, the goal
// built from it, a logger and the opened store.
type runtime struct {
	cfg        config.Config
	configPath string
	goal       model.GoalConfig
	log        *logger.Logger
	store      store.Store
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return cfg, err
	}
	if flagQuiet {
		cfg.Log.Level = "error"
	}
	return cfg, nil
}

// loadRuntime is the shared setup path used by all data commands. Callers
// must Close the result.
func loadRuntime() (*runtime, error) {
	return loadRuntimeAt("")
}

// loadRuntimeAt is loadRuntime with the log level raised to level unless
// --quiet is set.
func loadRuntimeAt(level string) (*runtime, error) {
	rt, err := loadSettings(level)
	if err != nil {
		return nil, err
	}

	path := flagStore
	if path == "" {
		path = config.StorePath(rt.cfg)
	}
	st, err := store.Open(rt.cfg.Storage.Backend, path, rt.log)
	if err != nil {
		rt.log.Sync()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	rt.log.Debug("store opened", "backend", rt.cfg.Storage.Backend, "path", path)
	rt.store = st
	return rt, nil
}

// loadSettings resolves config, goal and logger without touching the store.
// The returned runtime has a nil store.
func loadSettings(level string) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if level != "" && !flagQuiet {
		cfg.Log.Level = level
	}
	goal, err := cfg.GoalConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return &runtime{
		cfg:        cfg,
		configPath: configPath(),
		goal:       goal,
		log:        log,
	}, nil
}

func (r *runtime) Close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.Warn("closing store", "error", err)
		}
	}
	r.log.Sync()
}
