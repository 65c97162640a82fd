package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ha1tch/circuitsim/pkg/circuitfile"
	"github.com/ha1tch/circuitsim/pkg/history"
)

// Config holds persistent editor settings
type Config struct {
	AutosaveInterval time.Duration // how often the board is auto-saved
	AutosaveDir      string        // directory of the auto-save slot
	HistoryDepth     int           // undo entries kept
	HistoryDelay     time.Duration // quiet time before an edit becomes an undo step
	LogFile          string        // empty disables logging
	LogLevel         string        // debug, info, warn, error
	LastDir          string        // last used directory
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	cwd, _ := os.Getwd()
	return Config{
		AutosaveInterval: circuitfile.DefaultAutosaveInterval,
		AutosaveDir:      defaultAutosaveDir(),
		HistoryDepth:     history.DefaultCapacity,
		HistoryDelay:     history.DefaultDelay,
		LogLevel:         "info",
		LastDir:          cwd,
	}
}

func defaultAutosaveDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".circuitedit"
	}
	return filepath.Join(dir, "circuitedit")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".circuitedit.yaml"
	}
	return filepath.Join(home, ".circuitedit.yaml")
}

// newViper returns a viper instance with the editor's defaults and
// CIRCUITEDIT_* environment overrides.
func newViper(path string) *viper.Viper {
	def := DefaultConfig()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("autosave_interval", def.AutosaveInterval)
	v.SetDefault("autosave_dir", def.AutosaveDir)
	v.SetDefault("history_depth", def.HistoryDepth)
	v.SetDefault("history_delay", def.HistoryDelay)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("last_dir", def.LastDir)
	v.SetEnvPrefix("CIRCUITEDIT")
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults; a malformed one yields the defaults and an error.
func LoadConfig(path string) (Config, error) {
	v := newViper(path)
	var readErr error
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			readErr = fmt.Errorf("read %s: %w", path, err)
			v = newViper(path)
		}
	}

	cfg := Config{
		AutosaveInterval: v.GetDuration("autosave_interval"),
		AutosaveDir:      v.GetString("autosave_dir"),
		HistoryDepth:     v.GetInt("history_depth"),
		HistoryDelay:     v.GetDuration("history_delay"),
		LogFile:          v.GetString("log_file"),
		LogLevel:         v.GetString("log_level"),
		LastDir:          v.GetString("last_dir"),
	}
	def := DefaultConfig()
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = def.AutosaveInterval
	}
	if cfg.HistoryDepth < 2 {
		cfg.HistoryDepth = def.HistoryDepth
	}
	if cfg.HistoryDelay <= 0 {
		cfg.HistoryDelay = def.HistoryDelay
	}
	return cfg, readErr
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(path string, cfg Config) error {
	v := viper.New()
	v.Set("autosave_interval", cfg.AutosaveInterval.String())
	v.Set("autosave_dir", cfg.AutosaveDir)
	v.Set("history_depth", cfg.HistoryDepth)
	v.Set("history_delay", cfg.HistoryDelay.String())
	v.Set("log_file", cfg.LogFile)
	v.Set("log_level", cfg.LogLevel)
	v.Set("last_dir", cfg.LastDir)
	v.SetConfigType("yaml")
	return v.WriteConfigAs(path)
}

// newLogger builds the editor's file logger. The terminal belongs to the
// UI, so without a log file nothing is logged.
func newLogger(cfg Config) (*zap.Logger, error) {
	if cfg.LogFile == "" {
		return zap.NewNop(), nil
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = level
	zc.OutputPaths = []string{cfg.LogFile}
	zc.ErrorOutputPaths = []string{cfg.LogFile}
	zc.DisableStacktrace = true
	return zc.Build()
}
