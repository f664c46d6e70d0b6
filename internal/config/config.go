package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Install InstallConfig `mapstructure:"install"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	StateFile  string `mapstructure:"state_file"`
	HistoryDB  string `mapstructure:"history_db"`
	LogFile    string `mapstructure:"log_file"`
	ConfigsDir string `mapstructure:"configs_dir"`
}

// InstallConfig contains installation behavior configuration
type InstallConfig struct {
	Mode          string `mapstructure:"mode"`
	AssumeYes     bool   `mapstructure:"assume_yes"`
	SudoKeepAlive bool   `mapstructure:"sudo_keep_alive"`
	RunTimeout    int    `mapstructure:"run_timeout"` // seconds for a whole run, 0 = unlimited
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".config", "postinstall"))
	}
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("POSTINSTALL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file: defaults apply.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.DataDir = expandPath(cfg.Paths.DataDir)
	cfg.Paths.StateFile = expandPath(cfg.Paths.StateFile)
	cfg.Paths.HistoryDB = expandPath(cfg.Paths.HistoryDB)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)
	cfg.Paths.ConfigsDir = expandPath(cfg.Paths.ConfigsDir)

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	dataDir := filepath.Join(homeDir, ".local", "share", "postinstall")

	viper.SetDefault("paths.data_dir", dataDir)
	viper.SetDefault("paths.state_file", filepath.Join(dataDir, "steps.state"))
	viper.SetDefault("paths.history_db", filepath.Join(dataDir, "history.db"))
	viper.SetDefault("paths.log_file", filepath.Join(dataDir, "postinstall.log"))
	viper.SetDefault("paths.configs_dir", filepath.Join(homeDir, ".config"))

	viper.SetDefault("install.mode", "default")
	viper.SetDefault("install.assume_yes", false)
	viper.SetDefault("install.sudo_keep_alive", true)
	viper.SetDefault("install.run_timeout", 0)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.color", "auto")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	return os.ExpandEnv(path)
}
