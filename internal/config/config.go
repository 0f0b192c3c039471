package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig controls the zap logger and the optional Sentry hook.
type LoggingConfig struct {
	LogFile      string `mapstructure:"log_file"`
	SentryDSN    string `mapstructure:"sentry_dsn"`
	EnableSentry bool   `mapstructure:"enable_sentry"`
}

// Config is the full service configuration. Player is the tracked identity;
// every query and the database file are keyed by it.
type Config struct {
	Player         string `mapstructure:"player"`
	LiveFolder     string `mapstructure:"live_folder"`
	LiveLogName    string `mapstructure:"live_log_name"`
	BackupFolder   string `mapstructure:"backup_folder"`
	DatabaseFolder string `mapstructure:"database_folder"`

	RefreshInterval    time.Duration `mapstructure:"refresh_interval"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
	ReclassifyInterval time.Duration `mapstructure:"reclassify_interval"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// Load reads the YAML config at path (or ./config.yaml when empty), applies
// defaults and GRIEF_-prefixed environment overrides, and validates.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("live_log_name", "Game.log")
	v.SetDefault("database_folder", "databases")
	v.SetDefault("refresh_interval", "30s")
	v.SetDefault("sweep_interval", "5m")
	v.SetDefault("reclassify_interval", "10m")
	v.SetDefault("logging.log_file", "")
	v.SetDefault("logging.enable_sentry", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GRIEF")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default config is fine: defaults plus env still apply.
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.BackupFolder == "" && cfg.LiveFolder != "" {
		cfg.BackupFolder = filepath.Join(cfg.LiveFolder, "logbackups")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LivePath returns the full path of the live game log.
func (c *Config) LivePath() string {
	return filepath.Join(c.LiveFolder, c.LiveLogName)
}

// Validate checks the required fields. Player may legitimately be empty on
// first run; the store refuses to open and the caller prompts for setup.
func (c *Config) Validate() error {
	if c.LiveFolder == "" {
		return fmt.Errorf("live_folder must not be empty")
	}
	if c.LiveLogName == "" {
		return fmt.Errorf("live_log_name must not be empty")
	}
	if c.DatabaseFolder == "" {
		return fmt.Errorf("database_folder must not be empty")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	if c.ReclassifyInterval <= 0 {
		return fmt.Errorf("reclassify_interval must be positive")
	}
	return nil
}
