package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"prxwallet/internal/domain/model"
)

const EnvPrefix = "PRXWALLET_"

// Default is the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{Mode: "live"}
	cfg.Backend.Timeout = 15 * time.Second
	cfg.Backend.RefreshSkew = 30 * time.Second
	cfg.Server.Port = 8080
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second
	cfg.Store.Path = defaultStorePath()
	cfg.Cache.Driver = "local"
	cfg.Cache.TTL = 30 * time.Second
	cfg.Cache.MaxCost = 1 << 20
	cfg.Redis.Port = 6379
	cfg.PostgreSQL.Port = 5432
	cfg.PostgreSQL.SSLMode = "disable"
	cfg.Kafka.Topic = "prxwallet.events"
	cfg.Demo.StartPrice = "0.25"
	cfg.Demo.PriceInterval = 5 * time.Second
	cfg.Watcher.Interval = 30 * time.Second
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return cfg
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "prxwallet.store"
	}
	return filepath.Join(dir, "prxwallet", "store.json")
}

// Load reads the YAML file at path over the defaults, then applies
// PRXWALLET_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	mode, ok := model.ParseMode(c.Mode)
	if !ok {
		return fmt.Errorf("invalid mode %q", c.Mode)
	}
	if mode == model.LiveMode && c.Backend.URL == "" {
		return errors.New("backend.url is required in live mode")
	}
	switch c.Cache.Driver {
	case "local", "redis":
	default:
		return fmt.Errorf("invalid cache driver %q", c.Cache.Driver)
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend.timeout must be positive")
	}
	return nil
}

func (c *Config) DataMode() model.DataMode {
	mode, _ := model.ParseMode(c.Mode)
	return mode
}

// JournalEnabled reports whether a Postgres journal is configured.
func (c *Config) JournalEnabled() bool {
	return c.PostgreSQL.Host != ""
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host, c.PostgreSQL.Port, c.PostgreSQL.User,
		c.PostgreSQL.Password, c.PostgreSQL.Database, c.PostgreSQL.SSLMode,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
