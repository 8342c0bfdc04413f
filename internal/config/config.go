package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Token       string `env:"TELEGRAM_TOKEN,required,notEmpty"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"events_bot"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// DatabaseURL selects PostgreSQL; without it the bot falls back to SQLite at SQLitePath.
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/events.db"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
}

var (
	configInstance *Config
	configErr      error
	configOnce     sync.Once
)

// LoadConfig reads envFile (if present) and the environment once per process.
func LoadConfig(envFile string) (*Config, error) {
	configOnce.Do(func() {
		configInstance, configErr = Parse(envFile)
	})
	return configInstance, configErr
}

// GetConfig returns the current config singleton (nil if not yet loaded).
func GetConfig() *Config {
	return configInstance
}

// Parse loads envFile into the environment without overriding variables already set,
// then parses Config. A missing envFile is not an error.
func Parse(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		cfg.DBMinConns = cfg.DBMaxConns
	}
	return cfg, nil
}

// UsePostgres reports whether DATABASE_URL is configured.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}
