package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
	Seed   bool         `mapstructure:"seed"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type StoreConfig struct {
	Driver      string        `mapstructure:"driver"`
	DSN         string        `mapstructure:"dsn"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Addr returns the listen address for gin
func (c ServerConfig) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// Load reads configuration from an optional YAML file at path, a .env file in
// the working directory and AUCTION_* environment variables, in increasing
// priority. PORT is honored for the listen port.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("AUCTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.dsn", "auction.db")
	v.SetDefault("store.busy_timeout", "5s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("seed", false)

	if err := v.BindEnv("server.port", "AUCTION_SERVER_PORT", "PORT"); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverSQLite && c.Store.DSN == "" {
		return errors.New("config: store.dsn is required for sqlite")
	}
	if strings.TrimPrefix(c.Server.Port, ":") == "" {
		return errors.New("config: server.port is required")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}
