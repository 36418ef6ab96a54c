// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted in store_driver.
const (
	DriverMemory   = "memory"
	DriverEtcd     = "etcd"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

// Config holds all configuration for the service.
// The mapstructure tags are used by Viper to unmarshal the data.
type Config struct {
	HttpListenAddr string `mapstructure:"http_listen_addr"`
	LogLevel       string `mapstructure:"log_level"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`

	StoreDriver   string        `mapstructure:"store_driver"`
	EtcdEndpoints []string      `mapstructure:"etcd_endpoints"`
	EtcdTimeout   time.Duration `mapstructure:"etcd_timeout"`
	PostgresDSN   string        `mapstructure:"postgres_dsn"`
	SQLitePath    string        `mapstructure:"sqlite_path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	MongoURI      string        `mapstructure:"mongo_uri"`
	MongoDatabase string        `mapstructure:"mongo_database"`
}

// Load loads configuration from file and environment variables.
// When path is empty, config.yaml is looked up in ./configs and the working directory.
func Load(path string) (*Config, error) {
	viper.SetDefault("http_listen_addr", ":8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("tracing_enabled", false)
	viper.SetDefault("store_driver", DriverMemory)
	viper.SetDefault("etcd_endpoints", []string{"localhost:2379"})
	viper.SetDefault("etcd_timeout", "5s")
	viper.SetDefault("postgres_dsn", "")
	viper.SetDefault("sqlite_path", "board.db")
	viper.SetDefault("redis_addr", "localhost:6379")
	viper.SetDefault("mongo_uri", "")
	viper.SetDefault("mongo_database", "bulletin_board")

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Defaults and env vars are enough when no config file was found.
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected store driver has the settings it needs.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverEtcd:
		if len(c.EtcdEndpoints) == 0 {
			return errors.New("etcd_endpoints is required for the etcd store")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres_dsn is required for the postgres store")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required for the sqlite store")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for the redis store")
		}
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("mongo_uri and mongo_database are required for the mongo store")
		}
	default:
		return fmt.Errorf("unknown store_driver %q", c.StoreDriver)
	}
	return nil
}

// SlogLevel maps log_level to a slog.Level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
