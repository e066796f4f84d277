package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Store drivers.
const (
	DriverBolt  = "bolt"
	DriverMySQL = "mysql"
)

// Config holds application configuration. Values come from an optional TOML
// file (TIMEKEEPER_CONFIG) overridden by environment variables.
type Config struct {
	HTTP struct {
		Addr string `toml:"addr"` // default: :8080
	} `toml:"http"`
	Store struct {
		Driver string `toml:"driver"` // bolt (default) or mysql
	} `toml:"store"`
	Bolt struct {
		Path string `toml:"path"` // default: timekeeper.db
	} `toml:"bolt"`
	MySQL struct {
		DSN string `toml:"dsn"` // e.g., user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
	} `toml:"mysql"`
}

// Load reads configuration from the optional TOML file named by
// TIMEKEEPER_CONFIG, then applies environment overrides and defaults.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("TIMEKEEPER_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("TIMEKEEPER_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("TIMEKEEPER_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("TIMEKEEPER_BOLT_PATH"); v != "" {
		cfg.Bolt.Path = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.MySQL.DSN = v
	}

	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverBolt
	}
	if cfg.Bolt.Path == "" {
		cfg.Bolt.Path = "timekeeper.db"
	}

	switch cfg.Store.Driver {
	case DriverBolt:
	case DriverMySQL:
		if cfg.MySQL.DSN == "" {
			return cfg, errors.New("MYSQL_DSN is required for the mysql store driver")
		}
	default:
		return cfg, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return cfg, nil
}
