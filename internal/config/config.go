// Package config loads the server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/evcraddock/medicall/internal/db"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config is the server configuration.
type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	StoreDriver    string   `mapstructure:"STORE_DRIVER"`
	DBPath         string   `mapstructure:"DB_PATH"`
	MongoURI       string   `mapstructure:"MONGODB_URI"`
	MongoDatabase  string   `mapstructure:"MONGODB_DATABASE"`
	ExecutivesFile string   `mapstructure:"EXECUTIVES_FILE"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
}

var keys = []string{
	"PORT",
	"ENV",
	"STORE_DRIVER",
	"DB_PATH",
	"MONGODB_URI",
	"MONGODB_DATABASE",
	"EXECUTIVES_FILE",
	"CORS_ORIGINS",
}

// Load reads configuration from the environment. If envFile exists its
// variables are loaded first; variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("loading %s: %w", envFile, err)
			}
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("MONGODB_URI", "mongodb://127.0.0.1:27017")
	v.SetDefault("MONGODB_DATABASE", "crm_medicall")
	v.SetDefault("CORS_ORIGINS", "*")

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("binding %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if cfg.DBPath == "" {
		path, err := db.DefaultPath()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = path
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// AllowOrigin reports whether a browser origin may call the API.
func (c *Config) AllowOrigin(origin string) bool {
	for _, o := range c.CORSOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}

	switch c.StoreDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite store")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required for the mongo store")
		}
		if c.MongoDatabase == "" {
			return errors.New("MONGODB_DATABASE is required for the mongo store")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverMongo, c.StoreDriver)
	}

	return nil
}
