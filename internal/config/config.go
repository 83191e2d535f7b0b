package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the runtime configuration, read from the environment (and .env when present).
type Config struct {
	Env         string
	Port        string
	DBPath      string
	StaticDir   string
	StoreDriver string
	DatabaseDSN string
	RabbitMQURL string
}

// Load reads the configuration. Values already set in the environment win over .env.
func Load() (Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_PATH", "users_db.json")
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("STORE_DRIVER", DriverFile)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.AutomaticEnv()

	cfg := Config{
		Env:         v.GetString("APP_ENV"),
		Port:        v.GetString("APP_PORT"),
		DBPath:      v.GetString("DB_PATH"),
		StaticDir:   v.GetString("STATIC_DIR"),
		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the store settings are usable.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverFile:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the %s store", DriverFile)
		}
	case DriverSQLite, DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s store", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s, %s or %s)", c.StoreDriver, DriverFile, DriverSQLite, DriverPostgres)
	}
	if c.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}
	return nil
}
