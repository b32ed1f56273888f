// Package config carga la configuración del proceso desde variables de entorno.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port string `env:"PORT" env-default:"8080" env-description:"HTTP listen port"`

	// DB_DRIVER=sqlite|postgres|memory. DB_DSN es el path (sqlite) o DSN (postgres).
	DBDriver string `env:"DB_DRIVER" env-default:"sqlite" env-description:"storage engine"`
	DBDSN    string `env:"DB_DSN" env-default:"pets.db" env-description:"sqlite path or postgres DSN"`

	Authority string `env:"PETS_AUTHORITY" env-default:"com.example.android.pets" env-description:"identifier authority"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`
	AppName   string `env:"APP_NAME" env-default:"pets-gateway"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" env-default:"10s"`
}

// Load lee el entorno y valida.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be sqlite, postgres or memory", c.DBDriver)
	}
	if c.DBDriver == DriverPostgres && strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("DB_DSN is required for postgres")
	}
	if strings.TrimSpace(c.Authority) == "" {
		return fmt.Errorf("PETS_AUTHORITY must not be empty")
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

// Addr devuelve ":<port>".
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// Usage describe las variables soportadas (para --help).
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
