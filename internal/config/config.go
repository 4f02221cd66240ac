// Package config loads service settings from the environment, optionally
// seeded from a dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	EnvProduction = "production"

	// DevelopmentSecret signs tokens when JWT_SECRET_KEY is unset outside
	// production.
	DevelopmentSecret = "development-secret-change-me"
)

type Config struct {
	Env      string `env:"APP_ENV,default=development"`
	HTTPAddr string `env:"HTTP_ADDR,default=:8000"`

	Database struct {
		Driver string `env:"DATABASE_DRIVER,default=sqlite"`
		URL    string `env:"DATABASE_URL,default=calculator.db"`
	}

	Auth struct {
		Secret         string        `env:"JWT_SECRET_KEY"`
		AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_EXPIRE,default=30m"`
		BcryptCost     int           `env:"BCRYPT_COST,default=10"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL,default=info"`
		Format string `env:"LOG_FORMAT,default=text"`
	}

	// UsingDefaultSecret is set when Auth.Secret fell back to DevelopmentSecret.
	UsingDefaultSecret bool
}

// Load reads envFile if it exists, then decodes the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if cfg.Auth.Secret == "" && cfg.Env != EnvProduction {
		cfg.Auth.Secret = DevelopmentSecret
		cfg.UsingDefaultSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DATABASE_DRIVER: unsupported driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL: must not be empty")
	}
	if c.Auth.Secret == "" {
		return errors.New("JWT_SECRET_KEY: required in production")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE: must be positive, got %s", c.Auth.AccessTokenTTL)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT: unsupported format %q", c.Log.Format)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
