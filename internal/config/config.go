// Package config reads settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

// Config holds the process settings.
type Config struct {
	DB               string
	Addr             string
	PublicURL        string
	Remote           string
	Log              string
	Phone            string
	Currency         string
	DecimalSeparator string
	Timeout          time.Duration
}

// Load reads envFile if it exists, then the VITRINA_* variables. Variables
// already set in the environment take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("loading %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checking %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		DB:               get("VITRINA_DB", "vitrina.sqlite3"),
		Addr:             get("VITRINA_ADDR", ":8080"),
		PublicURL:        get("VITRINA_PUBLIC_URL", "http://localhost:8080"),
		Remote:           get("VITRINA_REMOTE", ""),
		Log:              get("VITRINA_LOG", ""),
		Phone:            get("VITRINA_PHONE", ""),
		Currency:         get("VITRINA_CURRENCY", "R$"),
		DecimalSeparator: get("VITRINA_DECIMAL_SEPARATOR", ","),
	}

	if utf8.RuneCountInString(cfg.DecimalSeparator) != 1 {
		return nil, fmt.Errorf("VITRINA_DECIMAL_SEPARATOR must be a single character, got %q", cfg.DecimalSeparator)
	}

	if v := os.Getenv("VITRINA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing VITRINA_TIMEOUT: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("VITRINA_TIMEOUT must not be negative, got %s", v)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

func get(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
