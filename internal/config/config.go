// Package config loads service settings from an optional YAML file with
// environment variable overrides. A missing file is fine; everything has a
// default and secrets come from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Addr string `yaml:"addr"`
		// BaseURL is how the console reaches the API.
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`

	Console struct {
		Addr string `yaml:"addr"`
		Session struct {
			CookieName string `yaml:"cookie_name"`
			// TTLDays controls cookie lifetime; the token inside still
			// expires on its own schedule.
			TTLDays int  `yaml:"ttl_days"`
			Secure  bool `yaml:"secure"`
		} `yaml:"session"`
		// LookupTTL bounds how long reference-table rows feed form selects
		// before a refetch.
		LookupTTL string `yaml:"lookup_ttl"`
	} `yaml:"console"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	JWT struct {
		Secret    string `yaml:"secret"`
		Issuer    string `yaml:"issuer"`
		AccessTTL string `yaml:"access_ttl"`
	} `yaml:"jwt"`
}

// Load reads the YAML file at path (optional), layers a local .env and the
// process environment on top, and fills defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, err
			}
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8080"
	}
	if c.Console.Addr == "" {
		c.Console.Addr = ":8081"
	}
	if c.Console.Session.CookieName == "" {
		c.Console.Session.CookieName = "access_token"
	}
	if c.Console.Session.TTLDays == 0 {
		c.Console.Session.TTLDays = 7
	}
	if c.Console.LookupTTL == "" {
		c.Console.LookupTTL = "2m"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "partydesk"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "30m"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 25
	}
	if c.Storage.Postgres.MaxIdleConns == 0 {
		c.Storage.Postgres.MaxIdleConns = 10
	}
	if c.Storage.Postgres.ConnMaxLifetime == "" {
		c.Storage.Postgres.ConnMaxLifetime = "15m"
	}

	c.applyEnvOverrides()
	return &c, nil
}

// applyEnvOverrides: environment wins over config.yaml
func (c *Config) applyEnvOverrides() {
	setStr(&c.App.Env, "PARTYDESK_ENV")
	setStr(&c.API.Addr, "PARTYDESK_API_ADDR")
	setStr(&c.API.BaseURL, "PARTYDESK_API_URL")
	setStr(&c.Console.Addr, "PARTYDESK_CONSOLE_ADDR")
	setStr(&c.Console.Session.CookieName, "PARTYDESK_SESSION_COOKIE")
	setInt(&c.Console.Session.TTLDays, "PARTYDESK_SESSION_TTL_DAYS")
	setBool(&c.Console.Session.Secure, "PARTYDESK_SESSION_SECURE")
	setStr(&c.Storage.DSN, "PARTYDESK_PG_DSN")
	setStr(&c.JWT.Secret, "PARTYDESK_JWT_SECRET")
	setStr(&c.JWT.Issuer, "PARTYDESK_JWT_ISSUER")
	setStr(&c.JWT.AccessTTL, "PARTYDESK_JWT_ACCESS_TTL")
}

// AccessTTL parses the configured access token lifetime.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWT.AccessTTL)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// LookupTTL parses the console lookup cache lifetime.
func (c *Config) LookupTTL() time.Duration {
	d, err := time.ParseDuration(c.Console.LookupTTL)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// SessionTTL returns the cookie lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Console.Session.TTLDays) * 24 * time.Hour
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
