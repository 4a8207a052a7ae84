// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"

	"github.com/wneessen/promoter-route/internal/logger"
)

const configEnv = "PROMOTERROUTE"

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

const (
	CacheNone     = "none"
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	// Allowed values: text, json
	LogFormat string `fig:"logformat" default:"text"`
	// Country is appended to every geocoding query
	Country string `fig:"country" default:"Brasil"`

	Server struct {
		Address         string        `fig:"address" default:":8080"`
		ShutdownTimeout time.Duration `fig:"shutdown_timeout" default:"10s"`
	} `fig:"server"`

	GeoCoder struct {
		// Allowed values: osm-nominatim, opencage, geocode-earth
		Provider string `fig:"provider" default:"osm-nominatim"`
		APIKey   string `fig:"apikey"`
		Endpoint string `fig:"endpoint"`
		// Allowed value: 0 to 10. Unset means DefaultMaxRetries, an explicit 0 disables retries.
		MaxRetries *int `fig:"max_retries"`
		// Unset means DefaultRetryDelay
		RetryDelay *time.Duration `fig:"retry_delay"`
	} `fig:"geocoder"`

	RateLimit struct {
		// Allowed values: fixed, spacing
		Mode     string        `fig:"mode" default:"fixed"`
		Interval time.Duration `fig:"interval" default:"1s"`
	} `fig:"ratelimit"`

	Cache struct {
		// Allowed values: none, memory, redis, postgres
		Backend       string        `fig:"backend" default:"memory"`
		HitTTL        time.Duration `fig:"hit_ttl" default:"720h"`
		MissTTL       time.Duration `fig:"miss_ttl" default:"1h"`
		PurgeInterval time.Duration `fig:"purge_interval" default:"15m"`
		RedisURL      string        `fig:"redis_url" default:"redis://localhost:6379/0"`
	} `fig:"cache"`

	Database struct {
		URL string `fig:"url"`
	} `fig:"database"`

	Route struct {
		SkipUnresolved bool `fig:"skip_unresolved"`
	} `fig:"route"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		return err
	}

	c.GeoCoder.Provider = strings.ToLower(c.GeoCoder.Provider)
	switch c.GeoCoder.Provider {
	case "osm-nominatim":
	case "opencage", "geocode-earth":
		if c.GeoCoder.APIKey == "" {
			return fmt.Errorf("geocoder %s requires an API key", c.GeoCoder.Provider)
		}
	default:
		return fmt.Errorf("invalid geocoder: %s", c.GeoCoder.Provider)
	}
	if c.GeoCoder.MaxRetries == nil {
		retries := DefaultMaxRetries
		c.GeoCoder.MaxRetries = &retries
	}
	if c.GeoCoder.RetryDelay == nil {
		delay := DefaultRetryDelay
		c.GeoCoder.RetryDelay = &delay
	}
	if *c.GeoCoder.MaxRetries < 0 || *c.GeoCoder.MaxRetries > 10 {
		return fmt.Errorf("invalid geocoder max retries: %d", *c.GeoCoder.MaxRetries)
	}
	if *c.GeoCoder.RetryDelay < 0 {
		return fmt.Errorf("invalid geocoder retry delay: %s", *c.GeoCoder.RetryDelay)
	}

	c.RateLimit.Mode = strings.ToLower(c.RateLimit.Mode)
	if c.RateLimit.Mode != "fixed" && c.RateLimit.Mode != "spacing" {
		return fmt.Errorf("invalid rate limit mode: %s", c.RateLimit.Mode)
	}
	// Nominatim's usage policy allows at most one request per second
	if c.GeoCoder.Provider == "osm-nominatim" && c.RateLimit.Interval < time.Second {
		return fmt.Errorf("rate limit interval for osm-nominatim must be at least 1s, got %s",
			c.RateLimit.Interval)
	}
	if c.RateLimit.Interval <= 0 {
		return fmt.Errorf("invalid rate limit interval: %s", c.RateLimit.Interval)
	}

	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	case CachePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("cache backend %s requires a database URL", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("invalid cache backend: %s", c.Cache.Backend)
	}
	if c.Cache.HitTTL < 0 || c.Cache.MissTTL < 0 {
		return fmt.Errorf("invalid cache TTL: hit=%s, miss=%s", c.Cache.HitTTL, c.Cache.MissTTL)
	}
	if c.Cache.PurgeInterval <= 0 {
		return fmt.Errorf("invalid cache purge interval: %s", c.Cache.PurgeInterval)
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
