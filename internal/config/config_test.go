// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	const (
		expectLogLevel      = slog.LevelInfo
		expectCountry       = "Brasil"
		expectProvider      = "osm-nominatim"
		expectMaxRetries    = DefaultMaxRetries
		expectRetryDelay    = DefaultRetryDelay
		expectRateLimitMode = "fixed"
		expectInterval      = time.Second
		expectCacheBackend  = CacheMemory
		expectServerAddress = ":8080"
	)
	t.Run("new config with all defaults set", func(t *testing.T) {
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.LogLevel != expectLogLevel {
			t.Errorf("expected log level to be: %s, got %s", expectLogLevel, conf.LogLevel)
		}
		if conf.Country != expectCountry {
			t.Errorf("expected country to be: %s, got %s", expectCountry, conf.Country)
		}
		if conf.GeoCoder.Provider != expectProvider {
			t.Errorf("expected geocoder to be: %s, got %s", expectProvider, conf.GeoCoder.Provider)
		}
		if *conf.GeoCoder.MaxRetries != expectMaxRetries {
			t.Errorf("expected max retries to be: %d, got %d", expectMaxRetries, *conf.GeoCoder.MaxRetries)
		}
		if *conf.GeoCoder.RetryDelay != expectRetryDelay {
			t.Errorf("expected retry delay to be: %s, got %s", expectRetryDelay, *conf.GeoCoder.RetryDelay)
		}
		if conf.RateLimit.Mode != expectRateLimitMode {
			t.Errorf("expected rate limit mode to be: %s, got %s", expectRateLimitMode, conf.RateLimit.Mode)
		}
		if conf.RateLimit.Interval != expectInterval {
			t.Errorf("expected rate limit interval to be: %s, got %s", expectInterval, conf.RateLimit.Interval)
		}
		if conf.Cache.Backend != expectCacheBackend {
			t.Errorf("expected cache backend to be: %s, got %s", expectCacheBackend, conf.Cache.Backend)
		}
		if conf.Server.Address != expectServerAddress {
			t.Errorf("expected server address to be: %s, got %s", expectServerAddress, conf.Server.Address)
		}
		if conf.Route.SkipUnresolved {
			t.Error("expected unresolved stores to abort the route by default")
		}
	})
	t.Run("values from env override the defaults", func(t *testing.T) {
		t.Setenv("PROMOTERROUTE_GEOCODER_PROVIDER", "OpenCage")
		t.Setenv("PROMOTERROUTE_GEOCODER_APIKEY", "secret")
		t.Setenv("PROMOTERROUTE_RATELIMIT_MODE", "spacing")
		t.Setenv("PROMOTERROUTE_ROUTE_SKIP_UNRESOLVED", "true")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.GeoCoder.Provider != "opencage" {
			t.Errorf("expected provider to be normalized to opencage, got %s", conf.GeoCoder.Provider)
		}
		if conf.RateLimit.Mode != "spacing" {
			t.Errorf("expected rate limit mode to be spacing, got %s", conf.RateLimit.Mode)
		}
		if !conf.Route.SkipUnresolved {
			t.Error("expected skip unresolved to be enabled")
		}
	})
	t.Run("zero retries and retry delay are kept", func(t *testing.T) {
		t.Setenv("PROMOTERROUTE_GEOCODER_MAX_RETRIES", "0")
		t.Setenv("PROMOTERROUTE_GEOCODER_RETRY_DELAY", "0s")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if *conf.GeoCoder.MaxRetries != 0 {
			t.Errorf("expected max retries to be 0, got %d", *conf.GeoCoder.MaxRetries)
		}
		if *conf.GeoCoder.RetryDelay != 0 {
			t.Errorf("expected retry delay to be 0s, got %s", *conf.GeoCoder.RetryDelay)
		}
	})
	t.Run("new config with invalid values from env", func(t *testing.T) {
		t.Setenv("PROMOTERROUTE_LOGLEVEL", "invalid")
		_, err := New()
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("config validation failures", func(t *testing.T) {
		tests := []struct {
			name string
			env  map[string]string
		}{
			{"unknown log format", map[string]string{"PROMOTERROUTE_LOGFORMAT": "xml"}},
			{"unknown geocoder", map[string]string{"PROMOTERROUTE_GEOCODER_PROVIDER": "invalid"}},
			{"geocoder without api key", map[string]string{"PROMOTERROUTE_GEOCODER_PROVIDER": "geocode-earth"}},
			{"negative retries", map[string]string{"PROMOTERROUTE_GEOCODER_MAX_RETRIES": "-1"}},
			{"too many retries", map[string]string{"PROMOTERROUTE_GEOCODER_MAX_RETRIES": "11"}},
			{"unknown rate limit mode", map[string]string{"PROMOTERROUTE_RATELIMIT_MODE": "burst"}},
			{"nominatim faster than once per second", map[string]string{"PROMOTERROUTE_RATELIMIT_INTERVAL": "500ms"}},
			{"unknown cache backend", map[string]string{"PROMOTERROUTE_CACHE_BACKEND": "memcached"}},
			{"postgres cache without database", map[string]string{"PROMOTERROUTE_CACHE_BACKEND": "postgres"}},
			{"negative purge interval", map[string]string{"PROMOTERROUTE_CACHE_PURGE_INTERVAL": "-1s"}},
			{"negative retry delay", map[string]string{"PROMOTERROUTE_GEOCODER_RETRY_DELAY": "-1s"}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				for k, v := range tc.env {
					t.Setenv(k, v)
				}
				if _, err := New(); err == nil {
					t.Error("expected config to fail, but didn't")
				}
			})
		}
	})
}

func TestNewFromFile(t *testing.T) {
	t.Run("reading config from valid file succeeds", func(t *testing.T) {
		conf, err := NewFromFile("../../etc", "config.toml")
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.LogLevel != slog.LevelInfo {
			t.Errorf("expected log level to be: %s, got %s", slog.LevelInfo, conf.LogLevel)
		}
		if conf.Cache.HitTTL != 720*time.Hour {
			t.Errorf("expected cache hit TTL to be: %s, got %s", 720*time.Hour, conf.Cache.HitTTL)
		}
		if conf.Server.ShutdownTimeout != 10*time.Second {
			t.Errorf("expected shutdown timeout to be: %s, got %s", 10*time.Second, conf.Server.ShutdownTimeout)
		}
	})
	t.Run("reading config from non-existent file fails", func(t *testing.T) {
		_, err := NewFromFile("../../etc", "non-existent.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("reading invalid config file fails", func(t *testing.T) {
		_, err := NewFromFile("../../testdata", "invalid.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
}

func TestGetLocale(t *testing.T) {
	t.Setenv("LC_MESSAGES", "pt_BR.UTF-8")
	if got := getLocale(); got != "pt-BR" {
		t.Errorf("expected locale to be pt-BR, got %q", got)
	}
}
