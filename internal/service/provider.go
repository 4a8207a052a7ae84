// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/wneessen/promoter-route/internal/config"
	"github.com/wneessen/promoter-route/internal/geocode"
	geocodeearth "github.com/wneessen/promoter-route/internal/geocode/provider/geocode-earth"
	"github.com/wneessen/promoter-route/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/promoter-route/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/promoter-route/internal/geocode/store/pgstore"
	"github.com/wneessen/promoter-route/internal/geocode/store/redisstore"
	"github.com/wneessen/promoter-route/internal/http"
)

func (s *Service) selectGeocodeProvider(lang language.Tag) (geocode.Geocoder, error) {
	httpClient := http.New(s.logger.Component("http"))

	switch strings.ToLower(s.config.GeoCoder.Provider) {
	case "osm-nominatim", "nominatim":
		coder := nominatim.New(httpClient, lang)
		if s.config.GeoCoder.Endpoint != "" {
			coder = coder.WithEndpoint(s.config.GeoCoder.Endpoint)
		}
		return coder, nil
	case "opencage":
		if s.config.GeoCoder.APIKey == "" {
			return nil, fmt.Errorf("opencage geocoder requires an API key")
		}
		return opencage.New(httpClient, lang, s.config.GeoCoder.APIKey), nil
	case "geocode-earth":
		if s.config.GeoCoder.APIKey == "" {
			return nil, fmt.Errorf("geocode-earth geocoder requires an API key")
		}
		return geocodeearth.New(httpClient, lang, s.config.GeoCoder.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", s.config.GeoCoder.Provider)
	}
}

// selectCacheStore returns the configured cache backend. A nil store disables caching.
func (s *Service) selectCacheStore(ctx context.Context) (geocode.Store, error) {
	switch strings.ToLower(s.config.Cache.Backend) {
	case config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		mem := geocode.NewMemoryStore()
		s.purge = func(context.Context) (int64, error) {
			removed := mem.Purge()
			s.logger.Debug("memory geocode cache purged", slog.Int("entries", mem.Len()))
			return int64(removed), nil
		}
		return mem, nil
	case config.CacheRedis:
		cache, err := redisstore.NewFromURL(s.config.Cache.RedisURL, redisstore.DefaultPrefix)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, cache.Close)
		if err = cache.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to redis cache: %w", err)
		}
		return cache, nil
	case config.CachePostgres:
		if s.db == nil {
			return nil, errors.New("postgres geocode cache requires a database URL")
		}
		cache := pgstore.New(s.db)
		if err := cache.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		s.purge = cache.Purge
		return cache, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", s.config.Cache.Backend)
	}
}
