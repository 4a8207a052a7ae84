// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package redisstore keeps geocoding results in Redis so that several service instances share
// a single cache and a single view of the external service's usage.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/wneessen/promoter-route/internal/geocode"
)

// DefaultPrefix is prepended to every key written by the Store.
const DefaultPrefix = "promoter-route:geocode:"

type Store struct {
	client *redis.Client
	prefix string
}

// New returns a Store using an existing Redis client.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// NewFromURL parses a redis:// URL and returns a Store with a new client.
func NewFromURL(url, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return New(redis.NewClient(opts), prefix), nil
}

func (s *Store) Load(ctx context.Context, key geocode.Key) (geocode.Entry, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return geocode.Entry{}, false, nil
	}
	if err != nil {
		return geocode.Entry{}, false, fmt.Errorf("failed to read cache entry from redis: %w", err)
	}

	var entry geocode.Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return geocode.Entry{}, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	if entry.Found && !entry.Location.Valid() {
		return geocode.Entry{}, false, fmt.Errorf("cache entry for %q holds invalid coordinates", key.Query)
	}
	return entry, true, nil
}

func (s *Store) Save(ctx context.Context, key geocode.Key, entry geocode.Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err = s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry to redis: %w", err)
	}
	return nil
}

// Ping checks that the Redis server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(key geocode.Key) string {
	return s.prefix + key.String()
}
