// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wneessen/promoter-route/internal/logger"
)

// Key identifies a cached lookup. Queries are compared case-insensitively.
type Key struct {
	Provider string
	Query    string
}

// NewKey returns the cache key for a provider and query.
func NewKey(provider, query string) Key {
	return Key{
		Provider: provider,
		Query:    strings.ToLower(strings.Join(strings.Fields(query), " ")),
	}
}

// String returns a flat representation of the key, usable by key/value backends.
func (k Key) String() string {
	return k.Provider + ":" + k.Query
}

// Entry is a cached lookup result. Found is false for negative entries.
type Entry struct {
	Location Location `json:"location"`
	Found    bool     `json:"found"`
}

// Store is a cache backend for geocoding results.
type Store interface {
	Load(ctx context.Context, key Key) (Entry, bool, error)
	Save(ctx context.Context, key Key, entry Entry, ttl time.Duration) error
}

// CachedGeocoder answers repeated queries from a Store. Matches are kept for ttlHit, queries
// without a match for ttlMiss. Backend failures are logged and never fail a lookup.
type CachedGeocoder struct {
	coder    Geocoder
	store    Store
	ttlHit   time.Duration
	ttlMiss  time.Duration
	logger   *logger.Logger
	observer Observer
}

func NewCachedGeocoder(coder Geocoder, store Store, ttlHit, ttlMiss time.Duration, log *logger.Logger) *CachedGeocoder {
	return &CachedGeocoder{
		coder:    coder,
		store:    store,
		ttlHit:   ttlHit,
		ttlMiss:  ttlMiss,
		logger:   log,
		observer: nopObserver{},
	}
}

// WithObserver sets the Observer that is notified about cache hits and misses.
func (c *CachedGeocoder) WithObserver(o Observer) *CachedGeocoder {
	if o != nil {
		c.observer = o
	}
	return c
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Search(ctx context.Context, query string) (Location, error) {
	if strings.TrimSpace(query) == "" {
		return Location{}, ErrInvalidInput
	}
	key := NewKey(c.coder.Name(), query)

	entry, ok, err := c.store.Load(ctx, key)
	if err != nil {
		c.logger.Warn("failed to load geocoding result from cache", logger.Err(err),
			slog.String("query", query))
	}
	if err == nil && ok {
		c.observer.ObserveCache(c.coder.Name(), true)
		if !entry.Found {
			return Location{}, fmt.Errorf("%w: no match for %q (cached)", ErrAddressNotFound, query)
		}
		loc := entry.Location
		loc.CacheHit = true
		return loc, nil
	}
	c.observer.ObserveCache(c.coder.Name(), false)

	loc, err := c.coder.Search(ctx, query)
	switch {
	case err == nil:
		c.save(ctx, key, Entry{Location: loc, Found: true}, c.ttlHit)
	case errors.Is(err, ErrAddressNotFound):
		c.save(ctx, key, Entry{Found: false}, c.ttlMiss)
	}
	return loc, err
}

func (c *CachedGeocoder) save(ctx context.Context, key Key, entry Entry, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.store.Save(ctx, key, entry, ttl); err != nil {
		c.logger.Warn("failed to store geocoding result in cache", logger.Err(err),
			slog.String("query", key.Query))
	}
}

type memoryEntry struct {
	Entry
	Expiry time.Time
}

// MemoryStore is a process-local Store. Expired entries are ignored on Load and removed by Purge.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key]memoryEntry)}
}

func (m *MemoryStore) Load(_ context.Context, key Key) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok || !time.Now().Before(entry.Expiry) {
		return Entry{}, false, nil
	}
	return entry.Entry, true, nil
}

func (m *MemoryStore) Save(_ context.Context, key Key, entry Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{Entry: entry, Expiry: time.Now().Add(ttl)}
	return nil
}

// Purge removes all expired entries and returns how many were removed.
func (m *MemoryStore) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	removed := 0
	for key, entry := range m.entries {
		if !now.Before(entry.Expiry) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
