// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package redisstore

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"

	"github.com/wneessen/promoter-route/internal/geocode"
)

var (
	testKey   = geocode.NewKey("osm-nominatim", "Rua A 100, Cidade X, Brasil")
	testEntry = geocode.Entry{
		Location: geocode.Location{Latitude: -23.5505, Longitude: -46.6333, DisplayName: "Rua A, 100"},
		Found:    true,
	}
)

func testStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	store := New(redis.NewClient(&redis.Options{Addr: server.Addr()}), "")
	t.Cleanup(func() { _ = store.Close() })
	return store, server
}

func TestNewFromURL(t *testing.T) {
	t.Run("valid URL succeeds", func(t *testing.T) {
		server := miniredis.RunT(t)
		store, err := NewFromURL("redis://"+server.Addr()+"/0", "test:")
		if err != nil {
			t.Fatalf("failed to create store: %s", err)
		}
		defer func() { _ = store.Close() }()
		if err = store.Ping(t.Context()); err != nil {
			t.Errorf("failed to ping redis: %s", err)
		}
	})
	t.Run("invalid URL fails", func(t *testing.T) {
		if _, err := NewFromURL("mysql://localhost", ""); err == nil {
			t.Fatal("expected invalid URL to fail")
		}
	})
}

func TestStore_SaveLoad(t *testing.T) {
	t.Run("saved entries can be loaded", func(t *testing.T) {
		store, server := testStore(t)
		if err := store.Save(t.Context(), testKey, testEntry, time.Hour); err != nil {
			t.Fatalf("failed to save entry: %s", err)
		}
		if !server.Exists(DefaultPrefix + testKey.String()) {
			t.Error("expected prefixed key to exist in redis")
		}
		entry, ok, err := store.Load(t.Context(), testKey)
		if err != nil {
			t.Fatalf("failed to load entry: %s", err)
		}
		if !ok {
			t.Fatal("expected entry to be found")
		}
		if entry != testEntry {
			t.Errorf("expected entry to be %+v, got %+v", testEntry, entry)
		}
	})
	t.Run("unknown keys are reported as missing", func(t *testing.T) {
		store, _ := testStore(t)
		_, ok, err := store.Load(t.Context(), geocode.NewKey("osm-nominatim", "unknown"))
		if err != nil {
			t.Fatalf("failed to load entry: %s", err)
		}
		if ok {
			t.Error("did not expect an entry to be found")
		}
	})
	t.Run("entries expire with their TTL", func(t *testing.T) {
		store, server := testStore(t)
		if err := store.Save(t.Context(), testKey, geocode.Entry{Found: false}, time.Minute); err != nil {
			t.Fatalf("failed to save entry: %s", err)
		}
		server.FastForward(2 * time.Minute)
		if _, ok, _ := store.Load(t.Context(), testKey); ok {
			t.Error("expected entry to be expired")
		}
	})
	t.Run("corrupt entries fail to load", func(t *testing.T) {
		store, server := testStore(t)
		if err := server.Set(DefaultPrefix+testKey.String(), "not-json"); err != nil {
			t.Fatalf("failed to seed redis: %s", err)
		}
		if _, _, err := store.Load(t.Context(), testKey); err == nil {
			t.Error("expected corrupt entry to fail")
		}
	})
	t.Run("unreachable server fails", func(t *testing.T) {
		store, server := testStore(t)
		server.Close()
		if err := store.Save(t.Context(), testKey, testEntry, time.Hour); err == nil {
			t.Error("expected save to fail")
		}
	})
}
