// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper provides shared helpers for the package tests.
package testhelper

import (
	"net/http"
	"os"
	"testing"
)

const (
	// TestOnlineAPIURL is a URL that is reachable when online tests are enabled.
	TestOnlineAPIURL = "https://nominatim.openstreetmap.org/status?format=json"

	integrationEnv = "PERFORM_ONLINE_API_TESTS"
	databaseEnv    = "PROMOTERROUTE_TEST_DATABASE_URL"
)

// MockRoundTripper lets tests replace the transport of an HTTP client.
type MockRoundTripper struct {
	Fn func(req *http.Request) (*http.Response, error)
}

func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless online tests were requested.
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if val := os.Getenv(integrationEnv); val == "" {
		t.Skipf("skipping online integration test, set %s to enable", integrationEnv)
	}
}

// DatabaseURL returns the Postgres DSN for integration tests or skips the test.
func DatabaseURL(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(databaseEnv)
	if dsn == "" {
		t.Skipf("%s not set; skipping postgres integration test", databaseEnv)
	}
	return dsn
}

// JSONResponse opens the given fixture file and returns it as a response body.
func JSONResponse(t *testing.T, status int, file string) *http.Response {
	t.Helper()
	data, err := os.Open(file)
	if err != nil {
		t.Fatalf("failed to open JSON response file: %s", err)
	}
	return &http.Response{
		StatusCode: status,
		Body:       data,
		Header:     make(http.Header),
	}
}
