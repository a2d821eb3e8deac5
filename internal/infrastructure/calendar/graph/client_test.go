// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package graph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves a token endpoint at /token and hands every other
// request to handler.
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		TenantID:       "tenant",
		ClientID:       "client",
		ClientSecret:   "secret",
		BaseURL:        srv.URL,
		AuthURL:        srv.URL + "/token",
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{TenantID: "contoso", ClientID: "id", ClientSecret: "secret"})

	assert.Equal(t, BaseURL, client.config.BaseURL)
	assert.Equal(t, "https://login.microsoftonline.com/contoso/oauth2/v2.0/token", client.config.AuthURL)
	assert.Equal(t, DefaultClientTimeout, client.config.Timeout)
	assert.Equal(t, DefaultMaxRetries, client.config.MaxRetries)
	assert.Equal(t, DefaultInitialBackoff, client.config.InitialBackoff)
	assert.Equal(t, DefaultMaxBackoff, client.config.MaxBackoff)
	assert.Equal(t, DefaultBackoffMultiplier, client.config.BackoffMultiplier)
	assert.Equal(t, []string{Scope}, client.oauthConfig.Scopes)
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		err      error
		expected bool
	}{
		{name: "ok", status: http.StatusOK, expected: false},
		{name: "bad request", status: http.StatusBadRequest, expected: false},
		{name: "not found", status: http.StatusNotFound, expected: false},
		{name: "throttled", status: http.StatusTooManyRequests, expected: true},
		{name: "server error", status: http.StatusInternalServerError, expected: true},
		{name: "gateway timeout", status: http.StatusGatewayTimeout, expected: true},
		{name: "network error", err: errors.New("connection reset"), expected: true},
		{name: "cancelled", err: context.Canceled, expected: false},
		{name: "deadline", err: context.DeadlineExceeded, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shouldRetry(tt.status, tt.err))
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	client := NewClient(Config{
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 2,
	})

	assert.Equal(t, 100*time.Millisecond, client.calculateBackoff(0))

	for attempt := 1; attempt <= 6; attempt++ {
		backoff := client.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, backoff, 100*time.Millisecond)
		// max plus 25% jitter
		assert.LessOrEqual(t, backoff, 1250*time.Millisecond)
	}
}

func TestClient_Do(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, `outlook.timezone="UTC"`, r.Header.Get("Prefer"))
		assert.Equal(t, "/users/x", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "value", body["key"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	})
	client := newTestClient(srv)

	var out struct {
		ID string `json:"id"`
	}
	err := client.Do(context.Background(), http.MethodPost, "/users/x", map[string]string{"key": "value"}, &out,
		map[string]string{"Prefer": preferUTC})

	require.NoError(t, err)
	assert.Equal(t, "abc", out.ID)
}

func TestClient_Do_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(srv)

	err := client.Do(context.Background(), http.MethodDelete, "/users/x/events/1", nil, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Do_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	client := newTestClient(srv)

	err := client.Do(context.Background(), http.MethodGet, "/users", nil, nil, nil)

	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Do_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"ErrorItemNotFound","message":"The specified object was not found in the store."}}`))
	})
	client := newTestClient(srv)

	err := client.Do(context.Background(), http.MethodGet, "/users/x/events/1", nil, nil, nil)

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "ErrorItemNotFound", apiErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Do_AbsoluteNextLink(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "token", r.URL.Query().Get("$skiptoken"))
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(srv)

	err := client.Do(context.Background(), http.MethodGet, srv.URL+"/users?$skiptoken=token", nil, nil, nil)

	require.NoError(t, err)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 0, StatusOf(errors.New("plain")))
	assert.Equal(t, http.StatusGone, StatusOf(&APIError{StatusCode: http.StatusGone}))
}
