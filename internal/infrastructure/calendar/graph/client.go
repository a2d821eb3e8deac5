// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

const (
	// BaseURL is the base URL for Microsoft Graph
	BaseURL = "https://graph.microsoft.com/v1.0"
	// AuthURLTemplate is the OAuth token endpoint, formatted with the tenant id
	AuthURLTemplate = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	// Scope requests every application permission granted to the app
	Scope = "https://graph.microsoft.com/.default"
	// DefaultClientTimeout is the default HTTP client timeout for Graph requests
	DefaultClientTimeout = 30 * time.Second
	// Default retry configuration
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 500 * time.Millisecond
	DefaultMaxBackoff        = 10 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Config holds the configuration for the Graph client
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override auth URL for testing
	AuthURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: retry configuration
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Client is an authenticated Microsoft Graph REST client.
type Client struct {
	httpClient  *http.Client
	config      Config
	oauthConfig *clientcredentials.Config
}

// NewClient creates a new Graph client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.AuthURL == "" {
		config.AuthURL = fmt.Sprintf(AuthURLTemplate, config.TenantID)
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = DefaultBackoffMultiplier
	}

	oauthConfig := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.AuthURL,
		Scopes:       []string{Scope},
	}

	transport := otelhttp.NewTransport(http.DefaultTransport)
	baseClient := &http.Client{Timeout: config.Timeout, Transport: transport}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &oauth2.Transport{
				Base: transport,
				// token requests go through the traced client as well
				Source: oauthConfig.TokenSource(context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)),
			},
		},
		config:      config,
		oauthConfig: oauthConfig,
	}
}

// APIError is a non-2xx answer from Graph.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("graph API error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("graph API error (status %d): %s", e.StatusCode, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// shouldRetry determines if an error or HTTP status code should be retried
func shouldRetry(statusCode int, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	return statusCode == http.StatusTooManyRequests
}

// calculateBackoff calculates the backoff duration for a retry attempt with jitter
func (c *Client) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return c.config.InitialBackoff
	}

	backoff := float64(c.config.InitialBackoff) * math.Pow(c.config.BackoffMultiplier, float64(attempt))
	if time.Duration(backoff) > c.config.MaxBackoff {
		backoff = float64(c.config.MaxBackoff)
	}

	// ±25% jitter
	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoffWithJitter := time.Duration(backoff + jitter)
	if backoffWithJitter < c.config.InitialBackoff {
		backoffWithJitter = c.config.InitialBackoff
	}
	return backoffWithJitter
}

// Do sends a request to path (relative to BaseURL, or absolute when it is a
// nextLink) and decodes a JSON answer into out, which may be nil. Non-2xx
// answers come back as *APIError after the retry budget is spent.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	var jsonBody []byte
	if body != nil {
		var err error
		if jsonBody, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.config.BaseURL + path
	}

	var (
		lastErr    error
		lastStatus int
	)
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt - 1)
			slog.WarnContext(ctx, "Graph API request failed, retrying",
				"method", method,
				"path", path,
				"status", lastStatus,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff.String(),
				logging.ErrKey, lastErr)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		status, err := c.send(ctx, method, url, jsonBody, out, headers)
		if err == nil {
			return nil
		}
		lastErr, lastStatus = err, status

		var apiErr *APIError
		transportErr := err
		if errors.As(err, &apiErr) {
			transportErr = nil
		}
		if !shouldRetry(status, transportErr) {
			break
		}
	}

	if shouldRetry(lastStatus, nil) {
		slog.ErrorContext(ctx, "Graph API request failed after all retries",
			"method", method,
			"path", path,
			"status", lastStatus,
			"attempts", c.config.MaxRetries+1,
			logging.ErrKey, lastErr,
			logging.PriorityCritical())
	}
	return lastErr
}

func (c *Client) send(ctx context.Context, method, url string, jsonBody []byte, out any, headers map[string]string) (int, error) {
	var bodyReader io.Reader
	if jsonBody != nil {
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	slog.DebugContext(ctx, "Graph API request completed",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, parseErrorResponse(resp.StatusCode, body)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode Graph response: %w", err)
	}
	return resp.StatusCode, nil
}

// parseErrorResponse attempts to parse a Graph error envelope
func parseErrorResponse(status int, body []byte) error {
	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return &APIError{StatusCode: status, Code: errResp.Error.Code, Message: errResp.Error.Message}
	}
	return &APIError{StatusCode: status, Message: string(body)}
}
