// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
)

const defaultTokenURL = "https://oauth2.googleapis.com/token"

// ServiceAccount is the subset of a service account key file needed for
// domain-wide delegation.
type ServiceAccount struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// ParseServiceAccount reads a service account key in its JSON form.
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, errors.New("service account key is missing client_email or private_key")
	}
	if sa.TokenURI == "" {
		sa.TokenURI = defaultTokenURL
	}
	return &sa, nil
}

// LoadServiceAccount reads the key from file, or from inline JSON when file
// is empty.
func LoadServiceAccount(file, inline string) (*ServiceAccount, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account file: %w", err)
		}
		return ParseServiceAccount(data)
	}
	if inline == "" {
		return nil, errors.New("no service account key configured")
	}
	return ParseServiceAccount([]byte(inline))
}

// ClientOptionsFunc returns the API client options used to act as subject.
type ClientOptionsFunc func(ctx context.Context, subject string, scopes ...string) ([]option.ClientOption, error)

// ClientOptions returns a ClientOptionsFunc that impersonates subject
// through domain-wide delegation. Both token and API calls are traced.
func (sa *ServiceAccount) ClientOptions(timeout time.Duration) ClientOptionsFunc {
	return func(_ context.Context, subject string, scopes ...string) ([]option.ClientOption, error) {
		cfg := &jwt.Config{
			Email:        sa.ClientEmail,
			PrivateKey:   []byte(sa.PrivateKey),
			PrivateKeyID: sa.PrivateKeyID,
			TokenURL:     sa.TokenURI,
			Scopes:       scopes,
			Subject:      subject,
		}

		transport := otelhttp.NewTransport(http.DefaultTransport)
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
			Timeout:   timeout,
			Transport: transport,
		})

		httpClient := &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Base:   transport,
				Source: cfg.TokenSource(tokenCtx),
			},
		}
		return []option.ClientOption{option.WithHTTPClient(httpClient)}, nil
	}
}
