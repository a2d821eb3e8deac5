// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package providers

import (
	"log/slog"
	"os"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/calendar/google"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// GoogleConfig holds Google Workspace specific configuration
type GoogleConfig struct {
	ServiceAccountFile string
	ServiceAccountJSON string
	Customer           string
}

// NewGoogleConfigFromEnv creates a GoogleConfig from environment variables
func NewGoogleConfigFromEnv() GoogleConfig {
	return GoogleConfig{
		ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		Customer:           os.Getenv("GOOGLE_CUSTOMER"),
	}
}

// IsConfigured returns true if a service account key is provided
func (g GoogleConfig) IsConfigured() bool {
	return g.ServiceAccountFile != "" || g.ServiceAccountJSON != ""
}

// SetupGoogle configures the Google calendar backend
func SetupGoogle(registry domain.CalendarProviderRegistry, config GoogleConfig, adminAccount string, timeout time.Duration) {
	if !config.IsConfigured() {
		slog.Debug("Google calendar integration not configured",
			"has_service_account_file", config.ServiceAccountFile != "",
			"has_service_account_json", config.ServiceAccountJSON != "")
		return
	}

	sa, err := google.LoadServiceAccount(config.ServiceAccountFile, config.ServiceAccountJSON)
	if err != nil {
		slog.With(logging.ErrKey, err).Warn("Google calendar integration not configured - invalid service account key")
		return
	}

	provider, err := google.NewProvider(google.Config{
		AdminAccount:  adminAccount,
		Customer:      config.Customer,
		ClientOptions: sa.ClientOptions(timeout),
	})
	if err != nil {
		slog.With(logging.ErrKey, err).Warn("Google calendar integration not configured")
		return
	}

	registry.RegisterProvider(google.ProviderName, provider)
	slog.Info("Google calendar integration configured",
		"client_email", sa.ClientEmail,
		"has_customer", config.Customer != "")
}
