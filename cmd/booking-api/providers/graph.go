// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package providers

import (
	"log/slog"
	"os"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/calendar/graph"
)

// GraphConfig holds Microsoft Graph specific configuration
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// NewGraphConfigFromEnv creates a GraphConfig from environment variables
func NewGraphConfigFromEnv() GraphConfig {
	return GraphConfig{
		TenantID:     os.Getenv("GRAPH_TENANT_ID"),
		ClientID:     os.Getenv("GRAPH_CLIENT_ID"),
		ClientSecret: os.Getenv("GRAPH_CLIENT_SECRET"),
	}
}

// IsConfigured returns true if all required Graph credentials are provided
func (g GraphConfig) IsConfigured() bool {
	return g.TenantID != "" && g.ClientID != "" && g.ClientSecret != ""
}

// ToClientConfig converts the GraphConfig to a graph.Config
func (g GraphConfig) ToClientConfig(timeout time.Duration) graph.Config {
	return graph.Config{
		TenantID:     g.TenantID,
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		Timeout:      timeout,
	}
}

// SetupGraph configures the Microsoft Graph calendar backend
func SetupGraph(registry domain.CalendarProviderRegistry, config GraphConfig, adminAccount string, timeout time.Duration) {
	if !config.IsConfigured() {
		slog.Debug("Graph calendar integration not configured",
			"has_tenant_id", config.TenantID != "",
			"has_client_id", config.ClientID != "",
			"has_client_secret", config.ClientSecret != "")
		return
	}

	client := graph.NewClient(config.ToClientConfig(timeout))
	registry.RegisterProvider(graph.ProviderName, graph.NewProvider(client, adminAccount))

	slog.Info("Graph calendar integration configured",
		"tenant_id", config.TenantID,
		"client_id", config.ClientID)
}
