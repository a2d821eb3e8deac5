// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package providers sets up the calendar backends of the room booking
// service. Each backend reads its configuration from the environment and is
// registered only when fully configured.
package providers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/calendar"
)

// ProviderConfigs holds configuration for all supported calendar backends
type ProviderConfigs struct {
	AdminAccount string
	Timeout      time.Duration

	Google GoogleConfig
	Graph  GraphConfig
}

// NewProviderConfigsFromEnv creates provider configurations from environment
// variables. adminAccount and timeout are shared by every backend.
func NewProviderConfigsFromEnv(adminAccount string, timeout time.Duration) ProviderConfigs {
	return ProviderConfigs{
		AdminAccount: adminAccount,
		Timeout:      timeout,
		Google:       NewGoogleConfigFromEnv(),
		Graph:        NewGraphConfigFromEnv(),
	}
}

// NewProviderRegistry registers every configured backend.
func NewProviderRegistry(configs ProviderConfigs) *calendar.Registry {
	registry := calendar.NewRegistry()

	SetupGoogle(registry, configs.Google, configs.AdminAccount, configs.Timeout)
	SetupGraph(registry, configs.Graph, configs.AdminAccount, configs.Timeout)

	return registry
}

// Resolve returns the backend named by name. An empty name is accepted when
// exactly one backend is configured.
func Resolve(registry *calendar.Registry, name string) (domain.CalendarProvider, error) {
	if name == "" {
		names := registry.Names()
		if len(names) != 1 {
			return nil, fmt.Errorf("CALENDAR_PROVIDER must name one of %v", names)
		}
		name = names[0]
	}

	provider, err := registry.GetProvider(name)
	if err != nil {
		return nil, fmt.Errorf("calendar provider %q is not configured (configured: %v): %w", name, registry.Names(), err)
	}

	slog.Info("calendar provider selected", "provider", provider.Name())
	return provider, nil
}
