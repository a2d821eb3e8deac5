// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package calendar holds what every calendar backend shares: the provider
// registry and the mapping of backend failures onto domain errors.
package calendar

import (
	"fmt"
	"sort"
	"sync"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
)

// Registry implements the CalendarProviderRegistry interface
type Registry struct {
	providers map[string]domain.CalendarProvider
	mu        sync.RWMutex
}

// NewRegistry creates a new calendar provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]domain.CalendarProvider),
	}
}

var _ domain.CalendarProviderRegistry = (*Registry)(nil)

// GetProvider returns the calendar provider registered under name
func (r *Registry) GetProvider(name string) (domain.CalendarProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, domain.NewNotFoundError(fmt.Sprintf("calendar provider not found: %s", name))
	}

	return provider, nil
}

// RegisterProvider registers a calendar provider
func (r *Registry) RegisterProvider(name string, provider domain.CalendarProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[name] = provider
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
