// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/mocks"
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	require.NotNil(t, registry)
	assert.Empty(t, registry.Names())

	provider, err := registry.GetProvider("google")
	assert.Nil(t, provider)
	assert.Error(t, err)
}

func TestRegistry_RegisterProvider(t *testing.T) {
	registry := NewRegistry()
	mockProvider := &mocks.MockCalendarProvider{}

	registry.RegisterProvider("google", mockProvider)

	provider, err := registry.GetProvider("google")
	require.NoError(t, err)
	assert.Equal(t, mockProvider, provider)
}

func TestRegistry_RegisterProvider_Overwrite(t *testing.T) {
	registry := NewRegistry()
	mockProvider1 := &mocks.MockCalendarProvider{}
	mockProvider2 := &mocks.MockCalendarProvider{}

	registry.RegisterProvider("google", mockProvider1)
	registry.RegisterProvider("google", mockProvider2)

	provider, err := registry.GetProvider("google")
	require.NoError(t, err)
	assert.Same(t, mockProvider2, provider, "should return the most recently registered provider")
}

func TestRegistry_MultipleProviders(t *testing.T) {
	registry := NewRegistry()
	googleProvider := &mocks.MockCalendarProvider{}
	graphProvider := &mocks.MockCalendarProvider{}

	registry.RegisterProvider("graph", graphProvider)
	registry.RegisterProvider("google", googleProvider)

	provider, err := registry.GetProvider("google")
	require.NoError(t, err)
	assert.Same(t, googleProvider, provider)

	provider, err = registry.GetProvider("graph")
	require.NoError(t, err)
	assert.Same(t, graphProvider, provider)

	assert.Equal(t, []string{"google", "graph"}, registry.Names())
}

func TestRegistry_GetProvider_NotFound(t *testing.T) {
	tests := []struct {
		name     string
		provider string
	}{
		{name: "unknown provider", provider: "exchange"},
		{name: "empty name", provider: ""},
		{name: "names are case sensitive", provider: "Google"},
	}

	registry := NewRegistry()
	registry.RegisterProvider("google", &mocks.MockCalendarProvider{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := registry.GetProvider(tt.provider)

			assert.Nil(t, provider)
			require.Error(t, err)
			assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
			assert.Contains(t, err.Error(), "calendar provider not found")
		})
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterProvider("google", &mocks.MockCalendarProvider{})

	var wg sync.WaitGroup
	iterations := 100

	type readResult struct {
		provider domain.CalendarProvider
		err      error
	}
	readResults := make(chan readResult, iterations)

	for i := 0; i < iterations; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			provider, err := registry.GetProvider("google")
			readResults <- readResult{provider: provider, err: err}
		}()
		go func(idx int) {
			defer wg.Done()
			registry.RegisterProvider(fmt.Sprintf("provider-%d", idx), &mocks.MockCalendarProvider{})
		}(i)
	}

	wg.Wait()
	close(readResults)

	for result := range readResults {
		assert.NoError(t, result.err)
		assert.NotNil(t, result.provider)
	}
	assert.Len(t, registry.Names(), iterations+1)
}
