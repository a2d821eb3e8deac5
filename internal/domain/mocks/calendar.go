// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// MockCalendarProvider implements CalendarProvider for testing
type MockCalendarProvider struct {
	mock.Mock
}

func (m *MockCalendarProvider) Name() string {
	return "mock"
}

func (m *MockCalendarProvider) GetBusy(ctx context.Context, calendarID string, start, end time.Time, timezone string) (interval.BusySet, error) {
	args := m.Called(ctx, calendarID, start, end, timezone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interval.BusySet), args.Error(1)
}

func (m *MockCalendarProvider) CreateEvent(ctx context.Context, spec models.EventSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *MockCalendarProvider) CreateAllDayEvent(ctx context.Context, spec models.AllDayEventSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *MockCalendarProvider) DeleteEvent(ctx context.Context, identity, eventID string, notifyAttendees bool) error {
	args := m.Called(ctx, identity, eventID, notifyAttendees)
	return args.Error(0)
}

func (m *MockCalendarProvider) GetEventsBetween(ctx context.Context, identity string, start, end time.Time) ([]models.CalendarEvent, error) {
	args := m.Called(ctx, identity, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CalendarEvent), args.Error(1)
}

func (m *MockCalendarProvider) ListMembers(ctx context.Context) ([]models.DirectoryMember, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DirectoryMember), args.Error(1)
}

// MockCalendarProviderRegistry implements CalendarProviderRegistry for testing
type MockCalendarProviderRegistry struct {
	mock.Mock
}

func (m *MockCalendarProviderRegistry) GetProvider(name string) (domain.CalendarProvider, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CalendarProvider), args.Error(1)
}

func (m *MockCalendarProviderRegistry) RegisterProvider(name string, provider domain.CalendarProvider) {
	m.Called(name, provider)
}
