// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// FreeBusyProvider answers availability queries for calendar identities.
type FreeBusyProvider interface {
	// GetBusy returns the merged busy intervals of calendarID within [start, end).
	// An unknown calendar yields an empty BusySet, not an error. Retries, if
	// any, happen inside the provider.
	GetBusy(ctx context.Context, calendarID string, start, end time.Time, timezone string) (interval.BusySet, error)
}

// EventProvider manages events on provider calendars.
type EventProvider interface {
	// CreateEvent creates an event and returns the provider event id.
	CreateEvent(ctx context.Context, spec models.EventSpec) (string, error)

	// CreateAllDayEvent creates an all-day event and returns the provider event id.
	CreateAllDayEvent(ctx context.Context, spec models.AllDayEventSpec) (string, error)

	// DeleteEvent deletes an event. Deleting an event that does not exist is
	// a silent no-op.
	DeleteEvent(ctx context.Context, identity, eventID string, notifyAttendees bool) error

	// GetEventsBetween lists the events on identity's calendar overlapping [start, end).
	GetEventsBetween(ctx context.Context, identity string, start, end time.Time) ([]models.CalendarEvent, error)
}

// Directory lists the members of the organization.
type Directory interface {
	ListMembers(ctx context.Context) ([]models.DirectoryMember, error)
}

// CalendarProvider bundles every capability a calendar backend offers.
type CalendarProvider interface {
	FreeBusyProvider
	EventProvider
	Directory

	// Name identifies the backend in logs and error messages.
	Name() string
}

// CalendarProviderRegistry manages calendar providers
type CalendarProviderRegistry interface {
	// GetProvider returns the provider registered under name
	GetProvider(name string) (CalendarProvider, error)

	// RegisterProvider registers a calendar provider
	RegisterProvider(name string, provider CalendarProvider)
}
