// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

func newCalendarService() (*CalendarService, *mocks.MockCalendarProvider) {
	calendar := &mocks.MockCalendarProvider{}
	return NewCalendarService(calendar, ServiceConfig{AdminAccount: adminAccount}), calendar
}

func TestCalendarService_ListMembers(t *testing.T) {
	svc, calendar := newCalendarService()
	calendar.On("ListMembers", mock.Anything).Return([]models.DirectoryMember{
		{Email: "zoe@x.com", FullName: "Zoe"},
		{Email: "ADMIN@x.com", FullName: "Admin"},
		{Email: "bob@x.com", FullName: "Bob"},
	}, nil)

	members, err := svc.ListMembers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.DirectoryMember{
		{Email: "bob@x.com", FullName: "Bob"},
		{Email: "zoe@x.com", FullName: "Zoe"},
	}, members)
}

func TestCalendarService_NotReady(t *testing.T) {
	svc := NewCalendarService(nil, ServiceConfig{})
	assert.False(t, svc.ServiceReady())

	_, err := svc.ListMembers(context.Background())
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))

	_, err = svc.FreeSlots(context.Background(), models.BusySlotsQuery{Identity: "a@x.com"})
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestCalendarService_Slots(t *testing.T) {
	query := models.BusySlotsQuery{Identity: "a@x.com", Start: at(9, 0), End: at(12, 0), Timezone: "UTC"}

	svc, calendar := newCalendarService()
	calendar.On("GetBusy", mock.Anything, "a@x.com", query.Start, query.End, "UTC").Return(interval.BusySet{
		{Start: at(8, 0), End: at(9, 30)},
		{Start: at(10, 0), End: at(10, 30)},
		{Start: at(10, 15), End: at(11, 0)},
	}, nil)

	busy, err := svc.BusySlots(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", busy.Identity)
	assert.Equal(t, []interval.TimeInterval{
		{Start: at(9, 0), End: at(9, 30)},
		{Start: at(10, 0), End: at(11, 0)},
	}, busy.Slots)

	free, err := svc.FreeSlots(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, []interval.TimeInterval{
		{Start: at(9, 30), End: at(10, 0)},
		{Start: at(11, 0), End: at(12, 0)},
	}, free.Slots)
}

func TestCalendarService_FreeSlotsFullyBusy(t *testing.T) {
	query := models.BusySlotsQuery{Identity: "a@x.com", Start: at(9, 0), End: at(10, 0)}

	svc, calendar := newCalendarService()
	calendar.On("GetBusy", mock.Anything, "a@x.com", mock.Anything, mock.Anything, mock.Anything).
		Return(interval.BusySet{{Start: at(8, 0), End: at(11, 0)}}, nil)

	free, err := svc.FreeSlots(context.Background(), query)
	require.NoError(t, err)
	assert.NotNil(t, free.Slots)
	assert.Empty(t, free.Slots)
}

func TestCalendarService_SlotQueryValidation(t *testing.T) {
	tests := []struct {
		name  string
		query models.BusySlotsQuery
	}{
		{name: "missing identity", query: models.BusySlotsQuery{Start: at(9, 0), End: at(10, 0)}},
		{name: "inverted range", query: models.BusySlotsQuery{Identity: "a@x.com", Start: at(10, 0), End: at(9, 0)}},
		{name: "range too wide", query: models.BusySlotsQuery{Identity: "a@x.com", Start: at(9, 0), End: at(9, 0).Add(15 * 24 * time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, calendar := newCalendarService()

			_, err := svc.BusySlots(context.Background(), tt.query)

			require.Error(t, err)
			assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
			calendar.AssertNotCalled(t, "GetBusy", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCalendarService_ProviderError(t *testing.T) {
	svc, calendar := newCalendarService()
	calendar.On("GetBusy", mock.Anything, "ghost@x.com", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.NewNotFoundError("calendar not found", domain.ErrProviderNotFound))

	_, err := svc.FreeSlots(context.Background(), models.BusySlotsQuery{Identity: "ghost@x.com", Start: at(9, 0), End: at(10, 0)})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}
