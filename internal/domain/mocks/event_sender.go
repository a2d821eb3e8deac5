// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// MockBookingEventSender implements BookingEventSender for testing
type MockBookingEventSender struct {
	mock.Mock
}

func (m *MockBookingEventSender) SendMeetingRequestEvent(ctx context.Context, data models.MeetingRequestEventMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

// MockConsentTokenCodec implements ConsentTokenCodec for testing
type MockConsentTokenCodec struct {
	mock.Mock
}

func (m *MockConsentTokenCodec) Encode(token models.ConsentToken) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func (m *MockConsentTokenCodec) Decode(raw string) (models.ConsentToken, error) {
	args := m.Called(raw)
	return args.Get(0).(models.ConsentToken), args.Error(1)
}
