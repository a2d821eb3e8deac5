// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
)

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	args := m.Called(ctx, toEmail, toName, subject, htmlBody)
	return args.Error(0)
}

func (m *MockNotifier) SendConsentRequest(ctx context.Context, req domain.ConsentRequestEmail) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockNotifier) SendConsentDeclined(ctx context.Context, notice domain.ConsentDeclinedEmail) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNotifier) SendMeetingConfirmation(ctx context.Context, confirmation domain.MeetingConfirmationEmail) error {
	args := m.Called(ctx, confirmation)
	return args.Error(0)
}
