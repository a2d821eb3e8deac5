// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// NoOpService is a no-operation email service that logs but doesn't send emails
type NoOpService struct{}

var _ domain.Notifier = (*NoOpService)(nil)

// NewNoOpService creates a new no-op email service
func NewNoOpService() *NoOpService {
	return &NoOpService{}
}

// Send logs the email but doesn't send it
func (s *NoOpService) Send(ctx context.Context, toEmail, _, subject, _ string) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", toEmail))

	slog.DebugContext(ctx, "email service disabled, skipping email", "subject", subject)
	return nil
}

// SendConsentRequest logs the consent request but doesn't send an email
func (s *NoOpService) SendConsentRequest(ctx context.Context, req domain.ConsentRequestEmail) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", req.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_title", req.MeetingTitle))

	slog.DebugContext(ctx, "email service disabled, skipping consent request email",
		"accept_link", req.AcceptLink, "decline_link", req.DeclineLink)
	return nil
}

// SendConsentDeclined logs the notice but doesn't send an email
func (s *NoOpService) SendConsentDeclined(ctx context.Context, notice domain.ConsentDeclinedEmail) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", notice.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_title", notice.MeetingTitle))

	slog.DebugContext(ctx, "email service disabled, skipping consent declined email")
	return nil
}

// SendMeetingConfirmation logs the confirmation but doesn't send an email
func (s *NoOpService) SendMeetingConfirmation(ctx context.Context, confirmation domain.MeetingConfirmationEmail) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", confirmation.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_title", confirmation.MeetingTitle))

	slog.DebugContext(ctx, "email service disabled, skipping meeting confirmation email")
	return nil
}
