// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// SMTPService implements domain.Notifier using SMTP
type SMTPService struct {
	config    SMTPConfig
	templates *TemplateManager
}

// SMTPConfig holds the SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	FromName string // Optional display name for the From header
	Username string // Optional for authenticated SMTP
	Password string // Optional for authenticated SMTP
}

// FromHeader renders the From header value.
func (c SMTPConfig) FromHeader() string {
	if c.FromName == "" {
		return c.From
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.From)
}

var _ domain.Notifier = (*SMTPService)(nil)

// NewSMTPService creates a new SMTP email service
func NewSMTPService(config SMTPConfig) (*SMTPService, error) {
	templates, err := NewTemplateManager()
	if err != nil {
		return nil, err
	}
	return &SMTPService{config: config, templates: templates}, nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Send delivers a raw HTML email. The text part is the HTML with tags removed.
func (s *SMTPService) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", toEmail))

	text := strings.TrimSpace(tagPattern.ReplaceAllString(htmlBody, ""))
	return s.deliver(ctx, toEmail, subject, &RenderedEmail{HTML: htmlBody, Text: text}, nil)
}

// SendConsentRequest asks a conflicting member to give up their events.
func (s *SMTPService) SendConsentRequest(ctx context.Context, req domain.ConsentRequestEmail) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", req.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_title", req.MeetingTitle))

	rendered, err := s.templates.RenderConsentRequest(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render consent request", logging.ErrKey, err)
		return err
	}

	subject := fmt.Sprintf("Meeting request: %s", req.MeetingTitle)
	return s.deliver(ctx, req.RecipientEmail, subject, rendered, nil)
}

// SendConsentDeclined tells the requester a member declined.
func (s *SMTPService) SendConsentDeclined(ctx context.Context, notice domain.ConsentDeclinedEmail) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", notice.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_title", notice.MeetingTitle))

	rendered, err := s.templates.RenderConsentDeclined(notice)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render consent declined notice", logging.ErrKey, err)
		return err
	}

	subject := fmt.Sprintf("Meeting declined: %s", notice.MeetingTitle)
	return s.deliver(ctx, notice.RecipientEmail, subject, rendered, nil)
}

// SendMeetingConfirmation announces a committed meeting. When the caller did
// not attach an invite, one is generated from the confirmation.
func (s *SMTPService) SendMeetingConfirmation(ctx context.Context, confirmation domain.MeetingConfirmationEmail) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", confirmation.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_title", confirmation.MeetingTitle))

	rendered, err := s.templates.RenderMeetingConfirmation(confirmation)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render meeting confirmation", logging.ErrKey, err)
		return err
	}

	attachment := confirmation.ICSAttachment
	if attachment == nil {
		attachment, err = MeetingICSAttachment(ICSMeetingParams{
			MeetingUID:  confirmation.MeetingUID,
			Title:       confirmation.MeetingTitle,
			Description: confirmation.Description,
			Organizer:   confirmation.Organizer,
			Attendees:   confirmation.Attendees,
			RoomName:    confirmation.RoomName,
			Start:       confirmation.Start,
			End:         confirmation.End,
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to generate ICS invite, sending without it", logging.ErrKey, err)
		}
	}

	subject := fmt.Sprintf("Meeting scheduled: %s", confirmation.MeetingTitle)
	return s.deliver(ctx, confirmation.RecipientEmail, subject, rendered, attachment)
}

func (s *SMTPService) deliver(ctx context.Context, recipient, subject string, rendered *RenderedEmail, attachment *domain.EmailAttachment) error {
	message := buildEmailMessage(recipient, subject, rendered.HTML, rendered.Text, attachment, s.config)
	if err := sendEmailMessage(recipient, message, s.config); err != nil {
		slog.ErrorContext(ctx, "failed to send email", "subject", subject, logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "email sent successfully", "subject", subject)
	return nil
}
