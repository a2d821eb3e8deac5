// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// Notifier sends workflow emails. Callers treat delivery as best effort:
// failures are logged, never propagated to the workflow.
type Notifier interface {
	// Send delivers a raw HTML email.
	Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error

	SendConsentRequest(ctx context.Context, req ConsentRequestEmail) error
	SendConsentDeclined(ctx context.Context, notice ConsentDeclinedEmail) error
	SendMeetingConfirmation(ctx context.Context, confirmation MeetingConfirmationEmail) error
}

// ConsentRequestEmail asks a conflicting participant to join a meeting.
type ConsentRequestEmail struct {
	RecipientEmail  string
	RecipientName   string
	RequesterName   string
	MeetingTitle    string
	Start           time.Time
	End             time.Time
	Timezone        string
	AcceptLink      string
	DeclineLink     string
	OrganizedEvents []models.CalendarEvent
	AttendedEvents  []models.CalendarEvent
}

// ConsentDeclinedEmail tells the requester a participant declined.
type ConsentDeclinedEmail struct {
	RecipientEmail string
	RecipientName  string
	MemberEmail    string
	MemberName     string
	MeetingTitle   string
	Start          time.Time
	End            time.Time
	Timezone       string
}

// MeetingConfirmationEmail announces a committed meeting to one attendee.
type MeetingConfirmationEmail struct {
	RecipientEmail string
	RecipientName  string
	MeetingUID     string
	MeetingTitle   string
	Description    string
	Organizer      string
	Attendees      []string
	RoomName       string
	Start          time.Time
	End            time.Time
	Timezone       string
	ICSAttachment  *EmailAttachment
}

// EmailAttachment represents a file attachment for an email
type EmailAttachment struct {
	Filename    string // Name of the attachment file
	ContentType string // MIME type of the attachment
	Content     string // Base64 encoded content
}
