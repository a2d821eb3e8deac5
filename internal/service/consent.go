// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// placeholderDescription is the description of the hold created while a
// conflicting participant decides.
const placeholderDescription = "Time reserved for a meeting waiting for a participant's answer"

// requestConsent holds the slot with a placeholder on the admin calendar and
// asks the conflicting member to join, listing the events they would drop.
func (s *MeetingRequestService) requestConsent(ctx context.Context, req *models.MeetingRequest, revision uint64, slot interval.TimeInterval, room *models.CandidateRoom, member string) (*models.MeetingRequest, error) {
	ctx = logging.AppendCtx(ctx, slog.String("conflicting_member", member))

	events, err := s.Calendar.GetEventsBetween(ctx, member, slot.Start, slot.End)
	if err != nil {
		slog.ErrorContext(ctx, "error listing the conflicting member's events", logging.ErrKey, err)
		return nil, err
	}

	record := &models.ConsentRecord{
		Member:    models.Participant{Email: member, Name: s.attendeeNames(ctx, req.UID)[member]},
		Slot:      slot,
		Attendees: slices.Clone(req.Conditions.Emails),
	}
	for _, event := range events {
		if event.OrganizerEmail == member {
			record.OrganizedEvents = append(record.OrganizedEvents, event)
		} else {
			record.AttendedEvents = append(record.AttendedEvents, event)
		}
	}

	spec := models.EventSpec{
		OrganizerID: s.Config.AdminAccount,
		CalendarID:  s.Config.AdminAccount,
		Summary:     models.PlaceholderSummary,
		Description: placeholderDescription,
		Start:       slot.Start,
		End:         slot.End,
		TimeZone:    req.Conditions.Timezone,
		Attendees:   record.Attendees,
	}
	if room != nil {
		spec.RoomCalendarID = room.CalendarID
		record.RoomID = room.ID
	}

	placeholderID, err := s.Calendar.CreateEvent(ctx, spec)
	if err != nil {
		slog.ErrorContext(ctx, "error creating placeholder event", logging.ErrKey, err)
		return nil, err
	}
	record.PlaceholderEventID = placeholderID
	ctx = logging.AppendCtx(ctx, slog.String("placeholder_event_id", placeholderID))

	now := s.now().UTC()
	record.RequestedAt = now

	links, err := s.consentLinks(req, record, now)
	if err != nil {
		slog.ErrorContext(ctx, "error sealing consent token", logging.ErrKey, err)
		s.rollbackEvent(ctx, s.Config.AdminAccount, placeholderID)
		return nil, domain.NewInternalError("failed to create consent links", err)
	}

	req.Consent = record
	if err := req.Transition(models.StatusPending, now); err != nil {
		s.rollbackEvent(ctx, s.Config.AdminAccount, placeholderID)
		return nil, domain.NewConflictError(err.Error(), domain.ErrInvalidTransition)
	}
	if err := s.RequestRepository.Update(ctx, req, revision); err != nil {
		slog.ErrorContext(ctx, "placeholder created but the request could not be updated",
			logging.ErrKey, err, logging.PriorityCritical())
		s.rollbackEvent(ctx, s.Config.AdminAccount, placeholderID)
		return nil, err
	}

	err = s.Notifier.SendConsentRequest(ctx, domain.ConsentRequestEmail{
		RecipientEmail:  member,
		RecipientName:   record.Member.Name,
		RequesterName:   displayName(req.RequesterName, req.RequesterEmail, req.RequesterID),
		MeetingTitle:    req.Summary,
		Start:           slot.Start,
		End:             slot.End,
		Timezone:        req.Conditions.Timezone,
		AcceptLink:      links[models.ConsentAccept],
		DeclineLink:     links[models.ConsentDecline],
		OrganizedEvents: record.OrganizedEvents,
		AttendedEvents:  record.AttendedEvents,
	})
	if err != nil {
		slog.WarnContext(ctx, "error sending consent request", logging.ErrKey, err)
	}

	s.publishEvent(ctx, req)
	slog.InfoContext(ctx, "consent requested",
		"organized_events", len(record.OrganizedEvents),
		"attended_events", len(record.AttendedEvents),
	)
	return req, nil
}

// consentLinks seals one token per answer.
func (s *MeetingRequestService) consentLinks(req *models.MeetingRequest, record *models.ConsentRecord, now time.Time) (map[models.ConsentAction]string, error) {
	links := make(map[models.ConsentAction]string, 2)
	for _, action := range []models.ConsentAction{models.ConsentAccept, models.ConsentDecline} {
		token, err := s.TokenCodec.Encode(models.ConsentToken{
			MeetingRequestUID:  req.UID,
			MemberEmail:        record.Member.Email,
			MemberName:         record.Member.Name,
			Action:             action,
			PlaceholderEventID: record.PlaceholderEventID,
			DropEventIDs:       record.EventsToDrop(),
			ExpiresAt:          now.Add(s.Config.consentTTL()),
		})
		if err != nil {
			return nil, err
		}
		links[action] = s.Config.consentLink(string(action), token)
	}
	return links, nil
}

// AnswerConsent applies the answer sealed in a consent link. The link must
// carry action. Answering a request that is no longer pending changes
// nothing and is not an error.
func (s *MeetingRequestService) AnswerConsent(ctx context.Context, rawToken string, action models.ConsentAction) (*models.MeetingRequest, error) {
	if !s.ServiceReady() {
		return nil, s.notReady(ctx)
	}

	token, err := s.TokenCodec.Decode(rawToken)
	if err != nil {
		slog.WarnContext(ctx, "rejected consent token", logging.ErrKey, err)
		return nil, err
	}
	if token.Action != action {
		slog.WarnContext(ctx, "consent token used for the wrong answer", "token_action", token.Action, "action", action)
		return nil, domain.NewValidationError("consent token does not match the answer", domain.ErrInvalidToken)
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_request_id", token.MeetingRequestUID))
	ctx = logging.AppendCtx(ctx, slog.String("conflicting_member", token.MemberEmail))

	// a cancelled request is soft-deleted but still answers as no longer pending
	req, revision, err := s.fetchRequest(ctx, token.MeetingRequestUID)
	if err != nil {
		return nil, err
	}

	if req.Status != models.StatusPending || req.Consent == nil {
		slog.InfoContext(ctx, "consent answer ignored, request is no longer pending", "status", req.Status)
		return req, nil
	}
	if req.Consent.PlaceholderEventID != token.PlaceholderEventID || req.Consent.Member.Email != token.MemberEmail {
		slog.WarnContext(ctx, "consent token belongs to another consent round")
		return nil, domain.NewValidationError("consent token does not match the pending request", domain.ErrInvalidToken)
	}

	if action == models.ConsentAccept {
		return s.acceptConsent(ctx, req, revision)
	}
	return s.declineConsent(ctx, req, revision)
}

// acceptConsent drops the placeholder and the member's conflicting events,
// then books the meeting for every participant.
func (s *MeetingRequestService) acceptConsent(ctx context.Context, req *models.MeetingRequest, revision uint64) (*models.MeetingRequest, error) {
	record := req.Consent
	member := record.Member.Email

	if err := s.Calendar.DeleteEvent(ctx, s.Config.AdminAccount, record.PlaceholderEventID, false); err != nil {
		slog.ErrorContext(ctx, "error deleting placeholder event", logging.ErrKey, err)
		return nil, err
	}

	for _, eventID := range record.EventsToDrop() {
		s.leaveMeetings(ctx, eventID, member)
		if err := s.Calendar.DeleteEvent(ctx, member, eventID, true); err != nil {
			slog.ErrorContext(ctx, "error deleting conflicting event", logging.ErrKey, err, "provider_event_id", eventID)
			return nil, err
		}
	}

	var room *models.CandidateRoom
	if record.RoomID != "" {
		var err error
		room, err = s.RoomRepository.Get(ctx, record.RoomID)
		if err != nil {
			slog.ErrorContext(ctx, "error getting held room", logging.ErrKey, err, "room_id", record.RoomID)
			return nil, err
		}
	}

	slog.InfoContext(ctx, "conflicting member accepted", "dropped_events", len(record.EventsToDrop()))
	return s.commit(ctx, req, revision, record.Slot, room, record.Attendees)
}

// leaveMeetings removes member from the booked meetings backed by eventID.
func (s *MeetingRequestService) leaveMeetings(ctx context.Context, eventID, member string) {
	meetings, err := s.MeetingRepository.ListByProviderEventID(ctx, eventID)
	if err != nil {
		slog.WarnContext(ctx, "error looking up meetings of dropped event", logging.ErrKey, err, "provider_event_id", eventID)
		return
	}
	for _, meeting := range meetings {
		attendees, err := s.AttendeeRepository.ListByParent(ctx, meeting.UID)
		if err != nil {
			slog.WarnContext(ctx, "error listing meeting attendees", logging.ErrKey, err, "meeting_uid", meeting.UID)
			continue
		}
		for _, attendee := range attendees {
			if attendee.Email != member {
				continue
			}
			if err := s.AttendeeRepository.SoftDelete(ctx, attendee.UID); err != nil {
				slog.WarnContext(ctx, "error removing member from meeting", logging.ErrKey, err, "meeting_uid", meeting.UID)
			}
		}
	}
}

// declineConsent drops the placeholder and tells the requester.
func (s *MeetingRequestService) declineConsent(ctx context.Context, req *models.MeetingRequest, revision uint64) (*models.MeetingRequest, error) {
	record := req.Consent

	if err := s.Calendar.DeleteEvent(ctx, s.Config.AdminAccount, record.PlaceholderEventID, true); err != nil {
		slog.ErrorContext(ctx, "error deleting placeholder event", logging.ErrKey, err)
		return nil, err
	}

	if err := req.Transition(models.StatusDeclined, s.now()); err != nil {
		return nil, domain.NewConflictError(err.Error(), domain.ErrInvalidTransition)
	}
	if err := s.RequestRepository.Update(ctx, req, revision); err != nil {
		slog.ErrorContext(ctx, "error storing declined request", logging.ErrKey, err)
		return nil, err
	}

	recipient := req.RequesterEmail
	if recipient == "" {
		recipient = req.Organizer()
	}
	err := s.Notifier.SendConsentDeclined(ctx, domain.ConsentDeclinedEmail{
		RecipientEmail: recipient,
		RecipientName:  req.RequesterName,
		MemberEmail:    record.Member.Email,
		MemberName:     record.Member.Name,
		MeetingTitle:   req.Summary,
		Start:          record.Slot.Start,
		End:            record.Slot.End,
		Timezone:       req.Conditions.Timezone,
	})
	if err != nil {
		slog.WarnContext(ctx, "error sending decline notice", logging.ErrKey, err)
	}

	s.publishEvent(ctx, req)
	slog.InfoContext(ctx, "conflicting member declined")
	return req, nil
}

// displayName returns the first non-blank value.
func displayName(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
