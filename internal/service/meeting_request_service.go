// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/scheduler"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// notificationWorkers bounds the concurrent confirmation emails of one meeting.
const notificationWorkers = 4

// MeetingRequestService runs the meeting request workflow: negotiation,
// confirmation, consent and cancellation.
type MeetingRequestService struct {
	RequestRepository  domain.MeetingRequestRepository
	MeetingRepository  domain.MeetingRepository
	AttendeeRepository domain.AttendeeRepository
	RoomRepository     domain.RoomRepository
	Calendar           domain.CalendarProvider
	Negotiator         *scheduler.Negotiator
	EventSender        domain.BookingEventSender
	Notifier           domain.Notifier
	TokenCodec         domain.ConsentTokenCodec
	Config             ServiceConfig

	now func() time.Time
}

// NewMeetingRequestService creates a new MeetingRequestService.
func NewMeetingRequestService(
	requestRepository domain.MeetingRequestRepository,
	meetingRepository domain.MeetingRepository,
	attendeeRepository domain.AttendeeRepository,
	roomRepository domain.RoomRepository,
	calendar domain.CalendarProvider,
	negotiator *scheduler.Negotiator,
	eventSender domain.BookingEventSender,
	notifier domain.Notifier,
	tokenCodec domain.ConsentTokenCodec,
	config ServiceConfig,
) *MeetingRequestService {
	return &MeetingRequestService{
		RequestRepository:  requestRepository,
		MeetingRepository:  meetingRepository,
		AttendeeRepository: attendeeRepository,
		RoomRepository:     roomRepository,
		Calendar:           calendar,
		Negotiator:         negotiator,
		EventSender:        eventSender,
		Notifier:           notifier,
		TokenCodec:         tokenCodec,
		Config:             config,
		now:                time.Now,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingRequestService) ServiceReady() bool {
	return s.RequestRepository != nil &&
		s.MeetingRepository != nil &&
		s.AttendeeRepository != nil &&
		s.RoomRepository != nil &&
		s.Calendar != nil &&
		s.Negotiator != nil &&
		s.EventSender != nil &&
		s.Notifier != nil &&
		s.TokenCodec != nil
}

func (s *MeetingRequestService) notReady(ctx context.Context) error {
	slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
	return domain.NewUnavailableError("meeting request service not initialized", domain.ErrServiceUnavailable)
}

// CreateMeetingRequest validates the conditions, checks the participants
// against the directory, negotiates the proposals and stores the request.
// Finding no slot is not an error: the request is stored as no_results.
func (s *MeetingRequestService) CreateMeetingRequest(ctx context.Context, payload *models.CreateMeetingRequestPayload) (*models.CreateMeetingRequestResult, error) {
	if !s.ServiceReady() {
		return nil, s.notReady(ctx)
	}
	if payload == nil {
		return nil, invalid("meeting request payload is required")
	}
	if payload.RequesterID == "" {
		return nil, invalid("requester id is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("requester", payload.RequesterID))

	conditions := payload.Conditions
	conditions.Emails = slices.Clone(conditions.Emails)
	conditions.Normalize()
	if err := validateConditions(conditions); err != nil {
		slog.WarnContext(ctx, "invalid meeting request conditions", logging.ErrKey, err)
		return nil, err
	}

	members, err := checkMembers(ctx, s.Calendar, conditions.Emails, s.Config.AdminAccount)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	req := &models.MeetingRequest{
		UID:            uuid.New().String(),
		RequesterID:    payload.RequesterID,
		RequesterEmail: strings.ToLower(strings.TrimSpace(payload.RequesterEmail)),
		RequesterName:  payload.RequesterName,
		Conditions:     conditions,
		Summary:        payload.Summary,
		Description:    payload.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_request_id", req.UID))

	// Window cannot fail here, validateConditions already resolved it.
	window, _ := conditions.Window()
	proposals, err := s.Negotiator.Negotiate(ctx, scheduler.NegotiationRequest{
		Organizer:    req.Organizer(),
		Participants: conditions.Emails,
		Window:       window,
		Duration:     conditions.Duration(),
		Timezone:     conditions.Timezone,
		RoomType:     conditions.RoomType,
		BuildingID:   conditions.BuildingID,
		Features:     conditions.Features,
	})
	if err != nil {
		slog.ErrorContext(ctx, "negotiation failed", logging.ErrKey, err)
		return nil, err
	}
	for i := range proposals {
		if cm := proposals[i].ConflictingMember; cm != nil && cm.Name == "" {
			for _, member := range members {
				if strings.EqualFold(member.Email, cm.Email) {
					cm.Name = member.FullName
					break
				}
			}
		}
	}

	req.Status = models.StatusNoResults
	if len(proposals) > 0 {
		req.Status = models.StatusInProcess
	}

	if err := s.RequestRepository.Create(ctx, req); err != nil {
		slog.ErrorContext(ctx, "error storing meeting request", logging.ErrKey, err)
		return nil, err
	}

	for _, member := range members {
		s.addAttendee(ctx, req.UID, models.AttendeeOfMeetingRequest, strings.ToLower(member.Email), member.FullName)
	}

	s.publishEvent(ctx, req)

	slog.InfoContext(ctx, "meeting request created",
		"status", req.Status,
		"proposals", len(proposals),
	)

	return &models.CreateMeetingRequestResult{
		MeetingRequest: req,
		Proposals:      proposals,
	}, nil
}

// GetMeetingRequest returns one active meeting request. When ref names a
// requester, a request of another requester is reported as not found.
func (s *MeetingRequestService) GetMeetingRequest(ctx context.Context, ref models.MeetingRequestRefPayload) (*models.MeetingRequest, error) {
	if !s.ServiceReady() {
		return nil, s.notReady(ctx)
	}
	req, _, err := s.loadRequest(ctx, ref.UID, ref.RequesterID)
	return req, err
}

// ListMeetingRequests returns the requester's active requests, newest first.
func (s *MeetingRequestService) ListMeetingRequests(ctx context.Context, requesterID string) ([]*models.MeetingRequest, error) {
	if !s.ServiceReady() {
		return nil, s.notReady(ctx)
	}
	if requesterID == "" {
		return nil, invalid("requester id is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("requester", requesterID))
	requests, err := s.RequestRepository.ListByRequester(ctx, requesterID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing meeting requests", logging.ErrKey, err)
		return nil, err
	}
	return requests, nil
}

// ConfirmMeetingRequest commits the proposal the requester picked. A proposal
// without a conflicting member books the meeting right away; otherwise a
// placeholder holds the slot and the conflicting member is asked for consent.
// Provider calls happen before any state change, so a failed confirmation
// leaves the request as it was.
func (s *MeetingRequestService) ConfirmMeetingRequest(ctx context.Context, payload *models.ConfirmMeetingRequestPayload) (*models.MeetingRequest, error) {
	if !s.ServiceReady() {
		return nil, s.notReady(ctx)
	}
	if payload == nil {
		return nil, invalid("confirmation payload is required")
	}

	req, revision, err := s.loadRequest(ctx, payload.UID, payload.RequesterID)
	if err != nil {
		return nil, err
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_request_id", req.UID))

	if req.Status != models.StatusInProcess {
		slog.WarnContext(ctx, "meeting request cannot be confirmed", "status", req.Status)
		return nil, domain.NewConflictError(
			fmt.Sprintf("meeting request is %s and cannot be confirmed", req.Status), domain.ErrInvalidTransition)
	}

	if err := s.validateProposal(req, payload); err != nil {
		slog.WarnContext(ctx, "invalid proposal", logging.ErrKey, err)
		return nil, err
	}

	room, err := s.proposedRoom(ctx, req, payload.RoomID)
	if err != nil {
		return nil, err
	}

	if payload.Summary != "" {
		req.Summary = payload.Summary
	}
	if req.Summary == "" {
		req.Summary = models.DefaultSummary
	}
	if payload.Description != "" {
		req.Description = payload.Description
	}

	if payload.Kind == models.ProposalConflicts {
		return s.requestConsent(ctx, req, revision, payload.Slot, room, strings.ToLower(payload.ConflictingMember.Email))
	}
	return s.commit(ctx, req, revision, payload.Slot, room, req.Conditions.Emails)
}

// CancelMeetingRequest cancels a request from any state but cancelled. A
// booked meeting loses its provider event, its record and its attendee rows;
// a pending request loses its placeholder.
func (s *MeetingRequestService) CancelMeetingRequest(ctx context.Context, ref models.MeetingRequestRefPayload) (*models.MeetingRequest, error) {
	if !s.ServiceReady() {
		return nil, s.notReady(ctx)
	}

	req, revision, err := s.loadRequest(ctx, ref.UID, ref.RequesterID)
	if err != nil {
		return nil, err
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_request_id", req.UID))

	if !req.Status.CanTransitionTo(models.StatusCancelled) {
		slog.WarnContext(ctx, "meeting request cannot be cancelled", "status", req.Status)
		return nil, domain.NewConflictError(
			fmt.Sprintf("meeting request is %s and cannot be cancelled", req.Status), domain.ErrInvalidTransition)
	}

	var meeting *models.Meeting
	var meetingRevision uint64
	if req.MeetingUID != "" {
		meeting, meetingRevision, err = s.MeetingRepository.GetWithRevision(ctx, req.MeetingUID)
		if err != nil && domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.ErrorContext(ctx, "error getting meeting", logging.ErrKey, err, "meeting_uid", req.MeetingUID)
			return nil, err
		}
		if meeting != nil && !meeting.IsActive() {
			meeting = nil
		}
	}

	// provider side first; nothing local changes if one of these fails
	if meeting != nil {
		if err := s.Calendar.DeleteEvent(ctx, meeting.Organizer, meeting.ProviderEventID, true); err != nil {
			slog.ErrorContext(ctx, "error deleting meeting event", logging.ErrKey, err,
				"provider_event_id", meeting.ProviderEventID)
			return nil, err
		}
	}
	if req.Status == models.StatusPending && req.Consent != nil && req.Consent.PlaceholderEventID != "" {
		if err := s.Calendar.DeleteEvent(ctx, s.Config.AdminAccount, req.Consent.PlaceholderEventID, false); err != nil {
			slog.ErrorContext(ctx, "error deleting placeholder event", logging.ErrKey, err,
				"provider_event_id", req.Consent.PlaceholderEventID)
			return nil, err
		}
	}

	now := s.now()
	if err := req.Transition(models.StatusCancelled, now); err != nil {
		return nil, domain.NewConflictError(err.Error(), domain.ErrInvalidTransition)
	}
	req.MarkDeleted(now)
	if err := s.RequestRepository.Update(ctx, req, revision); err != nil {
		slog.ErrorContext(ctx, "error cancelling meeting request", logging.ErrKey, err, logging.PriorityCritical(),
			"meeting_uid", req.MeetingUID)
		return nil, err
	}

	if meeting != nil {
		meeting.MarkDeleted(now)
		if err := s.MeetingRepository.Update(ctx, meeting, meetingRevision); err != nil {
			slog.ErrorContext(ctx, "error soft deleting cancelled meeting", logging.ErrKey, err,
				logging.PriorityCritical(), "meeting_uid", meeting.UID)
		}
		s.removeAttendees(ctx, meeting.UID)
	}
	s.removeAttendees(ctx, req.UID)

	s.publishEvent(ctx, req)
	slog.InfoContext(ctx, "meeting request cancelled")

	return req, nil
}

// loadRequest reads an active request with its revision. requesterID, when
// set, must own the request.
func (s *MeetingRequestService) loadRequest(ctx context.Context, uid, requesterID string) (*models.MeetingRequest, uint64, error) {
	req, revision, err := s.fetchRequest(ctx, uid)
	if err != nil {
		return nil, 0, err
	}

	if !req.IsActive() || (requesterID != "" && req.RequesterID != requesterID) {
		slog.WarnContext(ctx, "meeting request not visible to requester", "meeting_request_id", uid, "requester", requesterID)
		return nil, 0, domain.NewNotFoundError("meeting request not found", domain.ErrMeetingRequestNotFound)
	}
	return req, revision, nil
}

// fetchRequest reads a request by id, soft-deleted ones included.
func (s *MeetingRequestService) fetchRequest(ctx context.Context, uid string) (*models.MeetingRequest, uint64, error) {
	if uid == "" {
		return nil, 0, invalid("meeting request id is required")
	}
	if _, err := uuid.Parse(uid); err != nil {
		return nil, 0, domain.NewValidationError("meeting request id must be a UUID", domain.ErrValidationFailed, err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_request_id", uid))
	req, revision, err := s.RequestRepository.GetWithRevision(ctx, uid)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "meeting request not found")
			return nil, 0, domain.NewNotFoundError("meeting request not found", domain.ErrMeetingRequestNotFound, err)
		}
		slog.ErrorContext(ctx, "error getting meeting request", logging.ErrKey, err)
		return nil, 0, err
	}
	return req, revision, nil
}

// validateProposal checks that the chosen proposal fits the request conditions.
func (s *MeetingRequestService) validateProposal(req *models.MeetingRequest, p *models.ConfirmMeetingRequestPayload) error {
	if !p.Kind.Valid() {
		return invalid("unknown proposal kind %q", p.Kind)
	}
	if !p.Slot.Valid() {
		return invalid("proposal slot start must be before its end")
	}
	if p.Slot.Duration() != req.Conditions.Duration() {
		return invalid("proposal slot lasts %s, the request asks for %s", p.Slot.Duration(), req.Conditions.Duration())
	}

	window, err := req.Conditions.Window()
	if err != nil {
		return domain.NewValidationError("stored conditions are unreadable", domain.ErrValidationFailed, err)
	}
	bounds := window.Bounds()
	if p.Slot.Start.Before(bounds.Start) || p.Slot.End.After(bounds.End) {
		return invalid("proposal slot is outside the requested date range")
	}

	if req.Conditions.NeedsRoom() && p.RoomID == "" {
		return invalid("a physical meeting proposal requires a room id")
	}

	if p.Kind != models.ProposalConflicts {
		return nil
	}
	if p.ConflictingMember == nil || p.ConflictingMember.Email == "" {
		return invalid("a conflicts proposal requires the conflicting member")
	}
	member := strings.ToLower(p.ConflictingMember.Email)
	if !slices.Contains(req.Conditions.Emails, member) {
		return invalid("conflicting member %s is not a participant", member)
	}
	if member == req.Organizer() {
		return invalid("the organizer cannot be the conflicting member")
	}
	return nil
}

// proposedRoom loads the room of a physical meeting and checks it still
// fits the request. Virtual meetings return nil.
func (s *MeetingRequestService) proposedRoom(ctx context.Context, req *models.MeetingRequest, roomID string) (*models.CandidateRoom, error) {
	if !req.Conditions.NeedsRoom() {
		return nil, nil
	}

	room, err := s.RoomRepository.Get(ctx, roomID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, domain.NewValidationError(fmt.Sprintf("room %s does not exist", roomID), domain.ErrRoomNotFound, err)
		}
		slog.ErrorContext(ctx, "error getting room", logging.ErrKey, err, "room_id", roomID)
		return nil, err
	}

	filter := models.RoomFilter{BuildingID: req.Conditions.BuildingID, MinCapacity: len(req.Conditions.Emails)}
	if !filter.Matches(*room) {
		return nil, invalid("room %s does not fit the request", roomID)
	}
	return room, nil
}

// commit creates the provider event and the meeting, then moves the request
// to accepted. A lost race on the request revision rolls the booking back.
func (s *MeetingRequestService) commit(ctx context.Context, req *models.MeetingRequest, revision uint64, slot interval.TimeInterval, room *models.CandidateRoom, attendees []string) (*models.MeetingRequest, error) {
	organizer := req.Organizer()
	spec := models.EventSpec{
		OrganizerID: organizer,
		CalendarID:  organizer,
		Summary:     req.Summary,
		Description: req.Description,
		Start:       slot.Start,
		End:         slot.End,
		TimeZone:    req.Conditions.Timezone,
		Attendees:   attendees,
	}
	if room != nil {
		spec.RoomCalendarID = room.CalendarID
	}

	eventID, err := s.Calendar.CreateEvent(ctx, spec)
	if err != nil {
		slog.ErrorContext(ctx, "error creating meeting event", logging.ErrKey, err)
		return nil, err
	}
	ctx = logging.AppendCtx(ctx, slog.String("provider_event_id", eventID))

	now := s.now().UTC()
	meeting := &models.Meeting{
		UID:               uuid.New().String(),
		MeetingRequestUID: req.UID,
		RequesterID:       req.RequesterID,
		Organizer:         organizer,
		Slot:              slot,
		ProviderEventID:   eventID,
		Summary:           req.Summary,
		Description:       req.Description,
		CreatedAt:         now,
	}
	if room != nil {
		meeting.RoomID = room.ID
	}

	if err := s.MeetingRepository.Create(ctx, meeting); err != nil {
		slog.ErrorContext(ctx, "meeting event created but the meeting could not be stored",
			logging.ErrKey, err, logging.PriorityCritical())
		s.rollbackEvent(ctx, organizer, eventID)
		return nil, err
	}

	req.MeetingUID = meeting.UID
	if err := req.Transition(models.StatusAccepted, now); err != nil {
		return nil, domain.NewConflictError(err.Error(), domain.ErrInvalidTransition)
	}
	if err := s.RequestRepository.Update(ctx, req, revision); err != nil {
		slog.ErrorContext(ctx, "meeting booked but the request could not be updated",
			logging.ErrKey, err, logging.PriorityCritical(), "meeting_uid", meeting.UID)
		s.rollbackEvent(ctx, organizer, eventID)
		meeting.MarkDeleted(now)
		if _, mrev, getErr := s.MeetingRepository.GetWithRevision(ctx, meeting.UID); getErr == nil {
			if delErr := s.MeetingRepository.Update(ctx, meeting, mrev); delErr != nil {
				slog.ErrorContext(ctx, "error rolling back meeting", logging.ErrKey, delErr,
					logging.PriorityCritical(), "meeting_uid", meeting.UID)
			}
		}
		return nil, err
	}

	names := s.attendeeNames(ctx, req.UID)
	for _, email := range attendees {
		s.addAttendee(ctx, meeting.UID, models.AttendeeOfMeeting, email, names[email])
	}

	s.publishEvent(ctx, req)
	s.sendConfirmations(ctx, req, meeting, room, attendees, names)

	slog.InfoContext(ctx, "meeting booked", "meeting_uid", meeting.UID)
	return req, nil
}

func (s *MeetingRequestService) rollbackEvent(ctx context.Context, identity, eventID string) {
	if err := s.Calendar.DeleteEvent(ctx, identity, eventID, false); err != nil {
		slog.ErrorContext(ctx, "error rolling back meeting event, manual reconciliation needed",
			logging.ErrKey, err, logging.PriorityCritical(), "provider_event_id", eventID)
	}
}

func (s *MeetingRequestService) addAttendee(ctx context.Context, parentUID string, kind models.AttendeeKind, email, name string) {
	attendee := &models.Attendee{
		ParentUID: parentUID,
		Kind:      kind,
		Email:     email,
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	if err := s.AttendeeRepository.Create(ctx, attendee); err != nil {
		slog.WarnContext(ctx, "error storing attendee", logging.ErrKey, err,
			"parent_uid", parentUID, "email", email)
	}
}

// removeAttendees soft-deletes every attendee row of parentUID.
func (s *MeetingRequestService) removeAttendees(ctx context.Context, parentUID string) {
	attendees, err := s.AttendeeRepository.ListByParent(ctx, parentUID)
	if err != nil {
		slog.WarnContext(ctx, "error listing attendees", logging.ErrKey, err, "parent_uid", parentUID)
		return
	}
	for _, attendee := range attendees {
		if err := s.AttendeeRepository.SoftDelete(ctx, attendee.UID); err != nil {
			slog.WarnContext(ctx, "error removing attendee", logging.ErrKey, err,
				"parent_uid", parentUID, "attendee_uid", attendee.UID)
		}
	}
}

// attendeeNames maps the participant emails of a request to the names the
// directory gave them.
func (s *MeetingRequestService) attendeeNames(ctx context.Context, requestUID string) map[string]string {
	names := map[string]string{}
	attendees, err := s.AttendeeRepository.ListByParent(ctx, requestUID)
	if err != nil {
		slog.WarnContext(ctx, "error listing request attendees", logging.ErrKey, err)
		return names
	}
	for _, attendee := range attendees {
		names[attendee.Email] = attendee.Name
	}
	return names
}

func (s *MeetingRequestService) publishEvent(ctx context.Context, req *models.MeetingRequest) {
	err := s.EventSender.SendMeetingRequestEvent(ctx, models.MeetingRequestEventMessage{
		MeetingRequestUID: req.UID,
		Status:            req.Status,
		Requester:         req.RequesterID,
		MeetingUID:        req.MeetingUID,
		OccurredAt:        s.now().UTC(),
	})
	if err != nil {
		slog.WarnContext(ctx, "error publishing meeting request event", logging.ErrKey, err, "status", req.Status)
	}
}

// sendConfirmations emails every attendee. Failures are only logged.
func (s *MeetingRequestService) sendConfirmations(ctx context.Context, req *models.MeetingRequest, meeting *models.Meeting, room *models.CandidateRoom, attendees []string, names map[string]string) {
	roomName := ""
	if room != nil {
		roomName = room.Name
	}

	tasks := make([]concurrent.Task, 0, len(attendees))
	for _, email := range attendees {
		confirmation := domain.MeetingConfirmationEmail{
			RecipientEmail: email,
			RecipientName:  names[email],
			MeetingUID:     meeting.UID,
			MeetingTitle:   meeting.Summary,
			Description:    meeting.Description,
			Organizer:      meeting.Organizer,
			Attendees:      attendees,
			RoomName:       roomName,
			Start:          meeting.Slot.Start,
			End:            meeting.Slot.End,
			Timezone:       req.Conditions.Timezone,
		}
		tasks = append(tasks, func(ctx context.Context) error {
			return s.Notifier.SendMeetingConfirmation(ctx, confirmation)
		})
	}

	errs := concurrent.NewWorkerPool(notificationWorkers).RunAll(ctx, tasks...)
	if err := errors.Join(errs...); err != nil {
		slog.WarnContext(ctx, "error sending meeting confirmations", logging.ErrKey, err)
	}
}
