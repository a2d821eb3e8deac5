// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/service"
)

type subjectHandler func(ctx context.Context, msg domain.Message) ([]byte, error)

// BookingHandler serves the meeting request and calendar subjects.
type BookingHandler struct {
	meetingRequestService *service.MeetingRequestService
	calendarService       *service.CalendarService
}

func NewBookingHandler(
	meetingRequestService *service.MeetingRequestService,
	calendarService *service.CalendarService,
) *BookingHandler {
	return &BookingHandler{
		meetingRequestService: meetingRequestService,
		calendarService:       calendarService,
	}
}

func (h *BookingHandler) HandlerReady() bool {
	return h.meetingRequestService.ServiceReady() && h.calendarService.ServiceReady()
}

func (h *BookingHandler) handlers() map[string]subjectHandler {
	return map[string]subjectHandler{
		models.MeetingRequestCreateSubject:  h.HandleMeetingRequestCreate,
		models.MeetingRequestGetSubject:     h.HandleMeetingRequestGet,
		models.MeetingRequestListSubject:    h.HandleMeetingRequestList,
		models.MeetingRequestConfirmSubject: h.HandleMeetingRequestConfirm,
		models.MeetingRequestCancelSubject:  h.HandleMeetingRequestCancel,
		models.CalendarMembersSubject:       h.HandleCalendarMembers,
		models.CalendarBusySlotsSubject:     h.HandleCalendarBusySlots,
		models.CalendarFreeSlotsSubject:     h.HandleCalendarFreeSlots,
	}
}

// Subjects returns the subjects the handler serves, sorted.
func (h *BookingHandler) Subjects() []string {
	handlers := h.handlers()
	subjects := make([]string, 0, len(handlers))
	for subject := range handlers {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects
}

// HandleMessage implements domain.MessageHandler interface
func (h *BookingHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	var response []byte
	var err error

	handler, ok := h.handlers()[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		response = errorReply(domain.NewValidationError("unknown subject " + subject))
	} else {
		response, err = handler(ctx, msg)
		if err != nil {
			logHandlerError(ctx, err)
			response = errorReply(err)
		}
	}

	if msg.HasReply() {
		err = msg.Respond(response)
		if err != nil {
			slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
			return
		}
		slog.DebugContext(ctx, "responded to NATS message")
	} else {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
	}
}

// HandleMeetingRequestCreate is the message handler for the meeting-request-create subject.
func (h *BookingHandler) HandleMeetingRequestCreate(ctx context.Context, msg domain.Message) ([]byte, error) {
	var payload models.CreateMeetingRequestPayload
	if err := decode(msg.Data(), &payload); err != nil {
		return nil, err
	}

	result, err := h.meetingRequestService.CreateMeetingRequest(ctx, &payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

// HandleMeetingRequestGet is the message handler for the meeting-request-get
// subject. The body is either a JSON reference or the bare request id.
func (h *BookingHandler) HandleMeetingRequestGet(ctx context.Context, msg domain.Message) ([]byte, error) {
	ref, err := decodeRef(msg.Data())
	if err != nil {
		return nil, err
	}

	req, err := h.meetingRequestService.GetMeetingRequest(ctx, ref)
	if err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

// HandleMeetingRequestList is the message handler for the meeting-request-list subject.
func (h *BookingHandler) HandleMeetingRequestList(ctx context.Context, msg domain.Message) ([]byte, error) {
	var payload models.ListMeetingRequestsPayload
	if err := decode(msg.Data(), &payload); err != nil {
		return nil, err
	}

	requests, err := h.meetingRequestService.ListMeetingRequests(ctx, payload.RequesterID)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []*models.MeetingRequest{}
	}
	return json.Marshal(requests)
}

// HandleMeetingRequestConfirm is the message handler for the meeting-request-confirm subject.
func (h *BookingHandler) HandleMeetingRequestConfirm(ctx context.Context, msg domain.Message) ([]byte, error) {
	var payload models.ConfirmMeetingRequestPayload
	if err := decode(msg.Data(), &payload); err != nil {
		return nil, err
	}

	req, err := h.meetingRequestService.ConfirmMeetingRequest(ctx, &payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

// HandleMeetingRequestCancel is the message handler for the meeting-request-cancel subject.
func (h *BookingHandler) HandleMeetingRequestCancel(ctx context.Context, msg domain.Message) ([]byte, error) {
	ref, err := decodeRef(msg.Data())
	if err != nil {
		return nil, err
	}

	req, err := h.meetingRequestService.CancelMeetingRequest(ctx, ref)
	if err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

// HandleCalendarMembers is the message handler for the calendar-members subject.
func (h *BookingHandler) HandleCalendarMembers(ctx context.Context, _ domain.Message) ([]byte, error) {
	members, err := h.calendarService.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(members)
}

// HandleCalendarBusySlots is the message handler for the calendar-busy-slots subject.
func (h *BookingHandler) HandleCalendarBusySlots(ctx context.Context, msg domain.Message) ([]byte, error) {
	var query models.BusySlotsQuery
	if err := decode(msg.Data(), &query); err != nil {
		return nil, err
	}

	result, err := h.calendarService.BusySlots(ctx, query)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

// HandleCalendarFreeSlots is the message handler for the calendar-free-slots subject.
func (h *BookingHandler) HandleCalendarFreeSlots(ctx context.Context, msg domain.Message) ([]byte, error) {
	var query models.BusySlotsQuery
	if err := decode(msg.Data(), &query); err != nil {
		return nil, err
	}

	result, err := h.calendarService.FreeSlots(ctx, query)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return domain.NewValidationError("invalid request body", domain.ErrUnmarshal, err)
	}
	return nil
}

func decodeRef(data []byte) (models.MeetingRequestRefPayload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var ref models.MeetingRequestRefPayload
		err := decode(trimmed, &ref)
		return ref, err
	}
	return models.MeetingRequestRefPayload{UID: string(trimmed)}, nil
}

// errorReply encodes err as the reply envelope. Internal failures keep their
// details in the logs.
func errorReply(err error) []byte {
	errType := domain.GetErrorType(err)

	message := err.Error()
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}
	if errType == domain.ErrorTypeInternal {
		message = "internal error"
	}

	data, marshalErr := json.Marshal(models.ErrorReply{
		Error: models.ErrorBody{Type: errType.String(), Message: message},
	})
	if marshalErr != nil {
		return []byte(`{"error":{"type":"internal","message":"internal error"}}`)
	}
	return data
}

func logHandlerError(ctx context.Context, err error) {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation, domain.ErrorTypeNotFound, domain.ErrorTypeConflict:
		slog.WarnContext(ctx, "request rejected", logging.ErrKey, err)
	default:
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
	}
}
