// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// NATS wildcard subjects that the booking service handles messages about.
const (
	// BookingAPIQueue is the queue group of the booking API subscribers.
	// The subject is of the form: lfx.booking-api.queue
	BookingAPIQueue = "lfx.booking-api.queue"
)

// NATS request/reply subjects served by the booking service.
const (
	// MeetingRequestCreateSubject validates, negotiates and persists a meeting request.
	// The subject is of the form: lfx.booking-api.meeting_requests.create
	MeetingRequestCreateSubject = "lfx.booking-api.meeting_requests.create"

	// MeetingRequestGetSubject returns one meeting request.
	// The subject is of the form: lfx.booking-api.meeting_requests.get
	MeetingRequestGetSubject = "lfx.booking-api.meeting_requests.get"

	// MeetingRequestListSubject lists the meeting requests of a requester.
	// The subject is of the form: lfx.booking-api.meeting_requests.list
	MeetingRequestListSubject = "lfx.booking-api.meeting_requests.list"

	// MeetingRequestConfirmSubject confirms a proposal.
	// The subject is of the form: lfx.booking-api.meeting_requests.confirm
	MeetingRequestConfirmSubject = "lfx.booking-api.meeting_requests.confirm"

	// MeetingRequestCancelSubject cancels a meeting request.
	// The subject is of the form: lfx.booking-api.meeting_requests.cancel
	MeetingRequestCancelSubject = "lfx.booking-api.meeting_requests.cancel"

	// CalendarMembersSubject lists the organization directory.
	// The subject is of the form: lfx.booking-api.calendar.members
	CalendarMembersSubject = "lfx.booking-api.calendar.members"

	// CalendarBusySlotsSubject returns the busy intervals of one identity.
	// The subject is of the form: lfx.booking-api.calendar.busy_slots
	CalendarBusySlotsSubject = "lfx.booking-api.calendar.busy_slots"

	// CalendarFreeSlotsSubject returns the free intervals of one identity.
	// The subject is of the form: lfx.booking-api.calendar.free_slots
	CalendarFreeSlotsSubject = "lfx.booking-api.calendar.free_slots"
)

// MeetingRequestEventSubjectPrefix prefixes the status events published on
// every workflow transition, e.g. lfx.booking-api.meeting_request.accepted.
const MeetingRequestEventSubjectPrefix = "lfx.booking-api.meeting_request."

// MeetingRequestEventSubject returns the event subject for a status.
func MeetingRequestEventSubject(status MeetingRequestStatus) string {
	return MeetingRequestEventSubjectPrefix + string(status)
}

// MeetingRequestEventMessage is published when a meeting request changes status.
type MeetingRequestEventMessage struct {
	MeetingRequestUID string               `json:"meeting_request_id"`
	Status            MeetingRequestStatus `json:"status"`
	Requester         string               `json:"requester"`
	MeetingUID        string               `json:"meeting_id,omitempty"`
	OccurredAt        time.Time            `json:"occurred_at"`
}

// CreateMeetingRequestPayload is the body of a create request.
type CreateMeetingRequestPayload struct {
	RequesterID    string     `json:"requester_id"`
	RequesterEmail string     `json:"requester_email"`
	RequesterName  string     `json:"requester_name,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	Description    string     `json:"description,omitempty"`
	Conditions     Conditions `json:"conditions"`
}

// CreateMeetingRequestResult is the reply to a create request.
type CreateMeetingRequestResult struct {
	MeetingRequest *MeetingRequest `json:"meeting_request"`
	Proposals      []Proposal      `json:"proposals"`
}

// MeetingRequestRefPayload addresses one meeting request.
type MeetingRequestRefPayload struct {
	UID         string `json:"uid"`
	RequesterID string `json:"requester_id,omitempty"`
}

// ListMeetingRequestsPayload is the body of a list request.
type ListMeetingRequestsPayload struct {
	RequesterID string `json:"requester_id"`
}

// ConfirmMeetingRequestPayload carries the proposal the requester picked.
type ConfirmMeetingRequestPayload struct {
	UID               string                `json:"uid"`
	RequesterID       string                `json:"requester_id,omitempty"`
	Kind              ProposalKind          `json:"kind"`
	Slot              interval.TimeInterval `json:"slot"`
	RoomID            string                `json:"room_id,omitempty"`
	ConflictingMember *Participant          `json:"conflicting_member,omitempty"`
	Summary           string                `json:"summary,omitempty"`
	Description       string                `json:"description,omitempty"`
}

// BusySlotsQuery asks for the availability of one identity.
type BusySlotsQuery struct {
	Identity string    `json:"identity"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Timezone string    `json:"timezone,omitempty"`
}

// SlotsResult is the reply to busy and free slot queries.
type SlotsResult struct {
	Identity string                  `json:"identity"`
	Slots    []interval.TimeInterval `json:"slots"`
}

// ErrorReply is the envelope of a failed request/reply call.
type ErrorReply struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure.
type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
