// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// Meeting is a committed booking backed by a provider calendar event.
type Meeting struct {
	UID               string                `json:"uid"`
	MeetingRequestUID string                `json:"meeting_request_uid"`
	RequesterID       string                `json:"requester_id"`
	Organizer         string                `json:"organizer"`
	RoomID            string                `json:"room_id,omitempty"`
	Slot              interval.TimeInterval `json:"slot"`
	ProviderEventID   string                `json:"provider_event_id"`
	Summary           string                `json:"summary"`
	Description       string                `json:"description,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	SoftDelete
}

// Tags returns the lookup tags of the meeting.
func (m *Meeting) Tags() []string {
	if m == nil {
		return nil
	}

	tags := []string{}
	if m.UID != "" {
		tags = append(tags, m.UID, fmt.Sprintf("meeting_uid:%s", m.UID))
	}
	if m.MeetingRequestUID != "" {
		tags = append(tags, fmt.Sprintf("meeting_request_uid:%s", m.MeetingRequestUID))
	}
	if m.RoomID != "" {
		tags = append(tags, fmt.Sprintf("room_id:%s", m.RoomID))
	}
	if m.ProviderEventID != "" {
		tags = append(tags, fmt.Sprintf("provider_event_id:%s", m.ProviderEventID))
	}
	return tags
}

// AttendeeKind says which entity an attendee row belongs to.
type AttendeeKind string

const (
	AttendeeOfMeetingRequest AttendeeKind = "meeting_request"
	AttendeeOfMeeting        AttendeeKind = "meeting"
)

// Attendee joins a participant to a meeting request or a meeting.
type Attendee struct {
	UID       string       `json:"uid"`
	ParentUID string       `json:"parent_uid"`
	Kind      AttendeeKind `json:"kind"`
	Email     string       `json:"email"`
	Name      string       `json:"name,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	SoftDelete
}
