// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// MeetingRequestStatus is the state of a meeting request.
type MeetingRequestStatus string

const (
	// StatusInProcess means proposals were found and wait for confirmation.
	StatusInProcess MeetingRequestStatus = "in_process"
	// StatusNoResults means no slot was found, including degraded attempts.
	StatusNoResults MeetingRequestStatus = "no_results"
	// StatusPending means a conflicting participant was asked for consent.
	StatusPending   MeetingRequestStatus = "pending"
	StatusAccepted  MeetingRequestStatus = "accepted"
	StatusDeclined  MeetingRequestStatus = "declined"
	StatusCancelled MeetingRequestStatus = "cancelled"
)

var transitions = map[MeetingRequestStatus][]MeetingRequestStatus{
	StatusInProcess: {StatusAccepted, StatusPending, StatusCancelled},
	StatusPending:   {StatusAccepted, StatusDeclined, StatusCancelled},
	StatusAccepted:  {StatusCancelled},
	StatusNoResults: {StatusCancelled},
	StatusDeclined:  {StatusCancelled},
}

// CanTransitionTo reports whether the workflow allows moving from s to next.
// Cancellation is allowed from every state except cancelled itself.
func (s MeetingRequestStatus) CanTransitionTo(next MeetingRequestStatus) bool {
	return slices.Contains(transitions[s], next)
}

// IsTerminal reports whether only a cancellation can follow.
func (s MeetingRequestStatus) IsTerminal() bool {
	return s != StatusInProcess && s != StatusPending
}

// MaxDateRange is the widest date span a request may cover.
const MaxDateRange = 14 * 24 * time.Hour

// MinParticipants is the smallest meeting the engine negotiates.
const MinParticipants = 2

// DefaultSummary is used when a request carries no summary.
const DefaultSummary = "Meeting"

// PlaceholderSummary is the summary of the hold created while waiting for consent.
const PlaceholderSummary = "Tentative meeting hold"

// Conditions are the constraints a meeting request is negotiated under.
type Conditions struct {
	Emails          []string           `json:"emails"`
	StartDate       string             `json:"start_date"`
	EndDate         string             `json:"end_date"`
	TimeStart       interval.TimeOfDay `json:"time_start"`
	TimeEnd         interval.TimeOfDay `json:"time_end"`
	Timezone        string             `json:"timezone"`
	DurationMinutes int                `json:"duration"`
	RoomType        RoomType           `json:"room_type"`
	BuildingID      string             `json:"building_id,omitempty"`
	Features        Features           `json:"features,omitempty"`
}

// Normalize lowercases and trims the participant emails and defaults the room type.
func (c *Conditions) Normalize() {
	for i, email := range c.Emails {
		c.Emails[i] = strings.ToLower(strings.TrimSpace(email))
	}
	if c.RoomType == "" {
		c.RoomType = RoomTypeVirtual
	}
}

// Location loads the request timezone.
func (c Conditions) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Window resolves the dates and daily time range into a DailyWindow.
func (c Conditions) Window() (interval.DailyWindow, error) {
	loc, err := c.Location()
	if err != nil {
		return interval.DailyWindow{}, err
	}
	start, err := interval.ParseDate(c.StartDate)
	if err != nil {
		return interval.DailyWindow{}, err
	}
	end, err := interval.ParseDate(c.EndDate)
	if err != nil {
		return interval.DailyWindow{}, err
	}
	return interval.DailyWindow{
		StartDate: start,
		EndDate:   end,
		TimeStart: c.TimeStart,
		TimeEnd:   c.TimeEnd,
		Location:  loc,
	}, nil
}

// Duration returns the requested meeting length.
func (c Conditions) Duration() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}

// NeedsRoom reports whether a physical room must be booked.
func (c Conditions) NeedsRoom() bool {
	return c.RoomType == RoomTypePhysical
}

// MeetingRequest is a persisted negotiation awaiting or past confirmation.
type MeetingRequest struct {
	UID            string               `json:"uid"`
	RequesterID    string               `json:"requester_id"`
	RequesterEmail string               `json:"requester_email"`
	RequesterName  string               `json:"requester_name,omitempty"`
	Conditions     Conditions           `json:"conditions"`
	Status         MeetingRequestStatus `json:"status"`
	Summary        string               `json:"summary"`
	Description    string               `json:"description,omitempty"`
	Consent        *ConsentRecord       `json:"consent,omitempty"`
	MeetingUID     string               `json:"meeting_uid,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	SoftDelete
}

// Organizer returns the requester's email when they take part in the meeting,
// otherwise the first participant.
func (r *MeetingRequest) Organizer() string {
	requester := strings.ToLower(r.RequesterEmail)
	if requester != "" && slices.Contains(r.Conditions.Emails, requester) {
		return requester
	}
	if len(r.Conditions.Emails) == 0 {
		return ""
	}
	return r.Conditions.Emails[0]
}

// Transition moves the request to next, stamping UpdatedAt.
func (r *MeetingRequest) Transition(next MeetingRequestStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("cannot move meeting request %s from %s to %s", r.UID, r.Status, next)
	}
	r.Status = next
	r.UpdatedAt = now.UTC()
	return nil
}

// ConsentRecord keeps what the workflow needs while a conflicting participant
// decides whether to join.
type ConsentRecord struct {
	Member             Participant           `json:"member"`
	PlaceholderEventID string                `json:"placeholder_event_id"`
	Slot               interval.TimeInterval `json:"slot"`
	RoomID             string                `json:"room_id,omitempty"`
	Attendees          []string              `json:"attendees"`
	OrganizedEvents    []CalendarEvent       `json:"organized_events,omitempty"`
	AttendedEvents     []CalendarEvent       `json:"attended_events,omitempty"`
	RequestedAt        time.Time             `json:"requested_at"`
}

// EventsToDrop returns the ids of every event the member gives up by accepting.
func (c *ConsentRecord) EventsToDrop() []string {
	ids := make([]string, 0, len(c.OrganizedEvents)+len(c.AttendedEvents))
	for _, e := range c.OrganizedEvents {
		ids = append(ids, e.ID)
	}
	for _, e := range c.AttendedEvents {
		ids = append(ids, e.ID)
	}
	return ids
}
