// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// Participant identifies a person taking part in a meeting.
type Participant struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// DirectoryMember is an entry of the organization directory.
type DirectoryMember struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// CalendarEvent is an event read back from a calendar provider.
type CalendarEvent struct {
	ID             string    `json:"id"`
	OrganizerEmail string    `json:"organizer_email"`
	Summary        string    `json:"summary"`
	Link           string    `json:"link,omitempty"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
}

// EventSpec describes an event to create on a provider calendar.
type EventSpec struct {
	// OrganizerID is the identity the provider call is made as.
	OrganizerID string
	// CalendarID is the calendar the event is written to, usually the organizer's.
	CalendarID  string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
	// RoomCalendarID is empty for virtual meetings.
	RoomCalendarID string
}

// AllDayEventSpec describes an all-day event. End is exclusive.
type AllDayEventSpec struct {
	Identity   string
	CalendarID string
	Summary    string
	Start      time.Time
	End        time.Time
}
