// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

func TestMeetingRequestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     MeetingRequestStatus
		to       MeetingRequestStatus
		expected bool
	}{
		{StatusInProcess, StatusAccepted, true},
		{StatusInProcess, StatusPending, true},
		{StatusInProcess, StatusDeclined, false},
		{StatusInProcess, StatusCancelled, true},
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusDeclined, true},
		{StatusPending, StatusPending, false},
		{StatusAccepted, StatusCancelled, true},
		{StatusAccepted, StatusAccepted, false},
		{StatusNoResults, StatusAccepted, false},
		{StatusNoResults, StatusCancelled, true},
		{StatusDeclined, StatusCancelled, true},
		{StatusCancelled, StatusCancelled, false},
		{StatusCancelled, StatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestMeetingRequestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusInProcess.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	for _, s := range []MeetingRequestStatus{StatusAccepted, StatusDeclined, StatusCancelled, StatusNoResults} {
		assert.True(t, s.IsTerminal(), s)
	}
}

func TestMeetingRequest_Transition(t *testing.T) {
	now := time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)
	req := &MeetingRequest{UID: "req-1", Status: StatusInProcess}

	require.NoError(t, req.Transition(StatusPending, now))
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, now, req.UpdatedAt)

	err := req.Transition(StatusInProcess, now)
	assert.Error(t, err)
	assert.Equal(t, StatusPending, req.Status)
}

func TestMeetingRequest_Organizer(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		emails    []string
		expected  string
	}{
		{name: "requester takes part", requester: "b@x.com", emails: []string{"a@x.com", "b@x.com"}, expected: "b@x.com"},
		{name: "requester case is ignored", requester: "B@X.com", emails: []string{"a@x.com", "b@x.com"}, expected: "b@x.com"},
		{name: "requester is not a participant", requester: "boss@x.com", emails: []string{"a@x.com", "b@x.com"}, expected: "a@x.com"},
		{name: "no participants", requester: "boss@x.com", emails: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &MeetingRequest{RequesterEmail: tt.requester, Conditions: Conditions{Emails: tt.emails}}
			assert.Equal(t, tt.expected, req.Organizer())
		})
	}
}

func TestConditions_Window(t *testing.T) {
	from, _ := interval.NewTimeOfDay(9, 0)
	to, _ := interval.NewTimeOfDay(11, 0)
	c := Conditions{
		StartDate: "2024-03-04",
		EndDate:   "2024-03-05",
		TimeStart: from,
		TimeEnd:   to,
		Timezone:  "Europe/Madrid",
	}

	w, err := c.Window()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", w.Location.String())
	assert.Equal(t, 2, w.Days())

	c.Timezone = "Mars/Olympus"
	_, err = c.Window()
	assert.Error(t, err)

	c.Timezone = ""
	c.StartDate = "04/03/2024"
	_, err = c.Window()
	assert.Error(t, err)
}

func TestConditions_Normalize(t *testing.T) {
	c := Conditions{Emails: []string{" A@X.com", "b@x.com "}}
	c.Normalize()

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, c.Emails)
	assert.Equal(t, RoomTypeVirtual, c.RoomType)
	assert.False(t, c.NeedsRoom())
	assert.Equal(t, time.Duration(0), c.Duration())
}

func TestConsentRecord_EventsToDrop(t *testing.T) {
	rec := ConsentRecord{
		OrganizedEvents: []CalendarEvent{{ID: "own-1"}},
		AttendedEvents:  []CalendarEvent{{ID: "other-1"}, {ID: "other-2"}},
	}
	assert.Equal(t, []string{"own-1", "other-1", "other-2"}, rec.EventsToDrop())
}

func TestSoftDelete(t *testing.T) {
	first := time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)
	var sd SoftDelete
	assert.True(t, sd.IsActive())

	sd.MarkDeleted(first)
	assert.False(t, sd.IsActive())

	sd.MarkDeleted(first.Add(time.Hour))
	assert.Equal(t, first, *sd.DeletedAt, "the first deletion time is kept")

	rows := []Attendee{{UID: "a"}, {UID: "b", SoftDelete: sd}, {UID: "c"}}
	active := Active(rows)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].UID)
	assert.Equal(t, "c", active[1].UID)
}

func TestConsentToken_Expired(t *testing.T) {
	now := time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)
	token := ConsentToken{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, token.Expired(now))
	assert.True(t, token.Expired(now.Add(time.Minute)))
}

func TestMeetingRequestEventSubject(t *testing.T) {
	assert.Equal(t, "lfx.booking-api.meeting_request.accepted", MeetingRequestEventSubject(StatusAccepted))
}
