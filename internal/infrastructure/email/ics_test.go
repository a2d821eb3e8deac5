// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	ical "github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testICSParams() ICSMeetingParams {
	return ICSMeetingParams{
		MeetingUID:  "meeting-123",
		Title:       "Quarterly planning",
		Description: "Agenda:\nbudget",
		Organizer:   "alice@example.com",
		Attendees:   []string{"alice@example.com", "bob@example.com"},
		RoomName:    "Blue Room",
		Start:       time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		Stamp:       time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC),
	}
}

func TestGenerateMeetingICS(t *testing.T) {
	content, err := GenerateMeetingICS(testICSParams())
	require.NoError(t, err)

	assert.Contains(t, content, "METHOD:REQUEST")
	assert.Contains(t, content, "PRODID:"+ICSProdID)

	cal, err := ical.NewDecoder(strings.NewReader(content)).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 1)
	event := events[0]

	uid, err := event.Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "meeting-123", uid)

	summary, err := event.Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly planning", summary)

	description, err := event.Props.Text(ical.PropDescription)
	require.NoError(t, err)
	assert.Equal(t, "Agenda:\nbudget", description)

	location, err := event.Props.Text(ical.PropLocation)
	require.NoError(t, err)
	assert.Equal(t, "Blue Room", location)

	start, err := event.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)))

	end, err := event.Props.DateTime(ical.PropDateTimeEnd, time.UTC)
	require.NoError(t, err)
	assert.True(t, end.Equal(time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)))

	organizer := event.Props.Get(ical.PropOrganizer)
	require.NotNil(t, organizer)
	assert.Equal(t, "mailto:alice@example.com", organizer.Value)

	attendees := event.Props.Values(ical.PropAttendee)
	require.Len(t, attendees, 2)
	assert.Equal(t, "mailto:bob@example.com", attendees[1].Value)
	assert.Equal(t, "REQ-PARTICIPANT", attendees[1].Params.Get(ical.ParamRole))
}

func TestGenerateMeetingICS_Virtual(t *testing.T) {
	params := testICSParams()
	params.RoomName = ""
	params.Description = ""

	content, err := GenerateMeetingICS(params)

	require.NoError(t, err)
	assert.NotContains(t, content, "LOCATION")
	assert.NotContains(t, content, "DESCRIPTION")
}

func TestGenerateMeetingICS_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *ICSMeetingParams)
	}{
		{name: "missing uid", mutate: func(p *ICSMeetingParams) { p.MeetingUID = "" }},
		{name: "inverted range", mutate: func(p *ICSMeetingParams) { p.End = p.Start.Add(-time.Hour) }},
		{name: "empty range", mutate: func(p *ICSMeetingParams) { p.End = p.Start }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testICSParams()
			tt.mutate(&params)

			_, err := GenerateMeetingICS(params)
			assert.Error(t, err)
		})
	}
}

func TestMeetingICSAttachment(t *testing.T) {
	attachment, err := MeetingICSAttachment(testICSParams())
	require.NoError(t, err)

	assert.Equal(t, ICSFilename, attachment.Filename)
	assert.Equal(t, ICSMimeType, attachment.ContentType)

	decoded, err := base64.StdEncoding.DecodeString(attachment.Content)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "BEGIN:VCALENDAR")
	assert.Contains(t, string(decoded), "UID:meeting-123")
}
