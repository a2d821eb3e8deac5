// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
)

// ICS constants for consistent values across all generated ICS files
const (
	ICSProdID   = "-//Linux Foundation//LFX Room Booking Service//EN"
	ICALVersion = "2.0"
	ICALScale   = "GREGORIAN"
	ICSFilename = "invite.ics"
	ICSMimeType = "text/calendar; method=REQUEST; charset=UTF-8"
)

// ICSMeetingParams describes a committed meeting for its calendar invite.
type ICSMeetingParams struct {
	MeetingUID  string
	Title       string
	Description string
	Organizer   string
	Attendees   []string
	RoomName    string
	Start       time.Time
	End         time.Time
	// Stamp is the DTSTAMP value; zero means now.
	Stamp time.Time
}

// GenerateMeetingICS renders a METHOD:REQUEST calendar with one event.
func GenerateMeetingICS(params ICSMeetingParams) (string, error) {
	if params.MeetingUID == "" {
		return "", fmt.Errorf("meeting uid is required")
	}
	if !params.Start.Before(params.End) {
		return "", fmt.Errorf("meeting start %s is not before end %s", params.Start, params.End)
	}
	stamp := params.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, ICSProdID)
	cal.Props.SetText(ical.PropVersion, ICALVersion)
	cal.Props.SetText(ical.PropCalendarScale, ICALScale)
	cal.Props.SetText(ical.PropMethod, "REQUEST")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, params.MeetingUID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, params.Start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, params.End.UTC())
	event.Props.SetText(ical.PropSummary, params.Title)
	if params.Description != "" {
		event.Props.SetText(ical.PropDescription, params.Description)
	}
	if params.RoomName != "" {
		event.Props.SetText(ical.PropLocation, params.RoomName)
	}
	event.Props.SetText(ical.PropStatus, "CONFIRMED")
	event.Props.SetText(ical.PropSequence, "0")

	if params.Organizer != "" {
		organizer := ical.NewProp(ical.PropOrganizer)
		organizer.Value = "mailto:" + params.Organizer
		event.Props.Set(organizer)
	}
	for _, email := range params.Attendees {
		attendee := ical.NewProp(ical.PropAttendee)
		attendee.Params.Set(ical.ParamRole, "REQ-PARTICIPANT")
		attendee.Params.Set(ical.ParamParticipationStatus, "NEEDS-ACTION")
		attendee.Params.Set("RSVP", "TRUE")
		attendee.Value = "mailto:" + email
		event.Props.Add(attendee)
	}

	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("failed to encode ICS: %w", err)
	}
	return buf.String(), nil
}

// MeetingICSAttachment wraps GenerateMeetingICS into an email attachment.
func MeetingICSAttachment(params ICSMeetingParams) (*domain.EmailAttachment, error) {
	content, err := GenerateMeetingICS(params)
	if err != nil {
		return nil, err
	}
	return &domain.EmailAttachment{
		Filename:    ICSFilename,
		ContentType: ICSMimeType,
		Content:     base64.StdEncoding.EncodeToString([]byte(content)),
	}, nil
}
