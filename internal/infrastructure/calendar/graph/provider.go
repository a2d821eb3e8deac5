// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package graph implements the calendar provider on Microsoft Graph.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/calendar"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// ProviderName is the registry name of the Graph provider.
const ProviderName = "graph"

// dateTimeLayout is the layout Graph uses for dateTimeTimeZone values.
const dateTimeLayout = "2006-01-02T15:04:05.9999999"

const preferUTC = `outlook.timezone="UTC"`

// Provider implements domain.CalendarProvider against Microsoft Graph.
type Provider struct {
	client       *Client
	adminAccount string
}

var _ domain.CalendarProvider = (*Provider)(nil)

// NewProvider creates a Graph calendar provider. adminAccount owns
// free/busy queries and is hidden from the directory.
func NewProvider(client *Client, adminAccount string) *Provider {
	return &Provider{client: client, adminAccount: adminAccount}
}

// Name implements domain.CalendarProvider.
func (p *Provider) Name() string { return ProviderName }

type dateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func toGraphTime(t time.Time) dateTimeTimeZone {
	return dateTimeTimeZone{DateTime: t.UTC().Format(dateTimeLayout), TimeZone: "UTC"}
}

// parse reads a dateTimeTimeZone. Values without a known zone are UTC,
// which is what the Prefer header asks for.
func (d dateTimeTimeZone) parse() (time.Time, error) {
	loc := time.UTC
	if d.TimeZone != "" && d.TimeZone != "UTC" {
		if l, err := time.LoadLocation(d.TimeZone); err == nil {
			loc = l
		}
	}
	return time.ParseInLocation(dateTimeLayout, d.DateTime, loc)
}

type scheduleRequest struct {
	Schedules                []string         `json:"schedules"`
	StartTime                dateTimeTimeZone `json:"startTime"`
	EndTime                  dateTimeTimeZone `json:"endTime"`
	AvailabilityViewInterval int              `json:"availabilityViewInterval"`
}

type scheduleResponse struct {
	Value []struct {
		ScheduleID    string `json:"scheduleId"`
		ScheduleItems []struct {
			Status string           `json:"status"`
			Start  dateTimeTimeZone `json:"start"`
			End    dateTimeTimeZone `json:"end"`
		} `json:"scheduleItems"`
		Error *struct {
			Message      string `json:"message"`
			ResponseCode string `json:"responseCode"`
		} `json:"error,omitempty"`
	} `json:"value"`
}

// GetBusy implements domain.FreeBusyProvider using getSchedule on the admin
// account. Graph answers in UTC, so timezone only shows up in logs.
func (p *Provider) GetBusy(ctx context.Context, calendarID string, start, end time.Time, timezone string) (busy interval.BusySet, err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "get_busy", attribute.String("calendar.id", calendarID))
	defer func() { calendar.EndSpan(span, err) }()

	req := scheduleRequest{
		Schedules:                []string{calendarID},
		StartTime:                toGraphTime(start),
		EndTime:                  toGraphTime(end),
		AvailabilityViewInterval: 5,
	}

	var resp scheduleResponse
	path := fmt.Sprintf("/users/%s/calendar/getSchedule", url.PathEscape(p.adminAccount))
	if err := p.client.Do(ctx, http.MethodPost, path, req, &resp, map[string]string{"Prefer": preferUTC}); err != nil {
		status := StatusOf(err)
		if calendar.IsNotFound(status) {
			return interval.BusySet{}, nil
		}
		return nil, calendar.ProviderError(ProviderName, "get_busy", status, err)
	}

	var intervals []interval.TimeInterval
	for _, schedule := range resp.Value {
		if schedule.Error != nil {
			// unknown mailbox: treated as free
			slog.DebugContext(ctx, "graph schedule returned an error",
				"calendar_id", calendarID,
				"timezone", timezone,
				"response_code", schedule.Error.ResponseCode,
				"message", schedule.Error.Message)
			continue
		}
		for _, item := range schedule.ScheduleItems {
			if strings.EqualFold(item.Status, "free") {
				continue
			}
			s, errStart := item.Start.parse()
			e, errEnd := item.End.parse()
			if errStart != nil || errEnd != nil {
				slog.WarnContext(ctx, "skipping schedule item with unparsable time",
					"calendar_id", calendarID, "start", item.Start.DateTime, "end", item.End.DateTime)
				continue
			}
			iv, ivErr := interval.New(s.UTC(), e.UTC())
			if ivErr != nil {
				continue
			}
			intervals = append(intervals, iv)
		}
	}

	return interval.Merge(intervals), nil
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type attendee struct {
	EmailAddress emailAddress `json:"emailAddress"`
	Type         string       `json:"type"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type event struct {
	ID              string            `json:"id,omitempty"`
	Subject         string            `json:"subject"`
	Body            *itemBody         `json:"body,omitempty"`
	Start           *dateTimeTimeZone `json:"start,omitempty"`
	End             *dateTimeTimeZone `json:"end,omitempty"`
	Attendees       []attendee        `json:"attendees,omitempty"`
	IsAllDay        bool              `json:"isAllDay,omitempty"`
	ShowAs          string            `json:"showAs,omitempty"`
	IsCancelled     bool              `json:"isCancelled,omitempty"`
	IsOnlineMeeting bool              `json:"isOnlineMeeting,omitempty"`
	WebLink         string            `json:"webLink,omitempty"`
	Organizer       *struct {
		EmailAddress emailAddress `json:"emailAddress"`
	} `json:"organizer,omitempty"`
}

// CreateEvent implements domain.EventProvider. The event is written to the
// organizer's calendar and the room is invited as a resource.
func (p *Provider) CreateEvent(ctx context.Context, spec models.EventSpec) (id string, err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "create_event", attribute.String("calendar.organizer", spec.OrganizerID))
	defer func() { calendar.EndSpan(span, err) }()

	start, end := toGraphTime(spec.Start), toGraphTime(spec.End)

	ev := event{
		Subject:         spec.Summary,
		Body:            &itemBody{ContentType: "text", Content: spec.Description},
		Start:           &start,
		End:             &end,
		IsOnlineMeeting: true,
	}
	for _, email := range spec.Attendees {
		ev.Attendees = append(ev.Attendees, attendee{EmailAddress: emailAddress{Address: email}, Type: "required"})
	}
	if spec.RoomCalendarID != "" {
		ev.Attendees = append(ev.Attendees, attendee{EmailAddress: emailAddress{Address: spec.RoomCalendarID}, Type: "resource"})
	}

	var created event
	if err := p.client.Do(ctx, http.MethodPost, p.eventsPath(spec.OrganizerID, spec.CalendarID), ev, &created, nil); err != nil {
		return "", calendar.ProviderError(ProviderName, "create_event", StatusOf(err), err)
	}

	slog.DebugContext(ctx, "graph event created", "event_id", created.ID, "organizer", spec.OrganizerID)
	return created.ID, nil
}

// CreateAllDayEvent implements domain.EventProvider. The event shows the
// identity as free so it never blocks the slot search.
func (p *Provider) CreateAllDayEvent(ctx context.Context, spec models.AllDayEventSpec) (id string, err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "create_all_day_event", attribute.String("calendar.identity", spec.Identity))
	defer func() { calendar.EndSpan(span, err) }()

	start := dateTimeTimeZone{DateTime: interval.FormatDate(spec.Start) + "T00:00:00", TimeZone: "UTC"}
	end := dateTimeTimeZone{DateTime: interval.FormatDate(spec.End) + "T00:00:00", TimeZone: "UTC"}

	ev := event{
		Subject:  spec.Summary,
		Start:    &start,
		End:      &end,
		IsAllDay: true,
		ShowAs:   "free",
	}

	var created event
	if err := p.client.Do(ctx, http.MethodPost, p.eventsPath(spec.Identity, spec.CalendarID), ev, &created, nil); err != nil {
		return "", calendar.ProviderError(ProviderName, "create_all_day_event", StatusOf(err), err)
	}
	return created.ID, nil
}

// DeleteEvent implements domain.EventProvider. Notifying attendees goes
// through the cancel action, which only organizers may call.
func (p *Provider) DeleteEvent(ctx context.Context, identity, eventID string, notifyAttendees bool) (err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "delete_event",
		attribute.String("calendar.identity", identity),
		attribute.String("calendar.event_id", eventID))
	defer func() { calendar.EndSpan(span, err) }()

	path := fmt.Sprintf("/users/%s/events/%s", url.PathEscape(identity), url.PathEscape(eventID))
	if notifyAttendees {
		err = p.client.Do(ctx, http.MethodPost, path+"/cancel", map[string]string{"comment": "This meeting has been cancelled."}, nil, nil)
	} else {
		err = p.client.Do(ctx, http.MethodDelete, path, nil, nil, nil)
	}
	if err != nil {
		status := StatusOf(err)
		if calendar.IsNotFound(status) {
			slog.DebugContext(ctx, "graph event already gone", "event_id", eventID)
			return nil
		}
		return calendar.ProviderError(ProviderName, "delete_event", status, err)
	}
	return nil
}

type eventPage struct {
	Value    []event `json:"value"`
	NextLink string  `json:"@odata.nextLink"`
}

// GetEventsBetween implements domain.EventProvider using calendarView, which
// expands recurring events.
func (p *Provider) GetEventsBetween(ctx context.Context, identity string, start, end time.Time) (events []models.CalendarEvent, err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "get_events_between", attribute.String("calendar.identity", identity))
	defer func() { calendar.EndSpan(span, err) }()

	query := url.Values{}
	query.Set("startDateTime", start.UTC().Format(time.RFC3339))
	query.Set("endDateTime", end.UTC().Format(time.RFC3339))
	query.Set("$select", "id,subject,start,end,organizer,showAs,isCancelled,webLink")
	path := fmt.Sprintf("/users/%s/calendarView?%s", url.PathEscape(identity), query.Encode())

	for path != "" {
		var page eventPage
		if err := p.client.Do(ctx, http.MethodGet, path, nil, &page, map[string]string{"Prefer": preferUTC}); err != nil {
			return nil, calendar.ProviderError(ProviderName, "get_events_between", StatusOf(err), err)
		}
		for _, ev := range page.Value {
			if ev.IsCancelled || strings.EqualFold(ev.ShowAs, "free") || ev.Start == nil || ev.End == nil {
				continue
			}
			s, errStart := ev.Start.parse()
			e, errEnd := ev.End.parse()
			if errStart != nil || errEnd != nil {
				continue
			}
			ce := models.CalendarEvent{
				ID:      ev.ID,
				Summary: ev.Subject,
				Link:    ev.WebLink,
				Start:   s.UTC(),
				End:     e.UTC(),
			}
			if ev.Organizer != nil {
				ce.OrganizerEmail = ev.Organizer.EmailAddress.Address
			}
			events = append(events, ce)
		}
		path = page.NextLink
	}

	return events, nil
}

type userPage struct {
	Value []struct {
		DisplayName       string `json:"displayName"`
		UserPrincipalName string `json:"userPrincipalName"`
		Mail              string `json:"mail"`
	} `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// ListMembers implements domain.Directory.
func (p *Provider) ListMembers(ctx context.Context) (members []models.DirectoryMember, err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "list_members")
	defer func() { calendar.EndSpan(span, err) }()

	path := "/users?$select=displayName,userPrincipalName,mail&$top=999"
	for path != "" {
		var page userPage
		if err := p.client.Do(ctx, http.MethodGet, path, nil, &page, nil); err != nil {
			return nil, calendar.ProviderError(ProviderName, "list_members", StatusOf(err), err)
		}
		for _, user := range page.Value {
			email := user.Mail
			if email == "" {
				email = user.UserPrincipalName
			}
			if email == "" || strings.EqualFold(email, p.adminAccount) {
				continue
			}
			members = append(members, models.DirectoryMember{Email: strings.ToLower(email), FullName: user.DisplayName})
		}
		path = page.NextLink
	}

	slog.DebugContext(ctx, "graph directory listed", "members", len(members))
	return members, nil
}

func (p *Provider) eventsPath(identity, calendarID string) string {
	if calendarID == "" || strings.EqualFold(calendarID, identity) {
		return fmt.Sprintf("/users/%s/events", url.PathEscape(identity))
	}
	return fmt.Sprintf("/users/%s/calendars/%s/events", url.PathEscape(identity), url.PathEscape(calendarID))
}
