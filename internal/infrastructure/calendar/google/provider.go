// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package google implements the calendar provider on Google Workspace,
// acting for users through a service account with domain-wide delegation.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	admin "google.golang.org/api/admin/directory/v1"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/calendar"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// ProviderName is the registry name of the Google provider.
const ProviderName = "google"

// DefaultCustomer addresses the account the service account belongs to.
const DefaultCustomer = "my_customer"

// Config holds the configuration for the Google provider
type Config struct {
	// AdminAccount owns free/busy queries and directory listing and is
	// hidden from the directory.
	AdminAccount string
	Customer     string
	// ClientOptions builds the API options used to act as a user.
	ClientOptions ClientOptionsFunc
}

// Provider implements domain.CalendarProvider against Google Calendar and
// the Admin Directory API.
type Provider struct {
	config Config

	mu        sync.Mutex
	calendars map[string]*gcalendar.Service
	directory *admin.Service
}

var _ domain.CalendarProvider = (*Provider)(nil)

// NewProvider creates a Google calendar provider.
func NewProvider(config Config) (*Provider, error) {
	if config.ClientOptions == nil {
		return nil, errors.New("google provider needs client options")
	}
	if config.AdminAccount == "" {
		return nil, errors.New("google provider needs an admin account")
	}
	if config.Customer == "" {
		config.Customer = DefaultCustomer
	}
	return &Provider{
		config:    config,
		calendars: make(map[string]*gcalendar.Service),
	}, nil
}

// Name implements domain.CalendarProvider.
func (p *Provider) Name() string { return ProviderName }

// calendarService returns the Calendar API client acting as subject.
func (p *Provider) calendarService(ctx context.Context, subject string) (*gcalendar.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if svc, ok := p.calendars[subject]; ok {
		return svc, nil
	}
	opts, err := p.config.ClientOptions(ctx, subject, gcalendar.CalendarScope)
	if err != nil {
		return nil, err
	}
	svc, err := gcalendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	p.calendars[subject] = svc
	return svc, nil
}

func (p *Provider) directoryService(ctx context.Context) (*admin.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.directory != nil {
		return p.directory, nil
	}
	opts, err := p.config.ClientOptions(ctx, p.config.AdminAccount, admin.AdminDirectoryUserReadonlyScope)
	if err != nil {
		return nil, err
	}
	svc, err := admin.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory service: %w", err)
	}
	p.directory = svc
	return svc, nil
}

// statusOf returns the HTTP status of a Google API error, or 0.
func statusOf(err error) int {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}

func fail(operation string, err error) error {
	return calendar.ProviderError(ProviderName, operation, statusOf(err), err)
}

// GetBusy implements domain.FreeBusyProvider. The query runs as the admin
// account, which can read the free/busy of every user and room.
func (p *Provider) GetBusy(ctx context.Context, calendarID string, start, end time.Time, timezone string) (busy interval.BusySet, err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "get_busy", attribute.String("calendar.id", calendarID))
	defer func() { calendar.EndSpan(span, err) }()

	svc, err := p.calendarService(ctx, p.config.AdminAccount)
	if err != nil {
		return nil, fail("get_busy", err)
	}

	resp, err := svc.Freebusy.Query(&gcalendar.FreeBusyRequest{
		TimeMin:  start.Format(time.RFC3339),
		TimeMax:  end.Format(time.RFC3339),
		TimeZone: timezone,
		Items:    []*gcalendar.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		if calendar.IsNotFound(statusOf(err)) {
			return interval.BusySet{}, nil
		}
		return nil, fail("get_busy", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return interval.BusySet{}, nil
	}
	for _, e := range cal.Errors {
		if e.Reason == "notFound" {
			return interval.BusySet{}, nil
		}
		return nil, calendar.ProviderError(ProviderName, "get_busy", 0,
			fmt.Errorf("free/busy error for %s: %s/%s", calendarID, e.Domain, e.Reason))
	}

	intervals := make([]interval.TimeInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		s, errStart := time.Parse(time.RFC3339, period.Start)
		e, errEnd := time.Parse(time.RFC3339, period.End)
		if errStart != nil || errEnd != nil {
			slog.WarnContext(ctx, "skipping busy period with unparsable time",
				"calendar_id", calendarID, "start", period.Start, "end", period.End)
			continue
		}
		if iv, ivErr := interval.New(s.UTC(), e.UTC()); ivErr == nil {
			intervals = append(intervals, iv)
		}
	}
	return interval.Merge(intervals), nil
}

func calendarOrPrimary(calendarID string) string {
	if calendarID == "" {
		return "primary"
	}
	return calendarID
}

// CreateEvent implements domain.EventProvider. The event is created as the
// organizer with a Meet link and the room booked as a resource attendee.
func (p *Provider) CreateEvent(ctx context.Context, spec models.EventSpec) (id string, err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "create_event", attribute.String("calendar.organizer", spec.OrganizerID))
	defer func() { calendar.EndSpan(span, err) }()

	svc, err := p.calendarService(ctx, spec.OrganizerID)
	if err != nil {
		return "", fail("create_event", err)
	}

	ev := &gcalendar.Event{
		Summary:     spec.Summary,
		Description: spec.Description,
		Start:       &gcalendar.EventDateTime{DateTime: spec.Start.Format(time.RFC3339), TimeZone: spec.TimeZone},
		End:         &gcalendar.EventDateTime{DateTime: spec.End.Format(time.RFC3339), TimeZone: spec.TimeZone},
		ConferenceData: &gcalendar.ConferenceData{
			CreateRequest: &gcalendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &gcalendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}
	for _, email := range spec.Attendees {
		ev.Attendees = append(ev.Attendees, &gcalendar.EventAttendee{Email: email})
	}
	if spec.RoomCalendarID != "" {
		ev.Attendees = append(ev.Attendees, &gcalendar.EventAttendee{Email: spec.RoomCalendarID, Resource: true})
	}

	created, err := svc.Events.Insert(calendarOrPrimary(spec.CalendarID), ev).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", fail("create_event", err)
	}

	slog.DebugContext(ctx, "google event created", "event_id", created.Id, "organizer", spec.OrganizerID)
	return created.Id, nil
}

// CreateAllDayEvent implements domain.EventProvider. The event is
// transparent so it never blocks the slot search.
func (p *Provider) CreateAllDayEvent(ctx context.Context, spec models.AllDayEventSpec) (id string, err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "create_all_day_event", attribute.String("calendar.identity", spec.Identity))
	defer func() { calendar.EndSpan(span, err) }()

	svc, err := p.calendarService(ctx, spec.Identity)
	if err != nil {
		return "", fail("create_all_day_event", err)
	}

	created, err := svc.Events.Insert(calendarOrPrimary(spec.CalendarID), &gcalendar.Event{
		Summary:      spec.Summary,
		Start:        &gcalendar.EventDateTime{Date: interval.FormatDate(spec.Start)},
		End:          &gcalendar.EventDateTime{Date: interval.FormatDate(spec.End)},
		Transparency: "transparent",
	}).SendUpdates("none").Context(ctx).Do()
	if err != nil {
		return "", fail("create_all_day_event", err)
	}
	return created.Id, nil
}

// DeleteEvent implements domain.EventProvider.
func (p *Provider) DeleteEvent(ctx context.Context, identity, eventID string, notifyAttendees bool) (err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "delete_event",
		attribute.String("calendar.identity", identity),
		attribute.String("calendar.event_id", eventID))
	defer func() { calendar.EndSpan(span, err) }()

	svc, err := p.calendarService(ctx, identity)
	if err != nil {
		return fail("delete_event", err)
	}

	sendUpdates := "none"
	if notifyAttendees {
		sendUpdates = "all"
	}
	if err := svc.Events.Delete("primary", eventID).SendUpdates(sendUpdates).Context(ctx).Do(); err != nil {
		if calendar.IsNotFound(statusOf(err)) {
			slog.DebugContext(ctx, "google event already gone", "event_id", eventID)
			return nil
		}
		return fail("delete_event", err)
	}
	return nil
}

// GetEventsBetween implements domain.EventProvider. Recurring events are
// expanded into single instances.
func (p *Provider) GetEventsBetween(ctx context.Context, identity string, start, end time.Time) (events []models.CalendarEvent, err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "get_events_between", attribute.String("calendar.identity", identity))
	defer func() { calendar.EndSpan(span, err) }()

	svc, err := p.calendarService(ctx, identity)
	if err != nil {
		return nil, fail("get_events_between", err)
	}

	err = svc.Events.List("primary").
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *gcalendar.Events) error {
			for _, ev := range page.Items {
				if ev.Status == "cancelled" || ev.Transparency == "transparent" {
					continue
				}
				s, errStart := parseEventTime(ev.Start)
				e, errEnd := parseEventTime(ev.End)
				if errStart != nil || errEnd != nil {
					slog.WarnContext(ctx, "skipping event with unparsable time", "event_id", ev.Id)
					continue
				}
				ce := models.CalendarEvent{
					ID:      ev.Id,
					Summary: ev.Summary,
					Link:    ev.HtmlLink,
					Start:   s,
					End:     e,
				}
				if ev.Organizer != nil {
					ce.OrganizerEmail = ev.Organizer.Email
				}
				events = append(events, ce)
			}
			return nil
		})
	if err != nil {
		return nil, fail("get_events_between", err)
	}
	return events, nil
}

func parseEventTime(t *gcalendar.EventDateTime) (time.Time, error) {
	if t == nil {
		return time.Time{}, errors.New("missing event time")
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		return parsed.UTC(), err
	}
	return interval.ParseDate(t.Date)
}

// ListMembers implements domain.Directory.
func (p *Provider) ListMembers(ctx context.Context) (members []models.DirectoryMember, err error) {
	ctx, span := calendar.StartSpan(ctx, ProviderName, "list_members")
	defer func() { calendar.EndSpan(span, err) }()

	svc, err := p.directoryService(ctx)
	if err != nil {
		return nil, fail("list_members", err)
	}

	err = svc.Users.List().
		Customer(p.config.Customer).
		MaxResults(500).
		OrderBy("email").
		Pages(ctx, func(page *admin.Users) error {
			for _, user := range page.Users {
				email := strings.ToLower(user.PrimaryEmail)
				if email == "" || strings.EqualFold(email, p.config.AdminAccount) {
					continue
				}
				member := models.DirectoryMember{Email: email}
				if user.Name != nil {
					member.FullName = user.Name.FullName
				}
				members = append(members, member)
			}
			return nil
		})
	if err != nil {
		slog.ErrorContext(ctx, "failed to list google directory", logging.ErrKey, err)
		return nil, fail("list_members", err)
	}
	return members, nil
}
