// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// RenderedEmail holds both HTML and text versions of a rendered email
type RenderedEmail struct {
	HTML string
	Text string
}

// TemplateManager renders the booking workflow emails.
type TemplateManager struct {
	templates Templates
}

// TemplateSet holds HTML and text versions of a template
type TemplateSet struct {
	HTML *template.Template
	Text *template.Template
}

// Templates holds every workflow template.
type Templates struct {
	ConsentRequest      TemplateSet
	ConsentDeclined     TemplateSet
	MeetingConfirmation TemplateSet
}

// templateConfig defines a template to be loaded
type templateConfig struct {
	name string
	path string
}

// NewTemplateManager creates a new template manager with all templates loaded
func NewTemplateManager() (*TemplateManager, error) {
	templateConfigs := map[string]templateConfig{
		"consentRequestHTML":      {"consent_request.html", "templates/consent_request.html"},
		"consentRequestText":      {"consent_request.txt", "templates/consent_request.txt"},
		"consentDeclinedHTML":     {"consent_declined.html", "templates/consent_declined.html"},
		"consentDeclinedText":     {"consent_declined.txt", "templates/consent_declined.txt"},
		"meetingConfirmationHTML": {"meeting_confirmation.html", "templates/meeting_confirmation.html"},
		"meetingConfirmationText": {"meeting_confirmation.txt", "templates/meeting_confirmation.txt"},
	}

	loaded := make(map[string]*template.Template)
	for key, cfg := range templateConfigs {
		tmpl, err := loadTemplate(cfg)
		if err != nil {
			return nil, err
		}
		loaded[key] = tmpl
	}

	return &TemplateManager{
		templates: Templates{
			ConsentRequest:      TemplateSet{HTML: loaded["consentRequestHTML"], Text: loaded["consentRequestText"]},
			ConsentDeclined:     TemplateSet{HTML: loaded["consentDeclinedHTML"], Text: loaded["consentDeclinedText"]},
			MeetingConfirmation: TemplateSet{HTML: loaded["meetingConfirmationHTML"], Text: loaded["meetingConfirmationText"]},
		},
	}, nil
}

// RenderConsentRequest renders the email asking a member to give up
// conflicting events.
func (tm *TemplateManager) RenderConsentRequest(data domain.ConsentRequestEmail) (*RenderedEmail, error) {
	return render(tm.templates.ConsentRequest, "consent request", data)
}

// RenderConsentDeclined renders the notice sent to the requester when a
// member declines.
func (tm *TemplateManager) RenderConsentDeclined(data domain.ConsentDeclinedEmail) (*RenderedEmail, error) {
	return render(tm.templates.ConsentDeclined, "consent declined", data)
}

// RenderMeetingConfirmation renders the confirmation sent to every attendee.
func (tm *TemplateManager) RenderMeetingConfirmation(data domain.MeetingConfirmationEmail) (*RenderedEmail, error) {
	return render(tm.templates.MeetingConfirmation, "meeting confirmation", data)
}

func render(set TemplateSet, label string, data any) (*RenderedEmail, error) {
	html, err := renderTemplate(set.HTML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s HTML: %w", label, err)
	}

	text, err := renderTemplate(set.Text, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s text: %w", label, err)
	}

	return &RenderedEmail{HTML: html, Text: text}, nil
}

// loadTemplate loads a single template with the shared function map
func loadTemplate(config templateConfig) (*template.Template, error) {
	tmpl, err := template.New(config.name).Funcs(template.FuncMap{
		"formatTime":         formatTime,
		"formatClock":        formatClock,
		"formatDuration":     formatDuration,
		"minutesBetween":     minutesBetween,
		"displayName":        displayName,
		"newLineToBreakLine": newLineToBreakLine,
	}).ParseFS(templateFS, config.path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", config.name, err)
	}
	return tmpl, nil
}

// renderTemplate renders any template with the provided data
func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func location(timezone string) *time.Location {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// formatTime formats a time for display in emails
func formatTime(t time.Time, timezone string) string {
	localTime := t.In(location(timezone))

	day := localTime.Day()
	var suffix string
	switch {
	case day >= 11 && day <= 13:
		suffix = "th"
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	default:
		suffix = "th"
	}

	// Format: Wednesday, September 15th, 10:30 Europe/Berlin
	return fmt.Sprintf("%s, %s %d%s, %s %s",
		localTime.Format("Monday"),
		localTime.Format("January"),
		day,
		suffix,
		localTime.Format("15:04"),
		timezone)
}

// formatClock renders only the wall clock time.
func formatClock(t time.Time, timezone string) string {
	return t.In(location(timezone)).Format("15:04")
}

func minutesBetween(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}

// formatDuration formats duration in minutes to a human-readable string
func formatDuration(minutes int) string {
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}

	hours := minutes / 60
	remainingMinutes := minutes % 60

	if remainingMinutes == 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}

	hourLabel := "hours"
	if hours == 1 {
		hourLabel = "hour"
	}
	minuteLabel := "minutes"
	if remainingMinutes == 1 {
		minuteLabel = "minute"
	}
	return fmt.Sprintf("%d %s %d %s", hours, hourLabel, remainingMinutes, minuteLabel)
}

// displayName falls back to the email when no name is known.
func displayName(name, email string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return email
}

// newLineToBreakLine converts newlines to HTML break tags for proper email formatting
func newLineToBreakLine(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	replaced := strings.ReplaceAll(escaped, "\n", "<br>")
	// already escaped above
	return template.HTML(replaced)
}
