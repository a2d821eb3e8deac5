// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package interval

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time expressed in minutes after midnight.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from hours and minutes.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay parses "HH:MM" (seconds are accepted and ignored).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute())
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
}

// ClockOf returns the wall clock of t in its own location.
func ClockOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// Hour returns the hour component.
func (c TimeOfDay) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c TimeOfDay) Minute() int { return int(c) % 60 }

// On returns the instant at this wall clock on the given calendar day in loc.
func (c TimeOfDay) On(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}

func (c TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText encodes the value as "HH:MM".
func (c TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes "HH:MM".
func (c *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}

// FormatDate renders the calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DailyWindow describes "between StartDate and EndDate, from TimeStart to
// TimeEnd every day" in a given location.
type DailyWindow struct {
	StartDate time.Time
	EndDate   time.Time
	TimeStart TimeOfDay
	TimeEnd   TimeOfDay
	Location  *time.Location
}

// Bounds combines the first date with TimeStart and the last date with
// TimeEnd, localized to the window's location.
func (w DailyWindow) Bounds() TimeInterval {
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}
	return TimeInterval{
		Start: w.TimeStart.On(w.StartDate, loc),
		End:   w.TimeEnd.On(w.EndDate, loc),
	}
}

// Days returns the number of calendar days spanned, counting both ends.
func (w DailyWindow) Days() int {
	start := time.Date(w.StartDate.Year(), w.StartDate.Month(), w.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(w.EndDate.Year(), w.EndDate.Month(), w.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}
