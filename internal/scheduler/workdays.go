// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultWorkingDaysRule excludes Saturday and Sunday.
const DefaultWorkingDaysRule = "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"

// WorkingDays is the set of weekdays on which meetings may be booked.
type WorkingDays struct {
	days [7]bool
}

// ParseWorkingDays builds the policy from an RFC 5545 recurrence rule such as
// DefaultWorkingDaysRule. The rule is expanded over one week and every
// weekday it yields is a working day.
func ParseWorkingDays(rule string) (WorkingDays, error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return WorkingDays{}, fmt.Errorf("invalid working days rule %q: %w", rule, err)
	}

	// 2024-01-01 is a Monday
	anchor := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	opt.Dtstart = anchor

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return WorkingDays{}, fmt.Errorf("invalid working days rule %q: %w", rule, err)
	}

	var w WorkingDays
	found := false
	for _, occurrence := range r.Between(anchor, anchor.AddDate(0, 0, 7), true) {
		w.days[occurrence.Weekday()] = true
		found = true
	}
	if !found {
		return WorkingDays{}, fmt.Errorf("working days rule %q selects no day", rule)
	}
	return w, nil
}

// DefaultWorkingDays returns the Monday to Friday policy.
func DefaultWorkingDays() WorkingDays {
	var w WorkingDays
	for d := time.Monday; d <= time.Friday; d++ {
		w.days[d] = true
	}
	return w
}

// IsWorkingDay reports whether t falls on a working day in its own location.
func (w WorkingDays) IsWorkingDay(t time.Time) bool {
	return w.days[t.Weekday()]
}

// Days returns the working weekdays in Sunday-first order.
func (w WorkingDays) Days() []time.Weekday {
	var days []time.Weekday
	for d, ok := range w.days {
		if ok {
			days = append(days, time.Weekday(d))
		}
	}
	return days
}
