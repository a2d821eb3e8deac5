// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package interval implements the time interval algebra used by the slot
// search: merging busy intervals, quantizing windows into fixed steps,
// subtracting busy time and restricting to a daily time-of-day window.
//
// Every function is pure: inputs are never mutated and no state is kept
// between calls.
package interval

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"
)

// Granularity is the fixed step used to quantize search windows.
const Granularity = 5 * time.Minute

// ErrInvalidInterval is returned when an interval does not satisfy start < end.
var ErrInvalidInterval = errors.New("interval start must be before end")

// TimeInterval is the half-open range [Start, End).
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New builds a TimeInterval, rejecting empty or inverted ranges.
func New(start, end time.Time) (TimeInterval, error) {
	if !start.Before(end) {
		return TimeInterval{}, fmt.Errorf("%w: %s >= %s", ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeInterval{Start: start, End: end}, nil
}

// Valid reports whether the interval is non-empty.
func (i TimeInterval) Valid() bool {
	return i.Start.Before(i.End)
}

// Duration returns the length of the interval.
func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Contains reports whether t lies in [Start, End).
func (i TimeInterval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Overlaps reports whether the two half-open intervals share any instant.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// In returns the interval expressed in loc.
func (i TimeInterval) In(loc *time.Location) TimeInterval {
	return TimeInterval{Start: i.Start.In(loc), End: i.End.In(loc)}
}

// BusySet is a sorted sequence of non-overlapping, non-touching intervals.
// Only Merge produces values that are guaranteed to hold that invariant.
type BusySet []TimeInterval

// Merge sorts the intervals and coalesces any that overlap or touch.
// Empty or inverted intervals are dropped.
func Merge(intervals ...[]TimeInterval) BusySet {
	total := 0
	for _, group := range intervals {
		total += len(group)
	}

	all := make([]TimeInterval, 0, total)
	for _, group := range intervals {
		for _, in := range group {
			if in.Valid() {
				all = append(all, in)
			}
		}
	}
	if len(all) == 0 {
		return BusySet{}
	}

	slices.SortFunc(all, func(a, b TimeInterval) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})

	merged := BusySet{all[0]}
	for _, in := range all[1:] {
		last := &merged[len(merged)-1]
		if !in.Start.After(last.End) {
			if in.End.After(last.End) {
				last.End = in.End
			}
			continue
		}
		merged = append(merged, in)
	}

	return merged
}

// Covers reports whether t falls inside any interval of the set.
func (b BusySet) Covers(t time.Time) bool {
	// first interval whose end is after t; the set is sorted and disjoint so ends are increasing
	idx := sort.Search(len(b), func(i int) bool {
		return b[i].End.After(t)
	})
	return idx < len(b) && !t.Before(b[idx].Start)
}

// Total returns the covered duration of the set.
func (b BusySet) Total() time.Duration {
	var total time.Duration
	for _, in := range b {
		total += in.Duration()
	}
	return total
}

// Quantize returns every instant from r.Start to r.End, both inclusive, in steps of step.
func Quantize(r TimeInterval, step time.Duration) []time.Time {
	if step <= 0 || r.End.Before(r.Start) {
		return nil
	}

	points := make([]time.Time, 0, int(r.End.Sub(r.Start)/step)+1)
	for t := r.Start; !t.After(r.End); t = t.Add(step) {
		points = append(points, t)
	}
	return points
}

// SubtractBusy keeps the instants that are not covered by busy.
func SubtractBusy(points []time.Time, busy BusySet) []time.Time {
	free := make([]time.Time, 0, len(points))
	for _, t := range points {
		if !busy.Covers(t) {
			free = append(free, t)
		}
	}
	return free
}

// RestrictToTimeOfDay keeps the instants whose wall clock, in their own
// location, lies within [from, to] inclusive.
func RestrictToTimeOfDay(points []time.Time, from, to TimeOfDay) []time.Time {
	kept := make([]time.Time, 0, len(points))
	for _, t := range points {
		clock := ClockOf(t)
		if clock >= from && clock <= to {
			kept = append(kept, t)
		}
	}
	return kept
}

// Complement returns the parts of window not covered by busy.
func Complement(window TimeInterval, busy BusySet) []TimeInterval {
	if !window.Valid() {
		return nil
	}

	var free []TimeInterval
	cursor := window.Start
	for _, in := range busy {
		if !in.End.After(cursor) {
			continue
		}
		if !in.Start.Before(window.End) {
			break
		}
		if in.Start.After(cursor) {
			free = append(free, TimeInterval{Start: cursor, End: in.Start})
		}
		cursor = in.End
	}
	if cursor.Before(window.End) {
		free = append(free, TimeInterval{Start: cursor, End: window.End})
	}
	return free
}

// Clip restricts every interval of the set to window, dropping the ones outside it.
func Clip(busy BusySet, window TimeInterval) BusySet {
	clipped := BusySet{}
	for _, in := range busy {
		if !in.Overlaps(window) {
			continue
		}
		if in.Start.Before(window.Start) {
			in.Start = window.Start
		}
		if in.End.After(window.End) {
			in.End = window.End
		}
		clipped = append(clipped, in)
	}
	return clipped
}
