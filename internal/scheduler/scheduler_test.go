// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// stubFreeBusy answers GetBusy from fixed data and records every call.
type stubFreeBusy struct {
	mu    sync.Mutex
	busy  map[string]interval.BusySet
	errs  map[string]error
	delay time.Duration
	calls []string
}

func newStubFreeBusy() *stubFreeBusy {
	return &stubFreeBusy{
		busy: map[string]interval.BusySet{},
		errs: map[string]error{},
	}
}

func (s *stubFreeBusy) GetBusy(ctx context.Context, calendarID string, start, end time.Time, timezone string) (interval.BusySet, error) {
	s.mu.Lock()
	s.calls = append(s.calls, calendarID)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := s.errs[calendarID]; err != nil {
		return nil, err
	}
	return s.busy[calendarID], nil
}

func (s *stubFreeBusy) setBusy(id string, intervals ...interval.TimeInterval) {
	s.busy[id] = interval.Merge(intervals)
}

func (s *stubFreeBusy) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// day returns 2024-03-<d> at hh:mm UTC. 2024-03-04 is a Monday.
func day(d, hour, minute int) time.Time {
	return time.Date(2024, time.March, d, hour, minute, 0, 0, time.UTC)
}

func busyBlock(d, h1, m1, h2, m2 int) interval.TimeInterval {
	return interval.TimeInterval{Start: day(d, h1, m1), End: day(d, h2, m2)}
}

func dailyWindow(startDay, endDay, h1, m1, h2, m2 int) interval.DailyWindow {
	from, _ := interval.NewTimeOfDay(h1, m1)
	to, _ := interval.NewTimeOfDay(h2, m2)
	return interval.DailyWindow{
		StartDate: day(startDay, 0, 0),
		EndDate:   day(endDay, 0, 0),
		TimeStart: from,
		TimeEnd:   to,
		Location:  time.UTC,
	}
}

func newFinder(fb *stubFreeBusy) *SlotFinder {
	return NewSlotFinder(NewBusyCollector(fb, 4, time.Second), DefaultWorkingDays())
}
