// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// SlotQuery describes one slot search.
type SlotQuery struct {
	Participants []string
	// RoomCalendar is empty when no room is involved.
	RoomCalendar string
	Window       interval.DailyWindow
	Duration     time.Duration
	Timezone     string
}

// SlotFinder finds the earliest common free slot of a group of calendars.
type SlotFinder struct {
	collector *BusyCollector
	workdays  WorkingDays
}

// NewSlotFinder creates a SlotFinder.
func NewSlotFinder(collector *BusyCollector, workdays WorkingDays) *SlotFinder {
	return &SlotFinder{
		collector: collector,
		workdays:  workdays,
	}
}

// ValidateDuration rejects durations that are not a positive multiple of the
// quantization step.
func ValidateDuration(d time.Duration) error {
	if d <= 0 || d%interval.Granularity != 0 {
		return domain.NewValidationError(fmt.Sprintf("invalid duration %s", d), domain.ErrInvalidDuration)
	}
	return nil
}

// FindSlot returns the earliest slot in which every participant, and the
// room calendar when given, is free. It returns nil when there is none.
// The result is deterministic for identical provider answers.
func (f *SlotFinder) FindSlot(ctx context.Context, q SlotQuery) (*interval.TimeInterval, error) {
	ctx, span := tracer.Start(ctx, "scheduler.find_slot")
	defer span.End()

	span.SetAttributes(
		attribute.Int("scheduler.participants", len(q.Participants)),
		attribute.String("scheduler.room_calendar", q.RoomCalendar),
		attribute.Int64("scheduler.duration_minutes", int64(q.Duration/time.Minute)),
	)

	if err := ValidateDuration(q.Duration); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	identities := append([]string(nil), q.Participants...)
	if q.RoomCalendar != "" {
		identities = append(identities, q.RoomCalendar)
	}

	busy, err := f.collector.Collect(ctx, identities, probeWindow(q.Window.Bounds()), q.Timezone)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	slot, err := f.Search(busy, q.Window, q.Duration)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Bool("scheduler.found", slot != nil))
	span.SetStatus(codes.Ok, "")
	return slot, nil
}

// Search runs the slot search over an already merged BusySet.
//
// The window is quantized at interval.Granularity, busy points are removed
// and the rest is restricted to the daily time range. A start t is accepted
// when t+duration is the point exactly duration/Granularity positions later,
// which holds only if every step in between is free. The end point must be
// free too, so a slot never ends where a busy block starts. Slots touching a
// non-working day are skipped and the scan continues.
func (f *SlotFinder) Search(busy interval.BusySet, window interval.DailyWindow, duration time.Duration) (*interval.TimeInterval, error) {
	if err := ValidateDuration(duration); err != nil {
		return nil, err
	}

	points := interval.Quantize(window.Bounds(), interval.Granularity)
	free := interval.SubtractBusy(points, busy)
	free = interval.RestrictToTimeOfDay(free, window.TimeStart, window.TimeEnd)

	steps := int(duration / interval.Granularity)
	for i := 0; i+steps < len(free); i++ {
		start := free[i]
		end := start.Add(duration)
		if !free[i+steps].Equal(end) {
			continue
		}
		if !f.workdays.IsWorkingDay(start) || !f.workdays.IsWorkingDay(end) {
			slog.Debug("skipping slot on a non-working day", "start", start.Format(time.RFC3339))
			continue
		}
		return &interval.TimeInterval{Start: start, End: end}, nil
	}
	return nil, nil
}
