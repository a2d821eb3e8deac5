// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// maxSlotsRange bounds busy and free slot queries.
const maxSlotsRange = models.MaxDateRange

// CalendarService answers directory and availability queries.
type CalendarService struct {
	Calendar domain.CalendarProvider
	Config   ServiceConfig
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(calendar domain.CalendarProvider, config ServiceConfig) *CalendarService {
	return &CalendarService{
		Calendar: calendar,
		Config:   config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *CalendarService) ServiceReady() bool {
	return s.Calendar != nil
}

// ListMembers returns the organization directory sorted by email, without
// the admin account.
func (s *CalendarService) ListMembers(ctx context.Context) ([]models.DirectoryMember, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("calendar service not initialized", domain.ErrServiceUnavailable)
	}

	members, err := s.Calendar.ListMembers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "error listing directory members", logging.ErrKey, err)
		return nil, err
	}

	admin := strings.ToLower(s.Config.AdminAccount)
	filtered := make([]models.DirectoryMember, 0, len(members))
	for _, member := range members {
		if strings.ToLower(member.Email) == admin {
			continue
		}
		filtered = append(filtered, member)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Email < filtered[j].Email })
	return filtered, nil
}

// BusySlots returns the merged busy intervals of one identity, clipped to
// the query range.
func (s *CalendarService) BusySlots(ctx context.Context, q models.BusySlotsQuery) (*models.SlotsResult, error) {
	window, err := s.queryWindow(ctx, q)
	if err != nil {
		return nil, err
	}

	busy, err := s.busy(ctx, q, window)
	if err != nil {
		return nil, err
	}
	return &models.SlotsResult{Identity: q.Identity, Slots: interval.Clip(busy, window)}, nil
}

// FreeSlots returns the parts of the query range the identity is free in.
func (s *CalendarService) FreeSlots(ctx context.Context, q models.BusySlotsQuery) (*models.SlotsResult, error) {
	window, err := s.queryWindow(ctx, q)
	if err != nil {
		return nil, err
	}

	busy, err := s.busy(ctx, q, window)
	if err != nil {
		return nil, err
	}

	free := interval.Complement(window, busy)
	if free == nil {
		free = []interval.TimeInterval{}
	}
	return &models.SlotsResult{Identity: q.Identity, Slots: free}, nil
}

func (s *CalendarService) queryWindow(ctx context.Context, q models.BusySlotsQuery) (interval.TimeInterval, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return interval.TimeInterval{}, domain.NewUnavailableError("calendar service not initialized", domain.ErrServiceUnavailable)
	}
	if q.Identity == "" {
		return interval.TimeInterval{}, invalid("identity is required")
	}
	window, err := interval.New(q.Start, q.End)
	if err != nil {
		return interval.TimeInterval{}, domain.NewValidationError("invalid slot range", domain.ErrValidationFailed, err)
	}
	if window.Duration() > maxSlotsRange {
		return interval.TimeInterval{}, invalid("slot range exceeds %d days", int(maxSlotsRange.Hours()/24))
	}
	return window, nil
}

func (s *CalendarService) busy(ctx context.Context, q models.BusySlotsQuery, window interval.TimeInterval) (interval.BusySet, error) {
	ctx = logging.AppendCtx(ctx, slog.String("calendar_id", q.Identity))
	busy, err := s.Calendar.GetBusy(ctx, q.Identity, window.Start, window.End, q.Timezone)
	if err != nil {
		slog.ErrorContext(ctx, "error getting busy slots", logging.ErrKey, err)
		return nil, err
	}
	return interval.Merge(busy), nil
}
