// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// RoomQuery describes a search for a room and a slot.
type RoomQuery struct {
	BuildingID   string
	Features     models.Features
	Participants []string
	// Capacity is the number of seats needed; zero means len(Participants).
	Capacity int
	Window   interval.DailyWindow
	Duration time.Duration
	Timezone string
	// ExactOnly skips the rooms that lack a requested feature.
	ExactOnly bool
}

func (q RoomQuery) capacity() int {
	if q.Capacity > 0 {
		return q.Capacity
	}
	return len(q.Participants)
}

// RoomMatch is a room together with the slot found in it.
type RoomMatch struct {
	Room models.CandidateRoom
	Slot interval.TimeInterval
	// MissingFeatures is empty when the room satisfies every requested feature.
	MissingFeatures models.Features
}

// RoomSelector picks a room of the requested building with a free slot.
type RoomSelector struct {
	rooms  domain.RoomRepository
	finder *SlotFinder
	order  RoomOrder
}

// NewRoomSelector creates a RoomSelector. A nil order shuffles randomly.
func NewRoomSelector(rooms domain.RoomRepository, finder *SlotFinder, order RoomOrder) *RoomSelector {
	if order == nil {
		order = NewRandomOrder(nil)
	}
	return &RoomSelector{
		rooms:  rooms,
		finder: finder,
		order:  order,
	}
}

// SelectRoom probes the rooms that satisfy every requested feature in
// random order and returns the first one with a free slot. When none has
// one, the rooms matching only capacity and building are probed the same way
// and the match reports the features they lack, unless q.ExactOnly is set.
// It returns nil when no room works.
//
// Probing is sequential: the first success in the shuffled order wins.
func (s *RoomSelector) SelectRoom(ctx context.Context, q RoomQuery) (*RoomMatch, error) {
	ctx, span := tracer.Start(ctx, "scheduler.select_room")
	defer span.End()

	span.SetAttributes(
		attribute.String("scheduler.building_id", q.BuildingID),
		attribute.Int("scheduler.capacity", q.capacity()),
	)

	if err := ValidateDuration(q.Duration); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	candidates, err := s.rooms.ListCandidates(ctx, models.RoomFilter{
		BuildingID:  q.BuildingID,
		MinCapacity: q.capacity(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var exact, widened []models.CandidateRoom
	for _, room := range models.Active(candidates) {
		// the catalog filters already; keep the guarantee local
		if room.BuildingID != q.BuildingID || room.Capacity < q.capacity() {
			continue
		}
		if room.Satisfies(q.Features) {
			exact = append(exact, room)
		} else if !q.ExactOnly {
			widened = append(widened, room)
		}
	}

	span.SetAttributes(
		attribute.Int("scheduler.exact_pool", len(exact)),
		attribute.Int("scheduler.widened_pool", len(widened)),
	)

	if len(exact) == 0 && len(widened) == 0 {
		span.SetStatus(codes.Ok, "")
		return nil, nil
	}

	window := probeWindow(q.Window.Bounds())
	participantsBusy, err := s.finder.collector.Collect(ctx, q.Participants, window, q.Timezone)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// rooms of the exact pool already failed, so widening only probes the rest
	for _, pool := range [][]models.CandidateRoom{exact, widened} {
		match, err := s.probe(ctx, q, s.order.Order(pool), participantsBusy, window)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if match != nil {
			match.MissingFeatures = match.Room.MissingFeatures(q.Features)
			span.SetAttributes(
				attribute.String("scheduler.room_id", match.Room.ID),
				attribute.Int("scheduler.missing_features", len(match.MissingFeatures)),
			)
			span.SetStatus(codes.Ok, "")
			return match, nil
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil, nil
}

func (s *RoomSelector) probe(ctx context.Context, q RoomQuery, rooms []models.CandidateRoom, participantsBusy interval.BusySet, window interval.TimeInterval) (*RoomMatch, error) {
	for _, room := range rooms {
		roomBusy, err := s.finder.collector.Collect(ctx, []string{room.CalendarID}, window, q.Timezone)
		if err != nil {
			slog.ErrorContext(ctx, "error probing room availability", logging.ErrKey, err, "room_id", room.ID)
			return nil, err
		}

		slot, err := s.finder.Search(interval.Merge(participantsBusy, roomBusy), q.Window, q.Duration)
		if err != nil {
			return nil, err
		}
		if slot != nil {
			slog.DebugContext(ctx, "room has a free slot", "room_id", room.ID, "start", slot.Start.Format(time.RFC3339))
			return &RoomMatch{Room: room, Slot: *slot}, nil
		}
	}
	return nil, nil
}
