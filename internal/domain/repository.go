// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// MeetingRequestRepository stores meeting requests.
// Updates are revision checked: a stale revision yields a ConflictError.
type MeetingRequestRepository interface {
	Create(ctx context.Context, req *models.MeetingRequest) error
	Get(ctx context.Context, uid string) (*models.MeetingRequest, error)
	GetWithRevision(ctx context.Context, uid string) (*models.MeetingRequest, uint64, error)
	Update(ctx context.Context, req *models.MeetingRequest, revision uint64) error
	// ListByRequester returns the requester's active requests, newest first.
	ListByRequester(ctx context.Context, requesterID string) ([]*models.MeetingRequest, error)
}

// MeetingRepository stores committed meetings.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	Get(ctx context.Context, uid string) (*models.Meeting, error)
	GetWithRevision(ctx context.Context, uid string) (*models.Meeting, uint64, error)
	Update(ctx context.Context, meeting *models.Meeting, revision uint64) error
	// GetByRequest returns the active meeting of a request.
	GetByRequest(ctx context.Context, requestUID string) (*models.Meeting, error)
	// ListByProviderEventID returns the active meetings backed by a provider event.
	ListByProviderEventID(ctx context.Context, eventID string) ([]*models.Meeting, error)
}

// AttendeeRepository stores attendee rows of meeting requests and meetings.
type AttendeeRepository interface {
	Create(ctx context.Context, attendee *models.Attendee) error
	// ListByParent returns the active attendee rows of a request or meeting.
	ListByParent(ctx context.Context, parentUID string) ([]*models.Attendee, error)
	// SoftDelete marks one attendee row as deleted.
	SoftDelete(ctx context.Context, uid string) error
}

// RoomRepository reads the room catalog.
type RoomRepository interface {
	Get(ctx context.Context, id string) (*models.CandidateRoom, error)
	// ListCandidates returns the active rooms matching the filter, ordered by id.
	ListCandidates(ctx context.Context, filter models.RoomFilter) ([]models.CandidateRoom, error)
	Upsert(ctx context.Context, room models.CandidateRoom) error
}
