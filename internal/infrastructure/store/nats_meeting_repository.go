// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// NatsMeetingRepository is the NATS KV store repository for meetings.
type NatsMeetingRepository struct {
	*NatsBaseRepository[models.Meeting]
	keyBuilder *KeyBuilder
}

// NewNatsMeetingRepository creates a new NATS KV store repository for meetings.
func NewNatsMeetingRepository(kvStore INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Meeting](kvStore, "meeting"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsMeetingRepository) key(uid string) string {
	return r.keyBuilder.EntityKeyEncoded(KeyPrefixMeeting, uid)
}

// Create stores a meeting and indexes it by request and provider event.
func (r *NatsMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.UID == "" {
		meeting.UID = uuid.New().String()
	}

	if err := r.NatsBaseRepository.Create(ctx, r.key(meeting.UID), meeting); err != nil {
		return err
	}

	indices := []string{
		r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexRequest, meeting.MeetingRequestUID, meeting.UID),
	}
	if meeting.ProviderEventID != "" {
		indices = append(indices, r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexEvent, meeting.ProviderEventID, meeting.UID))
	}
	for _, indexKey := range indices {
		if err := r.PutIndex(ctx, indexKey); err != nil {
			slog.WarnContext(ctx, "failed to index meeting", logging.ErrKey, err, "meeting_uid", meeting.UID)
		}
	}
	return nil
}

// Get retrieves a meeting by UID
func (r *NatsMeetingRepository) Get(ctx context.Context, uid string) (*models.Meeting, error) {
	return r.NatsBaseRepository.Get(ctx, r.key(uid))
}

// GetWithRevision retrieves a meeting with its revision by UID
func (r *NatsMeetingRepository) GetWithRevision(ctx context.Context, uid string) (*models.Meeting, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, r.key(uid))
}

// Update replaces a meeting if revision is still current.
func (r *NatsMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, r.key(meeting.UID), meeting, revision)
}

// GetByRequest returns the active meeting created for a meeting request.
func (r *NatsMeetingRepository) GetByRequest(ctx context.Context, requestUID string) (*models.Meeting, error) {
	meetings, err := r.listBy(ctx, KeyPrefixIndexRequest, requestUID)
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		return nil, domain.NewNotFoundError(
			fmt.Sprintf("no meeting found for meeting request '%s'", requestUID), domain.ErrMeetingNotFound)
	}
	return meetings[0], nil
}

// ListByProviderEventID returns the active meetings backed by a provider event.
func (r *NatsMeetingRepository) ListByProviderEventID(ctx context.Context, eventID string) ([]*models.Meeting, error) {
	return r.listBy(ctx, KeyPrefixIndexEvent, eventID)
}

func (r *NatsMeetingRepository) listBy(ctx context.Context, indexType, indexValue string) ([]*models.Meeting, error) {
	uids, err := r.ListIndexed(ctx, r.keyBuilder, indexType, indexValue)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(uids))
	for _, uid := range uids {
		keys = append(keys, r.key(uid))
	}
	return models.Active(r.GetMany(ctx, keys)), nil
}
