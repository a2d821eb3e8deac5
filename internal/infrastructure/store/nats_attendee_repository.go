// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// NatsAttendeeRepository is the NATS KV store repository for attendee rows.
type NatsAttendeeRepository struct {
	*NatsBaseRepository[models.Attendee]
	keyBuilder *KeyBuilder
	now        func() time.Time
}

// NewNatsAttendeeRepository creates a new NATS KV store repository for attendees.
func NewNatsAttendeeRepository(kvStore INatsKeyValue) *NatsAttendeeRepository {
	return &NatsAttendeeRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Attendee](kvStore, "attendee"),
		keyBuilder:         NewKeyBuilder(""),
		now:                time.Now,
	}
}

func (r *NatsAttendeeRepository) key(uid string) string {
	return r.keyBuilder.EntityKeyEncoded(KeyPrefixAttendee, uid)
}

// Create stores an attendee row and indexes it by its parent.
func (r *NatsAttendeeRepository) Create(ctx context.Context, attendee *models.Attendee) error {
	if attendee.UID == "" {
		attendee.UID = uuid.New().String()
	}

	if err := r.NatsBaseRepository.Create(ctx, r.key(attendee.UID), attendee); err != nil {
		return err
	}

	indexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexParent, attendee.ParentUID, attendee.UID)
	if err := r.PutIndex(ctx, indexKey); err != nil {
		slog.WarnContext(ctx, "failed to index attendee by parent", logging.ErrKey, err,
			"attendee_uid", attendee.UID, "parent_uid", attendee.ParentUID)
	}
	return nil
}

// ListByParent returns the active attendee rows of a meeting request or meeting.
func (r *NatsAttendeeRepository) ListByParent(ctx context.Context, parentUID string) ([]*models.Attendee, error) {
	uids, err := r.ListIndexed(ctx, r.keyBuilder, KeyPrefixIndexParent, parentUID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(uids))
	for _, uid := range uids {
		keys = append(keys, r.key(uid))
	}
	return models.Active(r.GetMany(ctx, keys)), nil
}

// SoftDelete stamps the attendee row as deleted. The row and its index stay in place.
func (r *NatsAttendeeRepository) SoftDelete(ctx context.Context, uid string) error {
	attendee, revision, err := r.NatsBaseRepository.GetWithRevision(ctx, r.key(uid))
	if err != nil {
		return err
	}
	if !attendee.IsActive() {
		return nil
	}

	attendee.MarkDeleted(r.now())
	return r.NatsBaseRepository.Update(ctx, r.key(uid), attendee, revision)
}
