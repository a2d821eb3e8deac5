// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// NatsMeetingRequestRepository is the NATS KV store repository for meeting requests.
type NatsMeetingRequestRepository struct {
	*NatsBaseRepository[models.MeetingRequest]
	keyBuilder *KeyBuilder
}

// NewNatsMeetingRequestRepository creates a new NATS KV store repository for meeting requests.
func NewNatsMeetingRequestRepository(kvStore INatsKeyValue) *NatsMeetingRequestRepository {
	return &NatsMeetingRequestRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.MeetingRequest](kvStore, "meeting request"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsMeetingRequestRepository) key(uid string) string {
	return r.keyBuilder.EntityKeyEncoded(KeyPrefixMeetingRequest, uid)
}

// Create stores a new meeting request and indexes it by requester.
func (r *NatsMeetingRequestRepository) Create(ctx context.Context, req *models.MeetingRequest) error {
	if req.UID == "" {
		req.UID = uuid.New().String()
	}

	if err := r.NatsBaseRepository.Create(ctx, r.key(req.UID), req); err != nil {
		return err
	}

	indexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexRequester, req.RequesterID, req.UID)
	if err := r.PutIndex(ctx, indexKey); err != nil {
		// the request itself is stored; listing by requester will miss it
		slog.WarnContext(ctx, "failed to index meeting request by requester", logging.ErrKey, err,
			"meeting_request_uid", req.UID, "requester_id", req.RequesterID)
	}
	return nil
}

// Get retrieves a meeting request by UID
func (r *NatsMeetingRequestRepository) Get(ctx context.Context, uid string) (*models.MeetingRequest, error) {
	return r.NatsBaseRepository.Get(ctx, r.key(uid))
}

// GetWithRevision retrieves a meeting request with its revision by UID
func (r *NatsMeetingRequestRepository) GetWithRevision(ctx context.Context, uid string) (*models.MeetingRequest, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, r.key(uid))
}

// Update replaces a meeting request if revision is still current.
func (r *NatsMeetingRequestRepository) Update(ctx context.Context, req *models.MeetingRequest, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, r.key(req.UID), req, revision)
}

// ListByRequester returns the requester's active meeting requests, newest first.
func (r *NatsMeetingRequestRepository) ListByRequester(ctx context.Context, requesterID string) ([]*models.MeetingRequest, error) {
	uids, err := r.ListIndexed(ctx, r.keyBuilder, KeyPrefixIndexRequester, requesterID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(uids))
	for _, uid := range uids {
		keys = append(keys, r.key(uid))
	}

	requests := models.Active(r.GetMany(ctx, keys))
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}
