// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// NegotiationRequest is the input of a full negotiation.
type NegotiationRequest struct {
	// Organizer is never dropped by the conflict search.
	Organizer    string
	Participants []string
	Window       interval.DailyWindow
	Duration     time.Duration
	Timezone     string
	RoomType     models.RoomType
	BuildingID   string
	Features     models.Features
}

// Negotiator turns a request into at most two proposals: the best slot for
// the whole group, and a slot found by dropping one conflicting participant
// when the whole group has no exact match.
type Negotiator struct {
	finder   *SlotFinder
	selector *RoomSelector
}

// NewNegotiator creates a Negotiator.
func NewNegotiator(finder *SlotFinder, selector *RoomSelector) *Negotiator {
	return &Negotiator{
		finder:   finder,
		selector: selector,
	}
}

// Negotiate runs the search. An empty result is not an error.
func (n *Negotiator) Negotiate(ctx context.Context, req NegotiationRequest) ([]models.Proposal, error) {
	ctx, span := tracer.Start(ctx, "scheduler.negotiate")
	defer span.End()

	if err := ValidateDuration(req.Duration); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	proposals := make([]models.Proposal, 0, 2)

	primary, err := n.search(ctx, req, req.Participants, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if primary != nil {
		proposals = append(proposals, *primary)
	}

	if primary == nil || primary.Kind != models.ProposalOK {
		conflict, err := n.searchWithoutOne(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if conflict != nil {
			proposals = append(proposals, *conflict)
		}
	}

	span.SetAttributes(attribute.Int("scheduler.proposals", len(proposals)))
	span.SetStatus(codes.Ok, "")
	return proposals, nil
}

// search runs the room or virtual search for a group. exactOnly keeps the
// room search to rooms with every requested feature.
func (n *Negotiator) search(ctx context.Context, req NegotiationRequest, group []string, exactOnly bool) (*models.Proposal, error) {
	if req.RoomType != models.RoomTypePhysical {
		slot, err := n.finder.FindSlot(ctx, SlotQuery{
			Participants: group,
			Window:       req.Window,
			Duration:     req.Duration,
			Timezone:     req.Timezone,
		})
		if err != nil || slot == nil {
			return nil, err
		}
		return &models.Proposal{Kind: models.ProposalOK, Slot: *slot}, nil
	}

	match, err := n.selector.SelectRoom(ctx, RoomQuery{
		BuildingID:   req.BuildingID,
		Features:     req.Features,
		Participants: group,
		// a dropped participant may still join, so seats are counted for everyone
		Capacity:  len(req.Participants),
		Window:    req.Window,
		Duration:  req.Duration,
		Timezone:  req.Timezone,
		ExactOnly: exactOnly,
	})
	if err != nil || match == nil {
		return nil, err
	}

	room := match.Room
	proposal := &models.Proposal{Kind: models.ProposalOK, Slot: match.Slot, Room: &room}
	if len(match.MissingFeatures) > 0 {
		proposal.Kind = models.ProposalMissingFeatures
		proposal.MissingFeatures = match.MissingFeatures
	}
	return proposal, nil
}

// searchWithoutOne drops participants one at a time, in list order and never
// the organizer, and returns the first search that succeeds. Only rooms with
// every requested feature are considered, so a conflicts proposal never
// carries missing features.
func (n *Negotiator) searchWithoutOne(ctx context.Context, req NegotiationRequest) (*models.Proposal, error) {
	for i, member := range req.Participants {
		if member == req.Organizer {
			continue
		}

		reduced := slices.Delete(slices.Clone(req.Participants), i, i+1)
		proposal, err := n.search(ctx, req, reduced, true)
		if err != nil {
			return nil, err
		}
		if proposal != nil {
			slog.DebugContext(ctx, "slot found without one participant", "member", member)
			proposal.Kind = models.ProposalConflicts
			proposal.ConflictingMember = &models.Participant{Email: member}
			return proposal, nil
		}
	}
	return nil, nil
}
