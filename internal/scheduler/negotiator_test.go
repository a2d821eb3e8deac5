// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

func newNegotiator(fb *stubFreeBusy, rooms *mocks.MockRoomRepository) *Negotiator {
	finder := newFinder(fb)
	return NewNegotiator(finder, NewRoomSelector(rooms, finder, SequentialOrder{}))
}

func virtualRequest(participants ...string) NegotiationRequest {
	return NegotiationRequest{
		Organizer:    participants[0],
		Participants: participants,
		Window:       dailyWindow(4, 4, 9, 0, 11, 0),
		Duration:     30 * time.Minute,
		Timezone:     "UTC",
		RoomType:     models.RoomTypeVirtual,
	}
}

func TestNegotiate_ScenarioA_EveryoneFree(t *testing.T) {
	fb := newStubFreeBusy()

	proposals, err := newNegotiator(fb, &mocks.MockRoomRepository{}).Negotiate(context.Background(), virtualRequest("a@x.com", "b@x.com"))
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	assert.Equal(t, models.ProposalOK, proposals[0].Kind)
	assert.Equal(t, interval.TimeInterval{Start: day(4, 9, 0), End: day(4, 9, 30)}, proposals[0].Slot)
	assert.Nil(t, proposals[0].Room)
}

func TestNegotiate_ScenarioB_FirstGapAfterBusyBlock(t *testing.T) {
	fb := newStubFreeBusy()
	fb.setBusy("a@x.com", busyBlock(4, 9, 0, 10, 0))

	req := virtualRequest("a@x.com", "b@x.com")
	req.Window = dailyWindow(4, 4, 9, 0, 10, 30)

	proposals, err := newNegotiator(fb, &mocks.MockRoomRepository{}).Negotiate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	assert.Equal(t, models.ProposalOK, proposals[0].Kind)
	assert.Equal(t, interval.TimeInterval{Start: day(4, 10, 0), End: day(4, 10, 30)}, proposals[0].Slot)
}

func TestNegotiate_ScenarioC_InvalidDuration(t *testing.T) {
	fb := newStubFreeBusy()
	req := virtualRequest("a@x.com", "b@x.com")
	req.Duration = 37 * time.Minute

	proposals, err := newNegotiator(fb, &mocks.MockRoomRepository{}).Negotiate(context.Background(), req)

	assert.Nil(t, proposals)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	assert.Zero(t, fb.callCount())
}

func TestNegotiate_ScenarioD_MissingFeatures(t *testing.T) {
	fb := newStubFreeBusy()
	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, models.RoomFilter{BuildingID: "hq", MinCapacity: 2}).Return([]models.CandidateRoom{
		room("small", "hq", 3, models.Features{models.FeatureChairs: 3}),
	}, nil)

	req := virtualRequest("a@x.com", "b@x.com")
	req.RoomType = models.RoomTypePhysical
	req.BuildingID = "hq"
	req.Features = models.Features{models.FeatureProjector: 1, models.FeatureChairs: 3, models.FeatureComputers: 2}

	proposals, err := newNegotiator(fb, rooms).Negotiate(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, proposals)

	first := proposals[0]
	assert.Equal(t, models.ProposalMissingFeatures, first.Kind)
	require.NotNil(t, first.Room)
	assert.Equal(t, "small", first.Room.ID)
	assert.Equal(t, models.Features{models.FeatureProjector: 1, models.FeatureComputers: 2}, first.MissingFeatures)
	assert.Equal(t, day(4, 9, 0), first.Slot.Start)
}

func TestNegotiate_ConflictingMemberIsDropped(t *testing.T) {
	fb := newStubFreeBusy()
	fb.setBusy("b@x.com", busyBlock(4, 8, 0, 12, 0))

	proposals, err := newNegotiator(fb, &mocks.MockRoomRepository{}).Negotiate(context.Background(), virtualRequest("a@x.com", "b@x.com", "c@x.com"))
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	assert.Equal(t, models.ProposalConflicts, proposals[0].Kind)
	require.NotNil(t, proposals[0].ConflictingMember)
	assert.Equal(t, "b@x.com", proposals[0].ConflictingMember.Email)
	assert.Equal(t, day(4, 9, 0), proposals[0].Slot.Start)
}

func TestNegotiate_RemovesInListOrder(t *testing.T) {
	// c and d are both busy, so dropping any single member leaves a conflict
	fb := newStubFreeBusy()
	fb.setBusy("c@x.com", busyBlock(4, 8, 0, 12, 0))
	fb.setBusy("d@x.com", busyBlock(4, 8, 0, 12, 0))

	proposals, err := newNegotiator(fb, &mocks.MockRoomRepository{}).Negotiate(context.Background(), virtualRequest("a@x.com", "b@x.com", "c@x.com", "d@x.com"))
	require.NoError(t, err)
	assert.Empty(t, proposals)
}

func TestNegotiate_OrganizerIsNeverDropped(t *testing.T) {
	fb := newStubFreeBusy()
	fb.setBusy("a@x.com", busyBlock(4, 8, 0, 12, 0))

	proposals, err := newNegotiator(fb, &mocks.MockRoomRepository{}).Negotiate(context.Background(), virtualRequest("a@x.com", "b@x.com"))
	require.NoError(t, err)
	assert.Empty(t, proposals)

	organizerCalls := 0
	for _, call := range fb.calls {
		if call == "a@x.com" {
			organizerCalls++
		}
	}
	assert.Equal(t, 2, organizerCalls, "the organizer is part of the full and the reduced group")
	assert.Len(t, fb.calls, 3)
}

func TestNegotiate_NoConflictSearchAfterExactMatch(t *testing.T) {
	fb := newStubFreeBusy()

	_, err := newNegotiator(fb, &mocks.MockRoomRepository{}).Negotiate(context.Background(), virtualRequest("a@x.com", "b@x.com", "c@x.com"))
	require.NoError(t, err)
	assert.Equal(t, 3, fb.callCount(), "one probe per participant")
}

func TestNegotiate_PhysicalConflictKeepsFullCapacity(t *testing.T) {
	fb := newStubFreeBusy()
	fb.setBusy("b@x.com", busyBlock(4, 8, 0, 12, 0))

	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, models.RoomFilter{BuildingID: "hq", MinCapacity: 3}).Return([]models.CandidateRoom{
		room("r1", "hq", 3, nil),
	}, nil)

	req := virtualRequest("a@x.com", "b@x.com", "c@x.com")
	req.RoomType = models.RoomTypePhysical
	req.BuildingID = "hq"

	proposals, err := newNegotiator(fb, rooms).Negotiate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	assert.Equal(t, models.ProposalConflicts, proposals[0].Kind)
	assert.Equal(t, "r1", proposals[0].RoomID())
	assert.Equal(t, "b@x.com", proposals[0].ConflictingMember.Email)
	rooms.AssertExpectations(t)
}

func TestNegotiate_ConflictSearchNeedsEveryFeature(t *testing.T) {
	fb := newStubFreeBusy()
	fb.setBusy("b@x.com", busyBlock(4, 8, 0, 12, 0))
	fb.setBusy("beamer@resource", busyBlock(4, 8, 0, 12, 0))

	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, models.RoomFilter{BuildingID: "hq", MinCapacity: 2}).Return([]models.CandidateRoom{
		room("plain", "hq", 4, nil),
		room("beamer", "hq", 4, models.Features{models.FeatureProjector: 1}),
	}, nil)

	req := virtualRequest("a@x.com", "b@x.com")
	req.RoomType = models.RoomTypePhysical
	req.BuildingID = "hq"
	req.Features = models.Features{models.FeatureProjector: 1}

	proposals, err := newNegotiator(fb, rooms).Negotiate(context.Background(), req)
	require.NoError(t, err)

	// plain is free for a alone but lacks the projector
	assert.Empty(t, proposals)
}

func TestNegotiate_ProviderErrorAborts(t *testing.T) {
	fb := newStubFreeBusy()
	fb.errs["b@x.com"] = domain.NewUnavailableError("google calendar unavailable", domain.ErrProviderUnavailable)

	proposals, err := newNegotiator(fb, &mocks.MockRoomRepository{}).Negotiate(context.Background(), virtualRequest("a@x.com", "b@x.com"))
	assert.Nil(t, proposals)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
