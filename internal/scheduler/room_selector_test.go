// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

func room(id, building string, capacity int, features models.Features) models.CandidateRoom {
	return models.CandidateRoom{
		ID:         id,
		BuildingID: building,
		Name:       "Room " + id,
		CalendarID: id + "@resource",
		Capacity:   capacity,
		Features:   features,
	}
}

func newSelector(fb *stubFreeBusy, rooms *mocks.MockRoomRepository) *RoomSelector {
	return NewRoomSelector(rooms, newFinder(fb), SequentialOrder{})
}

func roomQuery(features models.Features) RoomQuery {
	return RoomQuery{
		BuildingID:   "hq",
		Features:     features,
		Participants: []string{"a@x.com", "b@x.com"},
		Window:       dailyWindow(4, 4, 9, 0, 11, 0),
		Duration:     30 * time.Minute,
		Timezone:     "UTC",
	}
}

func TestSelectRoom_ExactPoolWins(t *testing.T) {
	fb := newStubFreeBusy()
	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, models.RoomFilter{BuildingID: "hq", MinCapacity: 2}).Return([]models.CandidateRoom{
		room("plain", "hq", 4, nil),
		room("beamer", "hq", 4, models.Features{models.FeatureProjector: 1}),
	}, nil)

	match, err := newSelector(fb, rooms).SelectRoom(context.Background(), roomQuery(models.Features{models.FeatureProjector: 1}))
	require.NoError(t, err)
	require.NotNil(t, match)

	assert.Equal(t, "beamer", match.Room.ID)
	assert.Empty(t, match.MissingFeatures)
	assert.Equal(t, day(4, 9, 0), match.Slot.Start)
	rooms.AssertExpectations(t)
}

func TestSelectRoom_BusyExactRoomFallsBackToWidenedPool(t *testing.T) {
	fb := newStubFreeBusy()
	fb.setBusy("beamer@resource", busyBlock(4, 8, 0, 12, 0))

	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, mock.Anything).Return([]models.CandidateRoom{
		room("plain", "hq", 4, models.Features{models.FeatureChairs: 2}),
		room("beamer", "hq", 4, models.Features{models.FeatureProjector: 1, models.FeatureChairs: 4}),
	}, nil)

	required := models.Features{models.FeatureProjector: 1, models.FeatureChairs: 4}
	match, err := newSelector(fb, rooms).SelectRoom(context.Background(), roomQuery(required))
	require.NoError(t, err)
	require.NotNil(t, match)

	assert.Equal(t, "plain", match.Room.ID)
	assert.Equal(t, models.Features{models.FeatureProjector: 1, models.FeatureChairs: 2}, match.MissingFeatures)
}

func TestSelectRoom_ExactOnlySkipsWidenedPool(t *testing.T) {
	fb := newStubFreeBusy()
	fb.setBusy("beamer@resource", busyBlock(4, 8, 0, 12, 0))

	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, mock.Anything).Return([]models.CandidateRoom{
		room("plain", "hq", 4, nil),
		room("beamer", "hq", 4, models.Features{models.FeatureProjector: 1}),
	}, nil)

	q := roomQuery(models.Features{models.FeatureProjector: 1})
	q.ExactOnly = true
	match, err := newSelector(fb, rooms).SelectRoom(context.Background(), q)
	require.NoError(t, err)

	assert.Nil(t, match)
	assert.NotContains(t, fb.calls, "plain@resource")
}

func TestSelectRoom_NeverViolatesCapacityOrBuilding(t *testing.T) {
	fb := newStubFreeBusy()
	rooms := &mocks.MockRoomRepository{}
	// a misbehaving catalog returning rooms that do not match the filter
	rooms.On("ListCandidates", mock.Anything, mock.Anything).Return([]models.CandidateRoom{
		room("tiny", "hq", 1, nil),
		room("elsewhere", "annex", 20, nil),
	}, nil)

	match, err := newSelector(fb, rooms).SelectRoom(context.Background(), roomQuery(nil))
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Zero(t, fb.callCount(), "no availability is fetched without candidates")
}

func TestSelectRoom_SkipsDeletedRooms(t *testing.T) {
	fb := newStubFreeBusy()
	deleted := room("gone", "hq", 4, nil)
	deleted.MarkDeleted(time.Now())

	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, mock.Anything).Return([]models.CandidateRoom{deleted, room("live", "hq", 4, nil)}, nil)

	match, err := newSelector(fb, rooms).SelectRoom(context.Background(), roomQuery(nil))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "live", match.Room.ID)
}

func TestSelectRoom_NoRoomFree(t *testing.T) {
	fb := newStubFreeBusy()
	fb.setBusy("r1@resource", busyBlock(4, 8, 0, 12, 0))
	fb.setBusy("r2@resource", busyBlock(4, 8, 0, 12, 0))

	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, mock.Anything).Return([]models.CandidateRoom{
		room("r1", "hq", 4, nil),
		room("r2", "hq", 4, nil),
	}, nil)

	match, err := newSelector(fb, rooms).SelectRoom(context.Background(), roomQuery(nil))
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestSelectRoom_StopsAtFirstSuccess(t *testing.T) {
	fb := newStubFreeBusy()
	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, mock.Anything).Return([]models.CandidateRoom{
		room("r1", "hq", 4, nil),
		room("r2", "hq", 4, nil),
		room("r3", "hq", 4, nil),
	}, nil)

	match, err := newSelector(fb, rooms).SelectRoom(context.Background(), roomQuery(nil))
	require.NoError(t, err)
	require.NotNil(t, match)

	assert.Equal(t, "r1", match.Room.ID)
	assert.NotContains(t, fb.calls, "r2@resource")
	assert.NotContains(t, fb.calls, "r3@resource")
}

func TestSelectRoom_SeededRandomOrderIsReproducible(t *testing.T) {
	candidates := []models.CandidateRoom{
		room("r1", "hq", 4, nil),
		room("r2", "hq", 4, nil),
		room("r3", "hq", 4, nil),
		room("r4", "hq", 4, nil),
	}
	seed := uint64(7)

	pick := func() string {
		rooms := &mocks.MockRoomRepository{}
		rooms.On("ListCandidates", mock.Anything, mock.Anything).Return(candidates, nil)
		selector := NewRoomSelector(rooms, newFinder(newStubFreeBusy()), NewRandomOrder(&seed))

		match, err := selector.SelectRoom(context.Background(), roomQuery(nil))
		require.NoError(t, err)
		require.NotNil(t, match)
		return match.Room.ID
	}

	assert.Equal(t, pick(), pick())
}

func TestSelectRoom_CatalogError(t *testing.T) {
	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, mock.Anything).Return(nil, errors.New("catalog down"))

	match, err := newSelector(newStubFreeBusy(), rooms).SelectRoom(context.Background(), roomQuery(nil))
	assert.Nil(t, match)
	assert.EqualError(t, err, "catalog down")
}

func TestSelectRoom_CapacityOverride(t *testing.T) {
	rooms := &mocks.MockRoomRepository{}
	rooms.On("ListCandidates", mock.Anything, models.RoomFilter{BuildingID: "hq", MinCapacity: 5}).Return([]models.CandidateRoom{
		room("big", "hq", 6, nil),
	}, nil)

	q := roomQuery(nil)
	q.Capacity = 5

	match, err := newSelector(newStubFreeBusy(), rooms).SelectRoom(context.Background(), q)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "big", match.Room.ID)
	rooms.AssertExpectations(t)
}
