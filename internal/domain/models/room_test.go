// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCandidateRoom_Satisfies(t *testing.T) {
	room := CandidateRoom{
		ID:       "room-1",
		Capacity: 8,
		Features: Features{FeatureProjector: 1, FeatureChairs: 8},
	}

	tests := []struct {
		name     string
		required Features
		expected bool
	}{
		{name: "no requirements", required: nil, expected: true},
		{name: "exact counts", required: Features{FeatureProjector: 1, FeatureChairs: 8}, expected: true},
		{name: "fewer than offered", required: Features{FeatureChairs: 4}, expected: true},
		{name: "more than offered", required: Features{FeatureChairs: 10}, expected: false},
		{name: "feature the room lacks", required: Features{FeatureComputers: 1}, expected: false},
		{name: "zero count of a lacking feature", required: Features{FeatureWindows: 0}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, room.Satisfies(tt.required))
		})
	}
}

func TestCandidateRoom_MissingFeatures(t *testing.T) {
	room := CandidateRoom{Features: Features{FeatureProjector: 1, FeatureChairs: 6}}

	missing := room.MissingFeatures(Features{
		FeatureProjector: 1,
		FeatureChairs:    10,
		FeatureComputers: 2,
	})

	assert.Equal(t, Features{FeatureChairs: 4, FeatureComputers: 2}, missing)
	assert.Empty(t, room.MissingFeatures(Features{FeatureChairs: 2}))
}

func TestFeatures_Validate(t *testing.T) {
	assert.NoError(t, Features{FeatureTables: 2}.Validate())
	assert.Error(t, Features{FeatureTables: -1}.Validate())
	assert.Equal(t, []string{FeatureChairs, FeatureProjector}, Features{FeatureProjector: 1, FeatureChairs: 2}.Names())
}

func TestRoomFilter_Matches(t *testing.T) {
	filter := RoomFilter{BuildingID: "hq", MinCapacity: 3}
	deletedAt := time.Now()

	assert.True(t, filter.Matches(CandidateRoom{BuildingID: "hq", Capacity: 3}))
	assert.False(t, filter.Matches(CandidateRoom{BuildingID: "hq", Capacity: 2}))
	assert.False(t, filter.Matches(CandidateRoom{BuildingID: "annex", Capacity: 10}))
	assert.False(t, filter.Matches(CandidateRoom{BuildingID: "hq", Capacity: 10, SoftDelete: SoftDelete{DeletedAt: &deletedAt}}))
}

func TestRoomType_Valid(t *testing.T) {
	assert.True(t, RoomTypeVirtual.Valid())
	assert.True(t, RoomTypePhysical.Valid())
	assert.False(t, RoomType("hybrid").Valid())
}
