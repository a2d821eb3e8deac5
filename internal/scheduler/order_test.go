// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

func roomIDs(rooms []models.CandidateRoom) []string {
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestRandomOrder_SeededIsReproducible(t *testing.T) {
	rooms := []models.CandidateRoom{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}, {ID: "r4"}, {ID: "r5"}}
	seed := uint64(42)

	first := NewRandomOrder(&seed)
	second := NewRandomOrder(&seed)

	for range 5 {
		assert.Equal(t, roomIDs(first.Order(rooms)), roomIDs(second.Order(rooms)))
	}
}

func TestRandomOrder_IsAPermutation(t *testing.T) {
	rooms := []models.CandidateRoom{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}}
	ordered := NewRandomOrder(nil).Order(rooms)

	assert.ElementsMatch(t, []string{"r1", "r2", "r3"}, roomIDs(ordered))
	assert.Equal(t, []string{"r1", "r2", "r3"}, roomIDs(rooms), "input is not modified")
}

func TestSequentialOrder(t *testing.T) {
	rooms := []models.CandidateRoom{{ID: "r2"}, {ID: "r1"}}
	assert.Equal(t, []string{"r2", "r1"}, roomIDs(SequentialOrder{}.Order(rooms)))
	assert.Empty(t, SequentialOrder{}.Order(nil))
}
