// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"math/rand/v2"
	"sync"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// RoomOrder decides the order in which candidate rooms are probed.
type RoomOrder interface {
	// Order returns a reordered copy of rooms; the input is not modified.
	Order(rooms []models.CandidateRoom) []models.CandidateRoom
}

// RandomOrder shuffles rooms uniformly so repeated runs spread bookings
// across equivalent rooms.
type RandomOrder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomOrder returns a shuffling order. A non-nil seed makes the sequence
// of orders reproducible.
func NewRandomOrder(seed *uint64) *RandomOrder {
	var src rand.Source
	if seed != nil {
		src = rand.NewPCG(*seed, *seed)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RandomOrder{rng: rand.New(src)}
}

// Order implements RoomOrder.
func (o *RandomOrder) Order(rooms []models.CandidateRoom) []models.CandidateRoom {
	shuffled := append([]models.CandidateRoom(nil), rooms...)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// SequentialOrder keeps the catalog order.
type SequentialOrder struct{}

// Order implements RoomOrder.
func (SequentialOrder) Order(rooms []models.CandidateRoom) []models.CandidateRoom {
	return append([]models.CandidateRoom(nil), rooms...)
}
