// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"

// ProposalKind classifies a negotiated slot.
type ProposalKind string

const (
	// ProposalOK is a slot for every participant, in a room that satisfies
	// every requested feature when a room was asked for.
	ProposalOK ProposalKind = "ok"
	// ProposalMissingFeatures is a slot for every participant in a room that
	// only satisfies capacity.
	ProposalMissingFeatures ProposalKind = "missing_features"
	// ProposalConflicts is a slot found after dropping one participant, who
	// has to consent before the meeting is booked.
	ProposalConflicts ProposalKind = "conflicts"
)

// Valid reports whether the kind is known.
func (k ProposalKind) Valid() bool {
	switch k {
	case ProposalOK, ProposalMissingFeatures, ProposalConflicts:
		return true
	}
	return false
}

// Proposal is a negotiated slot. Proposals are never stored; the confirm step
// copies the chosen fields into the request and the meeting.
type Proposal struct {
	Kind              ProposalKind          `json:"kind"`
	Slot              interval.TimeInterval `json:"slot"`
	Room              *CandidateRoom        `json:"room,omitempty"`
	MissingFeatures   Features              `json:"missing_features,omitempty"`
	ConflictingMember *Participant          `json:"conflicting_member,omitempty"`
}

// RoomID returns the proposed room id, or "" for virtual meetings.
func (p Proposal) RoomID() string {
	if p.Room == nil {
		return ""
	}
	return p.Room.ID
}
