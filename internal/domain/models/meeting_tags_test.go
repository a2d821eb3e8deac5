// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeeting_Tags(t *testing.T) {
	tests := []struct {
		name     string
		meeting  *Meeting
		expected []string
	}{
		{
			name:     "nil meeting returns nil",
			meeting:  nil,
			expected: nil,
		},
		{
			name:     "empty meeting returns empty slice",
			meeting:  &Meeting{},
			expected: []string{},
		},
		{
			name: "meeting with UID only",
			meeting: &Meeting{
				UID: "meeting-123",
			},
			expected: []string{
				"meeting-123",
				"meeting_uid:meeting-123",
			},
		},
		{
			name: "virtual meeting",
			meeting: &Meeting{
				UID:               "meeting-123",
				MeetingRequestUID: "request-456",
				ProviderEventID:   "event-789",
			},
			expected: []string{
				"meeting-123",
				"meeting_uid:meeting-123",
				"meeting_request_uid:request-456",
				"provider_event_id:event-789",
			},
		},
		{
			name: "meeting with a room",
			meeting: &Meeting{
				UID:               "meeting-123",
				MeetingRequestUID: "request-456",
				RoomID:            "room-1",
				ProviderEventID:   "event-789",
			},
			expected: []string{
				"meeting-123",
				"meeting_uid:meeting-123",
				"meeting_request_uid:request-456",
				"room_id:room-1",
				"provider_event_id:event-789",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.meeting.Tags())
		})
	}
}
