// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// ConsentAction is the answer carried by a consent link.
type ConsentAction string

const (
	ConsentAccept  ConsentAction = "accept"
	ConsentDecline ConsentAction = "decline"
)

// ConsentToken is the payload sealed into a consent link.
type ConsentToken struct {
	MeetingRequestUID  string        `msgpack:"r"`
	MemberEmail        string        `msgpack:"e"`
	MemberName         string        `msgpack:"n,omitempty"`
	Action             ConsentAction `msgpack:"a"`
	PlaceholderEventID string        `msgpack:"p,omitempty"`
	DropEventIDs       []string      `msgpack:"d,omitempty"`
	ExpiresAt          time.Time     `msgpack:"x"`
}

// Expired reports whether the token is past its expiry at now.
func (t ConsentToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
