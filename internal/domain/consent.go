// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"

// ConsentTokenCodec seals consent payloads into opaque URL-safe strings.
type ConsentTokenCodec interface {
	Encode(token models.ConsentToken) (string, error)
	// Decode returns ErrInvalidToken for tampered, malformed or expired tokens.
	Decode(raw string) (models.ConsentToken, error)
}
