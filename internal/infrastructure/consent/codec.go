// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package consent seals consent link payloads into opaque, expiring tokens.
//
// A token is base58(nonce || secretbox(msgpack(payload))). Base58 keeps the
// token safe to paste into a query string without escaping.
package consent

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/akamensky/base58"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

const (
	keySize   = 32
	nonceSize = 24

	argonTime = 3
	argonMem  = 64 * 1024
	argonPar  = 4
)

var keySalt = []byte("lfx-room-booking-consent")

// Codec implements domain.ConsentTokenCodec.
type Codec struct {
	key [keySize]byte
	now func() time.Time
}

var _ domain.ConsentTokenCodec = (*Codec)(nil)

// ParseSecret turns the configured secret into a key. A 64 character hex
// string or exactly 32 raw bytes are used as is; anything else is stretched
// with Argon2id.
func ParseSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("consent secret is empty")
	}
	if len(secret) == 2*keySize {
		if key, err := hex.DecodeString(secret); err == nil {
			return key, nil
		}
	}
	if len(secret) == keySize {
		return []byte(secret), nil
	}
	return argon2.IDKey([]byte(secret), keySalt, argonTime, argonMem, argonPar, keySize), nil
}

// NewCodec creates a codec sealing with key, which must be 32 bytes.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("consent key must be %d bytes, got %d", keySize, len(key))
	}
	c := &Codec{now: time.Now}
	copy(c.key[:], key)
	return c, nil
}

// Encode seals token.
func (c *Codec) Encode(token models.ConsentToken) (string, error) {
	payload, err := msgpack.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("failed to encode consent token: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], payload, &nonce, &c.key)
	return base58.Encode(sealed), nil
}

// Decode opens raw. Every failure is a validation error wrapping
// domain.ErrInvalidToken.
func (c *Codec) Decode(raw string) (models.ConsentToken, error) {
	var token models.ConsentToken

	sealed, err := base58.Decode(raw)
	if err != nil {
		return token, invalid("malformed consent token", err)
	}
	if len(sealed) <= nonceSize+secretbox.Overhead {
		return token, invalid("consent token too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	payload, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &c.key)
	if !ok {
		return token, invalid("consent token signature mismatch")
	}

	if err := msgpack.Unmarshal(payload, &token); err != nil {
		return models.ConsentToken{}, invalid("unreadable consent token", err)
	}
	if token.Action != models.ConsentAccept && token.Action != models.ConsentDecline {
		return models.ConsentToken{}, invalid(fmt.Sprintf("unknown consent action %q", token.Action))
	}
	if token.Expired(c.now()) {
		return models.ConsentToken{}, invalid("consent token expired")
	}

	return token, nil
}

func invalid(message string, err ...error) error {
	return domain.NewValidationError(message, append([]error{domain.ErrInvalidToken}, err...)...)
}
