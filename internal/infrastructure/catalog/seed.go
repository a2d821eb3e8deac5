// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// Seed is the file format accepted by LoadSeed.
type Seed struct {
	Buildings []models.Building      `json:"buildings"`
	Rooms     []models.CandidateRoom `json:"rooms"`
}

// ReadSeed decodes a seed document.
func ReadSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode room seed: %w", err)
	}
	return &seed, nil
}

// Apply upserts every building, then every room.
func (s *Seed) Apply(ctx context.Context, repo *SQLiteRoomRepository) error {
	for _, building := range s.Buildings {
		if err := repo.UpsertBuilding(ctx, building); err != nil {
			return err
		}
	}
	for _, room := range s.Rooms {
		if err := repo.Upsert(ctx, room); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "room catalog seeded",
		"buildings", len(s.Buildings),
		"rooms", len(s.Rooms),
	)
	return nil
}

// LoadSeed reads the seed file at path and applies it to the catalog.
func LoadSeed(ctx context.Context, repo *SQLiteRoomRepository, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open room seed: %w", err)
	}
	defer func() { _ = f.Close() }()

	seed, err := ReadSeed(f)
	if err != nil {
		return err
	}
	return seed.Apply(ctx, repo)
}
