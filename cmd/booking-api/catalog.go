// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/catalog"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// setupRoomCatalog opens the room catalog and applies the seed file when one
// is configured. The returned func closes the database.
func setupRoomCatalog(ctx context.Context, env environment) (*catalog.SQLiteRoomRepository, func(), error) {
	db, err := catalog.Open(ctx, env.RoomCatalogDSN)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.With(logging.ErrKey, err).Error("error closing room catalog")
		}
	}

	repo := catalog.NewSQLiteRoomRepository(db)

	if env.RoomCatalogSeed != "" {
		if err := catalog.LoadSeed(ctx, repo, env.RoomCatalogSeed); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("load room catalog seed %s: %w", env.RoomCatalogSeed, err)
		}
		slog.InfoContext(ctx, "room catalog seed applied", "path", env.RoomCatalogSeed)
	}

	return repo, closeDB, nil
}
