// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

const tracerName = "github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/catalog"

const roomColumns = `id, building_id, name, calendar_id, capacity, features, description, created_at, deleted_at`

// SQLiteRoomRepository reads and seeds the meeting room catalog.
type SQLiteRoomRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRoomRepository creates a room repository on an opened catalog.
func NewSQLiteRoomRepository(db *sql.DB) *SQLiteRoomRepository {
	return &SQLiteRoomRepository{db: db, now: time.Now}
}

// IsReady reports whether the catalog answers queries.
func (r *SQLiteRoomRepository) IsReady(ctx context.Context) bool {
	return r.db != nil && r.db.PingContext(ctx) == nil
}

func startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", "meeting_rooms"),
	)
	return otel.Tracer(tracerName).Start(ctx, "sqlite.rooms."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (models.CandidateRoom, error) {
	var (
		room      models.CandidateRoom
		features  string
		deletedAt sql.NullTime
	)
	if err := row.Scan(&room.ID, &room.BuildingID, &room.Name, &room.CalendarID, &room.Capacity,
		&features, &room.Description, &room.CreatedAt, &deletedAt); err != nil {
		return models.CandidateRoom{}, err
	}

	room.Features = models.Features{}
	if features != "" {
		if err := json.Unmarshal([]byte(features), &room.Features); err != nil {
			return models.CandidateRoom{}, fmt.Errorf("decode features of room %s: %w", room.ID, err)
		}
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		room.DeletedAt = &t
	}
	room.CreatedAt = room.CreatedAt.UTC()
	return room, nil
}

// Get returns a room by id, including soft-deleted ones.
func (r *SQLiteRoomRepository) Get(ctx context.Context, id string) (*models.CandidateRoom, error) {
	ctx, span := startSpan(ctx, "get", attribute.String("room.id", id))
	defer span.End()

	row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM meeting_rooms WHERE id = ?`, id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fail(span, domain.NewNotFoundError(fmt.Sprintf("room '%s' not found", id), domain.ErrRoomNotFound))
		}
		slog.ErrorContext(ctx, "error reading room from catalog", logging.ErrKey, err, "room_id", id)
		return nil, fail(span, domain.NewInternalError("failed to read room from catalog", err))
	}

	span.SetStatus(codes.Ok, "")
	return &room, nil
}

// ListCandidates returns the active rooms of the filter's building with at
// least MinCapacity seats, ordered by id. Rooms of a deleted building are
// never candidates.
func (r *SQLiteRoomRepository) ListCandidates(ctx context.Context, filter models.RoomFilter) ([]models.CandidateRoom, error) {
	ctx, span := startSpan(ctx, "list_candidates",
		attribute.String("room.building_id", filter.BuildingID),
		attribute.Int("room.min_capacity", filter.MinCapacity),
	)
	defer span.End()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roomColumns+` FROM meeting_rooms
		 WHERE building_id = ? AND capacity >= ? AND deleted_at IS NULL
		   AND building_id IN (SELECT id FROM buildings WHERE deleted_at IS NULL)
		 ORDER BY id`,
		filter.BuildingID, filter.MinCapacity,
	)
	if err != nil {
		slog.ErrorContext(ctx, "error listing rooms from catalog", logging.ErrKey, err)
		return nil, fail(span, domain.NewInternalError("failed to list rooms from catalog", err))
	}
	defer func() { _ = rows.Close() }()

	rooms := []models.CandidateRoom{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			slog.ErrorContext(ctx, "error scanning room", logging.ErrKey, err)
			return nil, fail(span, domain.NewInternalError("failed to read rooms from catalog", err))
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(span, domain.NewInternalError("failed to read rooms from catalog", err))
	}

	span.SetAttributes(attribute.Int("room.count", len(rooms)))
	span.SetStatus(codes.Ok, "")
	return rooms, nil
}

// Upsert inserts a room or replaces the stored one with the same id.
func (r *SQLiteRoomRepository) Upsert(ctx context.Context, room models.CandidateRoom) error {
	ctx, span := startSpan(ctx, "upsert", attribute.String("room.id", room.ID))
	defer span.End()

	if room.ID == "" || room.BuildingID == "" || room.CalendarID == "" {
		return fail(span, domain.NewValidationError("room id, building id and calendar id are required", domain.ErrValidationFailed))
	}
	if room.Capacity < 0 {
		return fail(span, domain.NewValidationError(fmt.Sprintf("room %s has negative capacity", room.ID), domain.ErrValidationFailed))
	}
	if err := room.Features.Validate(); err != nil {
		return fail(span, domain.NewValidationError(fmt.Sprintf("room %s: %s", room.ID, err), domain.ErrValidationFailed))
	}

	features := room.Features
	if features == nil {
		features = models.Features{}
	}
	encoded, err := json.Marshal(features)
	if err != nil {
		return fail(span, domain.NewInternalError("failed to encode room features", err))
	}

	createdAt := room.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	var deletedAt sql.NullTime
	if room.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: room.DeletedAt.UTC(), Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meeting_rooms (`+roomColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   building_id = excluded.building_id,
		   name = excluded.name,
		   calendar_id = excluded.calendar_id,
		   capacity = excluded.capacity,
		   features = excluded.features,
		   description = excluded.description,
		   deleted_at = excluded.deleted_at`,
		room.ID, room.BuildingID, room.Name, room.CalendarID, room.Capacity,
		string(encoded), room.Description, createdAt.UTC(), deletedAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "error upserting room", logging.ErrKey, err, "room_id", room.ID)
		return fail(span, domain.NewInternalError(fmt.Sprintf("failed to store room %s", room.ID), err))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpsertBuilding inserts a building or renames the stored one.
func (r *SQLiteRoomRepository) UpsertBuilding(ctx context.Context, building models.Building) error {
	ctx, span := startSpan(ctx, "upsert_building", attribute.String("building.id", building.ID))
	defer span.End()

	if building.ID == "" {
		return fail(span, domain.NewValidationError("building id is required", domain.ErrValidationFailed))
	}

	var deletedAt sql.NullTime
	if building.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: building.DeletedAt.UTC(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO buildings (id, name, deleted_at) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, deleted_at = excluded.deleted_at`,
		building.ID, building.Name, deletedAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "error upserting building", logging.ErrKey, err, "building_id", building.ID)
		return fail(span, domain.NewInternalError(fmt.Sprintf("failed to store building %s", building.ID), err))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
