// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// MockMeetingRequestRepository implements MeetingRequestRepository for testing
type MockMeetingRequestRepository struct {
	mock.Mock
}

func (m *MockMeetingRequestRepository) Create(ctx context.Context, req *models.MeetingRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockMeetingRequestRepository) Get(ctx context.Context, uid string) (*models.MeetingRequest, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetingRequest), args.Error(1)
}

func (m *MockMeetingRequestRepository) GetWithRevision(ctx context.Context, uid string) (*models.MeetingRequest, uint64, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.MeetingRequest), args.Get(1).(uint64), args.Error(2)
}

func (m *MockMeetingRequestRepository) Update(ctx context.Context, req *models.MeetingRequest, revision uint64) error {
	args := m.Called(ctx, req, revision)
	return args.Error(0)
}

func (m *MockMeetingRequestRepository) ListByRequester(ctx context.Context, requesterID string) ([]*models.MeetingRequest, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MeetingRequest), args.Error(1)
}

// MockMeetingRepository implements MeetingRepository for testing
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) Get(ctx context.Context, uid string) (*models.Meeting, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) GetWithRevision(ctx context.Context, uid string) (*models.Meeting, uint64, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Meeting), args.Get(1).(uint64), args.Error(2)
}

func (m *MockMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	args := m.Called(ctx, meeting, revision)
	return args.Error(0)
}

func (m *MockMeetingRepository) GetByRequest(ctx context.Context, requestUID string) (*models.Meeting, error) {
	args := m.Called(ctx, requestUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) ListByProviderEventID(ctx context.Context, eventID string) ([]*models.Meeting, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Meeting), args.Error(1)
}

// MockAttendeeRepository implements AttendeeRepository for testing
type MockAttendeeRepository struct {
	mock.Mock
}

func (m *MockAttendeeRepository) Create(ctx context.Context, attendee *models.Attendee) error {
	args := m.Called(ctx, attendee)
	return args.Error(0)
}

func (m *MockAttendeeRepository) ListByParent(ctx context.Context, parentUID string) ([]*models.Attendee, error) {
	args := m.Called(ctx, parentUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attendee), args.Error(1)
}

func (m *MockAttendeeRepository) SoftDelete(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

// MockRoomRepository implements RoomRepository for testing
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Get(ctx context.Context, id string) (*models.CandidateRoom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CandidateRoom), args.Error(1)
}

func (m *MockRoomRepository) ListCandidates(ctx context.Context, filter models.RoomFilter) ([]models.CandidateRoom, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CandidateRoom), args.Error(1)
}

func (m *MockRoomRepository) Upsert(ctx context.Context, room models.CandidateRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}
