// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

func pendingStoredRequest() *models.MeetingRequest {
	req := storedRequest(models.StatusPending)
	req.Consent = &models.ConsentRecord{
		Member:             models.Participant{Email: "b@x.com", Name: "Bob"},
		PlaceholderEventID: "hold-1",
		Slot: interval.TimeInterval{
			Start: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		},
		Attendees: []string{"a@x.com", "b@x.com"},
	}
	return req
}

func declineToken() models.ConsentToken {
	return models.ConsentToken{
		MeetingRequestUID:  requestUID,
		MemberEmail:        "b@x.com",
		Action:             models.ConsentDecline,
		PlaceholderEventID: "hold-1",
		ExpiresAt:          time.Now().Add(time.Hour),
	}
}

func expectDecline(m *handlerMocks) {
	m.codec.On("Decode", "tok").Return(declineToken(), nil)
	m.requests.On("GetWithRevision", mock.Anything, requestUID).Return(pendingStoredRequest(), uint64(4), nil)
	m.calendar.On("DeleteEvent", mock.Anything, "admin@x.com", "hold-1", true).Return(nil)
	m.requests.On("Update", mock.Anything, mock.Anything, uint64(4)).Return(nil)
	m.notifier.On("SendConsentDeclined", mock.Anything, mock.Anything).Return(nil)
	m.events.On("SendMeetingRequestEvent", mock.Anything, mock.Anything).Return(nil)
}

func TestConsentHandler(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		redirectURL  string
		decline      bool
		setupMocks   func(*handlerMocks)
		wantStatus   int
		wantBody     string
		wantLocation string
	}{
		{
			name:       "missing token",
			target:     "/consent/accept",
			setupMocks: func(m *handlerMocks) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "consent token is required\n",
		},
		{
			name:   "tampered token",
			target: "/consent/accept?token=tok",
			setupMocks: func(m *handlerMocks) {
				m.codec.On("Decode", "tok").Return(models.ConsentToken{}, domain.NewValidationError("consent token is not valid", domain.ErrInvalidToken))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "consent token is not valid\n",
		},
		{
			name:    "decline with plain text answer",
			target:  "/consent/decline?token=tok",
			decline: true,
			setupMocks: func(m *handlerMocks) {
				expectDecline(m)
			},
			wantStatus: http.StatusOK,
			wantBody:   "Thank you. The organizer has been told you cannot attend.\n",
		},
		{
			name:        "decline with redirect",
			target:      "/consent/decline?token=tok",
			redirectURL: "https://app.example.com/answered",
			decline:     true,
			setupMocks: func(m *handlerMocks) {
				expectDecline(m)
			},
			wantStatus:   http.StatusFound,
			wantLocation: "https://app.example.com/answered",
		},
		{
			name:    "answered twice",
			target:  "/consent/decline?token=tok",
			decline: true,
			setupMocks: func(m *handlerMocks) {
				m.codec.On("Decode", "tok").Return(declineToken(), nil)
				cancelled := storedRequest(models.StatusCancelled)
				cancelled.MarkDeleted(cancelled.UpdatedAt)
				m.requests.On("GetWithRevision", mock.Anything, requestUID).Return(cancelled, uint64(5), nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "This meeting request no longer waits for your answer.\n",
		},
		{
			name:    "request gone",
			target:  "/consent/decline?token=tok",
			decline: true,
			setupMocks: func(m *handlerMocks) {
				m.codec.On("Decode", "tok").Return(declineToken(), nil)
				m.requests.On("GetWithRevision", mock.Anything, requestUID).Return(nil, uint64(0), domain.NewNotFoundError("meeting request not found"))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:    "store failure",
			target:  "/consent/decline?token=tok",
			decline: true,
			setupMocks: func(m *handlerMocks) {
				m.codec.On("Decode", "tok").Return(declineToken(), nil)
				m.requests.On("GetWithRevision", mock.Anything, requestUID).Return(nil, uint64(0), errors.New("kv unavailable"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal Server Error\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meetingRequestService, _, m := setupServicesForTesting()
			tt.setupMocks(m)
			handler := NewConsentHandler(meetingRequestService, tt.redirectURL)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.decline {
				handler.Decline(rec, req)
			} else {
				handler.Accept(rec, req)
			}

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     []func() bool
		wantStatus int
	}{
		{name: "no checks", wantStatus: http.StatusOK},
		{name: "all ready", checks: []func() bool{func() bool { return true }, func() bool { return true }}, wantStatus: http.StatusOK},
		{name: "one not ready", checks: []func() bool{func() bool { return true }, func() bool { return false }}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.checks...)

			rec := httptest.NewRecorder()
			handler.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			live := httptest.NewRecorder()
			handler.Livez(live, httptest.NewRequest(http.MethodGet, "/livez", nil))
			assert.Equal(t, http.StatusOK, live.Code)
			assert.Equal(t, "OK\n", live.Body.String())
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("bad"), http.StatusBadRequest},
		{domain.ErrMeetingRequestNotFound, http.StatusNotFound},
		{domain.NewConflictError("stale", domain.ErrRevisionMismatch), http.StatusConflict},
		{domain.ErrProviderTimeout, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
