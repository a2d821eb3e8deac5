// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
)

// ConsentHandler answers the links sent to a conflicting participant.
type ConsentHandler struct {
	meetingRequestService *service.MeetingRequestService
	// redirectURL, when set, is where the browser lands after answering.
	redirectURL string
}

func NewConsentHandler(meetingRequestService *service.MeetingRequestService, redirectURL string) *ConsentHandler {
	return &ConsentHandler{
		meetingRequestService: meetingRequestService,
		redirectURL:           redirectURL,
	}
}

// Accept handles GET /consent/accept.
func (h *ConsentHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, models.ConsentAccept)
}

// Decline handles GET /consent/decline.
func (h *ConsentHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, models.ConsentDecline)
}

func (h *ConsentHandler) answer(w http.ResponseWriter, r *http.Request, action models.ConsentAction) {
	ctx := logging.AppendCtx(r.Context(), slog.String("consent_action", string(action)))

	token := r.URL.Query().Get(constants.ConsentTokenParam)
	if token == "" {
		writeError(w, domain.NewValidationError("consent token is required", domain.ErrInvalidToken))
		return
	}

	req, err := h.meetingRequestService.AnswerConsent(ctx, token, action)
	if err != nil {
		logHandlerError(ctx, err)
		writeError(w, err)
		return
	}

	if h.redirectURL != "" {
		http.Redirect(w, r, h.redirectURL, http.StatusFound)
		return
	}

	writeText(w, http.StatusOK, consentMessage(req.Status))
}

func consentMessage(status models.MeetingRequestStatus) string {
	switch status {
	case models.StatusAccepted:
		return "Thank you. The meeting has been booked.\n"
	case models.StatusDeclined:
		return "Thank you. The organizer has been told you cannot attend.\n"
	default:
		return "This meeting request no longer waits for your answer.\n"
	}
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks []func() bool
}

// NewHealthHandler creates a HealthHandler that is ready when every check passes.
func NewHealthHandler(checks ...func() bool) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Livez always answers while the process runs. As this endpoint is expected
// to be used as a Kubernetes liveness check, the service must self-terminate
// on non-recoverable errors.
func (h *HealthHandler) Livez(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "OK\n")
}

// Readyz checks if the service is able to take inbound requests.
func (h *HealthHandler) Readyz(w http.ResponseWriter, _ *http.Request) {
	for _, ready := range h.checks {
		if !ready() {
			writeError(w, domain.NewUnavailableError("service unavailable", domain.ErrServiceUnavailable))
			return
		}
	}
	writeText(w, http.StatusOK, "OK\n")
}

// HTTPStatus maps an error to the status code of its type.
func HTTPStatus(err error) int {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeConflict:
		return http.StatusConflict
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	message := http.StatusText(status)
	var domainErr *domain.DomainError
	if status != http.StatusInternalServerError && errors.As(err, &domainErr) {
		message = domainErr.Message
	}
	writeText(w, status, message+"\n")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set(constants.ContentTypeHeader, "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
