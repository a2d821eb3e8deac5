// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
)

const tracerName = "github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/calendar"

// StartSpan opens the client span calendar.<provider>.<operation>.
func StartSpan(ctx context.Context, provider, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("calendar.provider", provider),
		attribute.String("calendar.operation", operation),
	)
	return otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("calendar.%s.%s", provider, operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err, if any, and closes the span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ProviderError maps a failed backend call onto a domain error naming the
// provider. status is the HTTP status of the backend answer, or 0 when the
// call never got one.
func ProviderError(provider, operation string, status int, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewUnavailableError(
			fmt.Sprintf("%s calendar provider timed out during %s", provider, operation),
			domain.ErrProviderTimeout, err)
	}

	switch status {
	case http.StatusNotFound, http.StatusGone:
		return domain.NewNotFoundError(
			fmt.Sprintf("%s calendar provider: identity or event not found during %s", provider, operation),
			domain.ErrProviderNotFound, err)
	default:
		return domain.NewUnavailableError(
			fmt.Sprintf("%s calendar provider failed during %s", provider, operation),
			domain.ErrProviderUnavailable, err)
	}
}

// IsNotFound reports whether an HTTP status means the identity or event is gone.
func IsNotFound(status int) bool {
	return status == http.StatusNotFound || status == http.StatusGone
}
