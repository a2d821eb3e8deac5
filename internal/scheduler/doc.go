// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package scheduler is the meeting slot negotiation engine. It reads
// availability through a domain.FreeBusyProvider and rooms through a
// domain.RoomRepository, and never writes anything.
package scheduler

import "go.opentelemetry.io/otel"

const tracerName = "github.com/linuxfoundation/lfx-v2-room-booking-service/internal/scheduler"

var tracer = otel.Tracer(tracerName)
