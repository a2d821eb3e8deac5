// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/interval"
)

// ProbePadding widens every availability probe on both sides so busy blocks
// touching the window boundaries are seen.
const ProbePadding = 5 * time.Minute

// DefaultProviderTimeout bounds one availability fan-out.
const DefaultProviderTimeout = 10 * time.Second

// BusyCollector queries the busy intervals of several identities
// concurrently and merges them into one BusySet.
type BusyCollector struct {
	provider domain.FreeBusyProvider
	pool     *concurrent.WorkerPool
	timeout  time.Duration
}

// NewBusyCollector creates a collector issuing at most workers concurrent
// provider calls. A zero timeout uses DefaultProviderTimeout.
func NewBusyCollector(provider domain.FreeBusyProvider, workers int, timeout time.Duration) *BusyCollector {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &BusyCollector{
		provider: provider,
		pool:     concurrent.NewWorkerPool(workers),
		timeout:  timeout,
	}
}

// Collect fetches the busy intervals of every identity within window and
// merges them. Any failing call fails the whole collection; there is no
// partial result. Exceeding the timeout yields ErrProviderTimeout.
func (c *BusyCollector) Collect(ctx context.Context, identities []string, window interval.TimeInterval, timezone string) (interval.BusySet, error) {
	ids := uniqueIdentities(identities)
	if len(ids) == 0 {
		return interval.BusySet{}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	groups, err := concurrent.Map(callCtx, c.pool, ids, func(ctx context.Context, id string) ([]interval.TimeInterval, error) {
		busy, err := c.provider.GetBusy(ctx, id, window.Start, window.End, timezone)
		if err != nil {
			return nil, err
		}
		return busy, nil
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			slog.WarnContext(ctx, "free/busy fan-out timed out",
				"identities", len(ids),
				"timeout", c.timeout.String(),
			)
			return nil, domain.NewUnavailableError("calendar availability query timed out", domain.ErrProviderTimeout)
		}
		slog.ErrorContext(ctx, "free/busy fan-out failed", logging.ErrKey, err, "identities", len(ids))
		return nil, err
	}

	return interval.Merge(groups...), nil
}

func uniqueIdentities(identities []string) []string {
	ids := make([]string, 0, len(identities))
	for _, id := range identities {
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// probeWindow pads the bounds of a search window by ProbePadding on each side.
func probeWindow(bounds interval.TimeInterval) interval.TimeInterval {
	return interval.TimeInterval{
		Start: bounds.Start.Add(-ProbePadding),
		End:   bounds.End.Add(ProbePadding),
	}
}
