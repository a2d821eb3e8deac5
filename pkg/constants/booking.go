// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Calendar provider defaults
const (
	// DefaultProviderTimeout bounds a single calendar provider call.
	DefaultProviderTimeout = 10 * time.Second

	// FreeBusyWorkers is the number of concurrent free/busy queries of one search.
	FreeBusyWorkers = 8
)
