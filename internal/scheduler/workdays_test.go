// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkingDays(t *testing.T) {
	tests := []struct {
		name     string
		rule     string
		expected []time.Weekday
		wantErr  bool
	}{
		{
			name:     "default rule",
			rule:     DefaultWorkingDaysRule,
			expected: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		},
		{
			name:     "sunday to thursday week",
			rule:     "FREQ=WEEKLY;BYDAY=SU,MO,TU,WE,TH",
			expected: []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday},
		},
		{
			name:     "daily rule means every day",
			rule:     "FREQ=DAILY",
			expected: []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
		},
		{
			name:    "malformed rule",
			rule:    "FREQ=SOMETIMES",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseWorkingDays(tt.rule)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, w.Days())
		})
	}
}

func TestDefaultWorkingDays(t *testing.T) {
	parsed, err := ParseWorkingDays(DefaultWorkingDaysRule)
	require.NoError(t, err)
	assert.Equal(t, parsed, DefaultWorkingDays())

	w := DefaultWorkingDays()
	assert.True(t, w.IsWorkingDay(day(4, 9, 0)))
	assert.True(t, w.IsWorkingDay(day(8, 23, 55)))
	assert.False(t, w.IsWorkingDay(day(9, 9, 0)))
	assert.False(t, w.IsWorkingDay(day(10, 9, 0)))
}

func TestWorkingDays_UsesLocation(t *testing.T) {
	// Saturday 02:00 UTC is still Friday in New York
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	saturdayUTC := day(9, 2, 0)
	assert.False(t, DefaultWorkingDays().IsWorkingDay(saturdayUTC))
	assert.True(t, DefaultWorkingDays().IsWorkingDay(saturdayUTC.In(loc)))
}
