// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrKeyConstant(t *testing.T) {
	assert.Equal(t, "error", ErrKey)
}

func TestAppendCtx(t *testing.T) {
	ctx := AppendCtx(context.TODO(), slog.String("key1", "value1"))
	require.NotNil(t, ctx)

	attrs, ok := ctx.Value(slogFields).([]slog.Attr)
	require.True(t, ok, "expected slog attributes in context")
	require.Len(t, attrs, 1)
	assert.Equal(t, "key1", attrs[0].Key)
	assert.Equal(t, "value1", attrs[0].Value.String())
}

func TestAppendCtx_WithParent(t *testing.T) {
	parentCtx := AppendCtx(context.Background(), slog.String("parent_key", "parent_value"))
	childCtx := AppendCtx(parentCtx, slog.String("child_key", "child_value"))

	attrs, ok := childCtx.Value(slogFields).([]slog.Attr)
	require.True(t, ok)
	require.Len(t, attrs, 2)
	assert.Equal(t, "parent_key", attrs[0].Key)
	assert.Equal(t, "child_key", attrs[1].Key)

	parentAttrs, _ := parentCtx.Value(slogFields).([]slog.Attr)
	assert.Len(t, parentAttrs, 1, "parent context must not see child attributes")
}

func TestAppendCtx_SiblingsDoNotShareAttributes(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	parent = AppendCtx(parent, slog.String("b", "2"))

	left := AppendCtx(parent, slog.String("left", "x"))
	right := AppendCtx(parent, slog.String("right", "y"))

	leftAttrs := left.Value(slogFields).([]slog.Attr)
	rightAttrs := right.Value(slogFields).([]slog.Attr)

	assert.Equal(t, "left", leftAttrs[2].Key)
	assert.Equal(t, "right", rightAttrs[2].Key)
}

func TestContextHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := AppendCtx(context.Background(), slog.String("meeting_request_id", "mr-1"))
	logger.InfoContext(ctx, "test message", "record_key", "record_value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "test message", record["msg"])
	assert.Equal(t, "mr-1", record["meeting_request_id"])
	assert.Equal(t, "record_value", record["record_key"])
}

func TestContextHandler_WithAttrsKeepsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, nil)).With("component", "scheduler")

	ctx := AppendCtx(context.Background(), slog.String("subject", "lfx.booking-api.meeting_requests.create"))
	logger.InfoContext(ctx, "with attrs")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "scheduler", record["component"])
	assert.Equal(t, "lfx.booking-api.meeting_requests.create", record["subject"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw      string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"unknown", slog.LevelDebug},
		{"", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.raw))
		})
	}
}

func TestInitStructureLogConfig_WithAddSource(t *testing.T) {
	testCases := []string{"true", "t", "1", "false", ""}

	originalAddSource := os.Getenv("LOG_ADD_SOURCE")
	defer os.Setenv("LOG_ADD_SOURCE", originalAddSource)

	for _, addSource := range testCases {
		t.Run("add_source="+addSource, func(t *testing.T) {
			os.Setenv("LOG_ADD_SOURCE", addSource)
			assert.NotNil(t, InitStructureLogConfig())
		})
	}
}

func TestPriorityCritical(t *testing.T) {
	attr := PriorityCritical()
	assert.Equal(t, "priority", attr.Key)
	assert.Equal(t, "critical", attr.Value.String())
}
