// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// mockMessage implements the Message interface for testing
type mockMessage struct {
	subject   string
	data      []byte
	responded []byte
}

func (m *mockMessage) Subject() string {
	return m.subject
}

func (m *mockMessage) Data() []byte {
	return m.data
}

func (m *mockMessage) Respond(data []byte) error {
	m.responded = data
	return nil
}

func (m *mockMessage) HasReply() bool {
	return true
}

// mockMessageHandler implements the MessageHandler interface for testing
type mockMessageHandler struct {
	handledMessages []Message
}

func (m *mockMessageHandler) HandleMessage(ctx context.Context, msg Message) {
	m.handledMessages = append(m.handledMessages, msg)
	_ = msg.Respond([]byte("ok"))
}

func (m *mockMessageHandler) HandlerReady() bool {
	return true
}

// mockEventSender implements the BookingEventSender interface for testing
type mockEventSender struct {
	events []models.MeetingRequestEventMessage
}

func (m *mockEventSender) SendMeetingRequestEvent(ctx context.Context, data models.MeetingRequestEventMessage) error {
	m.events = append(m.events, data)
	return nil
}

func TestMessageInterfaces(t *testing.T) {
	var _ Message = (*mockMessage)(nil)
	var _ MessageHandler = (*mockMessageHandler)(nil)
	var _ BookingEventSender = (*mockEventSender)(nil)

	handler := &mockMessageHandler{}
	msg := &mockMessage{subject: models.MeetingRequestGetSubject, data: []byte(`{"uid":"r-1"}`)}

	handler.HandleMessage(context.Background(), msg)

	assert.Len(t, handler.handledMessages, 1)
	assert.Equal(t, models.MeetingRequestGetSubject, handler.handledMessages[0].Subject())
	assert.Equal(t, []byte("ok"), msg.responded)
	assert.True(t, handler.HandlerReady())
}

func TestBookingEventSender(t *testing.T) {
	sender := &mockEventSender{}

	err := sender.SendMeetingRequestEvent(context.Background(), models.MeetingRequestEventMessage{
		MeetingRequestUID: "r-1",
		Status:            models.StatusAccepted,
	})

	assert.NoError(t, err)
	assert.Len(t, sender.events, 1)
	assert.Equal(t, models.StatusAccepted, sender.events[0].Status)
}
