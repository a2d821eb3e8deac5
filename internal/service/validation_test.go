// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

func TestValidateConditions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *models.Conditions)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *models.Conditions) {}},
		{name: "thirteen day range", mutate: func(c *models.Conditions) { c.EndDate = "2026-03-15" }},
		{
			name: "physical with building",
			mutate: func(c *models.Conditions) {
				c.RoomType = models.RoomTypePhysical
				c.BuildingID = "hq"
				c.Features = models.Features{models.FeatureChairs: 4}
			},
		},
		{name: "fourteen day range", mutate: func(c *models.Conditions) { c.EndDate = "2026-03-16" }, wantErr: true},
		{name: "email without domain", mutate: func(c *models.Conditions) { c.Emails = []string{"a@x.com", "bob"} }, wantErr: true},
		{name: "empty email", mutate: func(c *models.Conditions) { c.Emails = []string{"a@x.com", ""} }, wantErr: true},
		{name: "time end before start", mutate: func(c *models.Conditions) { c.TimeEnd = c.TimeStart - 5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conditions := testConditions()
			tt.mutate(&conditions)

			err := validateConditions(conditions)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckMembers(t *testing.T) {
	t.Run("resolves in request order", func(t *testing.T) {
		dir := &mocks.MockCalendarProvider{}
		dir.On("ListMembers", mock.Anything).Return(directory(), nil)

		members, err := checkMembers(context.Background(), dir, []string{"b@x.com", "a@x.com"}, adminAccount)
		require.NoError(t, err)

		require.Len(t, members, 2)
		assert.Equal(t, "Bob", members[0].FullName)
		assert.Equal(t, "Alice", members[1].FullName)
	})

	t.Run("reports every unknown email sorted", func(t *testing.T) {
		dir := &mocks.MockCalendarProvider{}
		dir.On("ListMembers", mock.Anything).Return(directory(), nil)

		_, err := checkMembers(context.Background(), dir, []string{"z@x.com", "a@x.com", "m@x.com"}, adminAccount)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "m@x.com, z@x.com")
	})

	t.Run("directory failure", func(t *testing.T) {
		dir := &mocks.MockCalendarProvider{}
		dir.On("ListMembers", mock.Anything).Return(nil, errors.New("directory down"))

		_, err := checkMembers(context.Background(), dir, []string{"a@x.com", "b@x.com"}, adminAccount)
		assert.EqualError(t, err, "directory down")
	})
}

func TestConsentLink(t *testing.T) {
	config := ServiceConfig{PublicBaseURL: "https://booking.example.com/"}
	assert.Equal(t, "https://booking.example.com/consent/decline?token=a%2Bb%3D", config.consentLink("decline", "a+b="))
	assert.Equal(t, DefaultConsentTTL, config.consentTTL())
}
