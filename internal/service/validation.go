// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/scheduler"
)

func invalid(format string, args ...any) error {
	return domain.NewValidationError(fmt.Sprintf(format, args...), domain.ErrValidationFailed)
}

// validateConditions checks the request conditions without calling any
// provider. The conditions must already be normalized.
func validateConditions(c models.Conditions) error {
	if len(c.Emails) < models.MinParticipants {
		return invalid("at least %d participant emails are required", models.MinParticipants)
	}
	seen := make(map[string]struct{}, len(c.Emails))
	for _, email := range c.Emails {
		if email == "" || !strings.Contains(email, "@") {
			return invalid("invalid participant email %q", email)
		}
		if _, dup := seen[email]; dup {
			return invalid("duplicate participant email %q", email)
		}
		seen[email] = struct{}{}
	}

	if err := scheduler.ValidateDuration(c.Duration()); err != nil {
		return err
	}

	window, err := c.Window()
	if err != nil {
		return domain.NewValidationError("invalid date range or timezone", domain.ErrValidationFailed, err)
	}
	if window.EndDate.Before(window.StartDate) {
		return invalid("start date %s is after end date %s", c.StartDate, c.EndDate)
	}
	if window.EndDate.Sub(window.StartDate) >= models.MaxDateRange {
		return invalid("date range from %s to %s exceeds the maximum of %d days",
			c.StartDate, c.EndDate, int(models.MaxDateRange.Hours()/24))
	}
	if c.TimeStart >= c.TimeEnd {
		return invalid("time start %s must be before time end %s", c.TimeStart, c.TimeEnd)
	}

	if !c.RoomType.Valid() {
		return invalid("unknown room type %q", c.RoomType)
	}
	if c.NeedsRoom() && c.BuildingID == "" {
		return invalid("a physical meeting requires a building id")
	}
	if err := c.Features.Validate(); err != nil {
		return domain.NewValidationError("invalid room features", domain.ErrValidationFailed, err)
	}

	return nil
}

// checkMembers resolves every email against the organization directory and
// returns the matching members in the order of emails. The admin account is
// not a member.
func checkMembers(ctx context.Context, directory domain.Directory, emails []string, adminAccount string) ([]models.DirectoryMember, error) {
	members, err := directory.ListMembers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "error listing directory members", logging.ErrKey, err)
		return nil, err
	}

	admin := strings.ToLower(adminAccount)
	byEmail := make(map[string]models.DirectoryMember, len(members))
	for _, member := range members {
		email := strings.ToLower(member.Email)
		if email == admin {
			continue
		}
		byEmail[email] = member
	}

	resolved := make([]models.DirectoryMember, 0, len(emails))
	var unknown []string
	for _, email := range emails {
		member, ok := byEmail[email]
		if !ok {
			unknown = append(unknown, email)
			continue
		}
		resolved = append(resolved, member)
	}

	if len(unknown) > 0 {
		slices.Sort(unknown)
		slog.WarnContext(ctx, "participants outside the organization", "emails", unknown)
		return nil, invalid("emails do not belong to the organization: %s", strings.Join(unknown, ", "))
	}
	return resolved, nil
}
