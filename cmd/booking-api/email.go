// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/email"
)

// setupEmailService returns the SMTP notifier, or a no-op one when email is disabled.
func setupEmailService(env environment) (domain.Notifier, error) {
	if !env.Email.Enabled {
		slog.Info("email notifications disabled")
		return email.NewNoOpService(), nil
	}

	smtpService, err := email.NewSMTPService(email.SMTPConfig{
		Host:     env.Email.Host,
		Port:     env.Email.Port,
		From:     env.Email.From,
		FromName: env.Email.FromName,
		Username: env.Email.Username,
		Password: env.Email.Password,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("email notifications enabled",
		"smtp_host", env.Email.Host,
		"smtp_port", env.Email.Port,
		"from", env.Email.From,
		"has_credentials", env.Email.Username != "")
	return smtpService, nil
}
