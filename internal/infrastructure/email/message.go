// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
)

const (
	mixedBoundary       = "===============MIXED0123456789=="
	alternativeBoundary = "===============1234567890123456789=="
)

// buildEmailMessage builds the complete email message with headers and
// multipart content. With an attachment the alternative part is nested in a
// multipart/mixed envelope.
func buildEmailMessage(recipient, subject, htmlContent, textContent string, attachment *domain.EmailAttachment, config SMTPConfig) string {
	var message strings.Builder

	// Email headers
	message.WriteString(fmt.Sprintf("From: %s\r\n", config.FromHeader()))
	message.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")

	if attachment != nil {
		message.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", mixedBoundary))
		message.WriteString("\r\n")
		message.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
	}

	writeAlternative(&message, htmlContent, textContent)

	if attachment != nil {
		message.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
		message.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", attachment.ContentType, attachment.Filename))
		message.WriteString("Content-Transfer-Encoding: base64\r\n")
		message.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", attachment.Filename))
		message.WriteString("\r\n")
		message.WriteString(wrapBase64(attachment.Content))
		message.WriteString("\r\n")
		message.WriteString(fmt.Sprintf("--%s--\r\n", mixedBoundary))
	}

	return message.String()
}

func writeAlternative(message *strings.Builder, htmlContent, textContent string) {
	message.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", alternativeBoundary))
	message.WriteString("\r\n")

	// Plain text part
	message.WriteString(fmt.Sprintf("--%s\r\n", alternativeBoundary))
	message.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	message.WriteString("\r\n")
	message.WriteString(textContent)
	message.WriteString("\r\n")

	// HTML part
	message.WriteString(fmt.Sprintf("--%s\r\n", alternativeBoundary))
	message.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	message.WriteString("\r\n")
	message.WriteString(htmlContent)
	message.WriteString("\r\n")

	message.WriteString(fmt.Sprintf("--%s--\r\n", alternativeBoundary))
}

// wrapBase64 splits encoded content into 76 character lines.
func wrapBase64(content string) string {
	const lineLength = 76
	var b strings.Builder
	for len(content) > lineLength {
		b.WriteString(content[:lineLength])
		b.WriteString("\r\n")
		content = content[lineLength:]
	}
	b.WriteString(content)
	return b.String()
}

// sendEmailMessage sends a pre-built email message via SMTP
func sendEmailMessage(recipient, message string, config SMTPConfig) error {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	err := smtp.SendMail(addr, auth, config.From, []string{recipient}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
