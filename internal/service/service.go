// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"net/url"
	"strings"
	"time"
)

type Service interface {
	ServiceReady() bool
}

// DefaultConsentTTL is how long a consent link stays valid.
const DefaultConsentTTL = 72 * time.Hour

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// AdminAccount owns placeholder events and is hidden from the directory.
	AdminAccount string
	// PublicBaseURL is the origin consent links point at.
	PublicBaseURL string
	// ConsentTTL bounds the validity of consent links. Zero uses DefaultConsentTTL.
	ConsentTTL time.Duration
}

func (c ServiceConfig) consentTTL() time.Duration {
	if c.ConsentTTL <= 0 {
		return DefaultConsentTTL
	}
	return c.ConsentTTL
}

// consentLink builds the link answering a consent request with action.
func (c ServiceConfig) consentLink(action, token string) string {
	base := strings.TrimRight(c.PublicBaseURL, "/")
	return base + "/consent/" + action + "?token=" + url.QueryEscape(token)
}
