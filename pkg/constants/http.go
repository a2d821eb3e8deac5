// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// ContentTypeHeader is the header name for the content type
	ContentTypeHeader string = "Content-Type"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// HTTP routes served next to the NATS subscriptions.
const (
	LivezPath          = "/livez"
	ReadyzPath         = "/readyz"
	ConsentAcceptPath  = "/consent/accept"
	ConsentDeclinePath = "/consent/decline"

	// ConsentTokenParam is the query parameter carrying a consent token.
	ConsentTokenParam = "token"
)
