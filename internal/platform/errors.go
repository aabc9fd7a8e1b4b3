// Package platform implements the contact-center platform client: OAuth
// token caching, webhook signature verification, the outbound message relay,
// and the inbound webhook processor.
package platform

import "errors"

var (
	// ErrAuthenticationFailed indicates the token endpoint was unreachable
	// or answered non-2xx. Not retried here; the caller decides.
	ErrAuthenticationFailed = errors.New("platform authentication failed")
	// ErrMalformedTokenResponse indicates a 2xx token response with a
	// missing or empty access_token.
	ErrMalformedTokenResponse = errors.New("malformed token response")
	// ErrUnauthorized indicates webhook signature verification failed.
	ErrUnauthorized = errors.New("webhook signature verification failed")
	// ErrRelayFailed indicates the platform rejected an outbound message.
	ErrRelayFailed = errors.New("platform relay failed")
)
