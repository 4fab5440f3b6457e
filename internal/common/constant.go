// Package common contains shared constants and sentinel errors used across
// JayCloud client components.
package common

// Wire header names used by the JayCloud backend.
const (
	// AccessTokenHeaderName carries a freshly issued access token on
	// sign-in, account-creation, and renewal responses.
	AccessTokenHeaderName = "x-acc-token"

	// RenewalTokenHeaderName carries a freshly issued renewal token
	// alongside AccessTokenHeaderName.
	RenewalTokenHeaderName = "x-ref-token"

	// RequestIDHeaderName identifies an individual outbound request.
	RequestIDHeaderName = "X-Request-Id"
)

// RenewalTokenStorageKey is the single durable-storage key under which the
// renewal token is persisted across restarts.
const RenewalTokenStorageKey = "renewal_token"

// SSOQueryParam is the query parameter that marks a sign-in as initiated
// by an external sibling service.
const SSOQueryParam = "sso"
