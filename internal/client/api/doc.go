// Package api is the single chokepoint for HTTP traffic between the
// JayCloud client and the backend.
//
// # Overview
//
// The package provides:
//  1. A Gateway that owns the in-memory access credential and pushes every
//     outbound request through an ordered chain of request hooks (bearer
//     attachment, JSON negotiation, request IDs) and every failure through
//     an ordered chain of error hooks.
//  2. A renew-and-replay error hook: a 401 attributable to an expired
//     access token triggers exactly one renewal via the registered Renewer,
//     then replays the original call once with the refreshed credential.
//     A single-slot guard keeps concurrent failure cascades from stacking
//     renewals.
//  3. Typed operations covering the JayCloud contract: sign-in, account
//     creation, sign-out, token renewal, profile and password management,
//     the services directory, and SSO redirect resolution.
//
// # Error Handling
//
// Backend failures surface as *Error carrying the HTTP status and message;
// 401/403 unwrap to common.ErrUnauthorized so callers can match with
// errors.Is. Transport-level failures (no response) wrap
// common.ErrUnavailable and never trigger renewal.
package api
