// Package tokenstore persists the long-lived renewal credential across
// restarts and keeps session-scoped navigation state in memory.
//
// The access credential is deliberately NOT handled here: it lives only in
// process memory for the lifetime of the application (see the api package).
package tokenstore

import "context"

// Store is the durable home of the renewal credential. All operations are
// idempotent: setting twice overwrites, removing an absent token is a no-op.
type Store interface {
	// SetRenewalToken persists the token under the fixed storage key,
	// overwriting any previous value.
	SetRenewalToken(ctx context.Context, token string) error

	// RenewalToken returns the stored token, or "" when absent.
	RenewalToken(ctx context.Context) (string, error)

	// RemoveRenewalToken deletes the stored token. No-op when absent.
	RemoveRenewalToken(ctx context.Context) error
}
