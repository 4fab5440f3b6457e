package common

import "errors"

var (
	// Transport-level errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")

	// Token lifecycle errors.
	ErrRenewalTokenMissing = errors.New("renewal token missing")
	ErrRenewalFailed       = errors.New("session renewal failed")
)
