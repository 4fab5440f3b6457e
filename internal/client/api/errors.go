package api

import (
	"fmt"
	"net/http"

	"github.com/jaycloud/jaycloud-go/internal/common"
)

// Error is an HTTP-level failure reported by the backend: a response was
// received and carried a non-2xx status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// Unwrap maps authorization statuses onto the shared sentinel so callers
// can use errors.Is(err, common.ErrUnauthorized).
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrUnauthorized
	default:
		return nil
	}
}
