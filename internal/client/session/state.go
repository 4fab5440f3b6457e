package session

import (
	"time"

	"github.com/jaycloud/jaycloud-go/internal/client/models"
)

// State is the coarse authentication state of the client.
type State int

const (
	// Unknown: nothing established yet; the initial silent renewal has not
	// settled.
	Unknown State = iota

	// Authenticating: a sign-in, sign-out, or renewal is in flight.
	Authenticating

	// Authenticated: a user identity is held and the access credential is
	// believed valid.
	Authenticated

	// Unauthenticated: confirmed signed out.
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// Snapshot is a consistent read of the observable session state. Views read
// snapshots; only the Coordinator writes.
type Snapshot struct {
	State State

	// User is non-nil only following a successful sign-in, account
	// creation, profile update, or renewal.
	User *models.User

	// AuthRequestInProcessing is true while any authentication-affecting
	// request is in flight. UI uses it to disable forms and show spinners.
	AuthRequestInProcessing bool

	// ReauthorizedAtLeastOnce records that the initial silent renewal has
	// been attempted since process start. Monotonic: set once, never reset.
	// Views use it to tell "still loading" from "confirmed logged out".
	ReauthorizedAtLeastOnce bool

	// ExpiresAt is the expiry of the current access credential, taken from
	// its (unverified) JWT claims. Zero when no credential is held or the
	// credential is not a parsable JWT.
	ExpiresAt time.Time
}

// SignedIn reports whether a user identity is currently held.
func (s Snapshot) SignedIn() bool { return s.User != nil }
