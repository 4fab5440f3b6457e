package tokenstore

import "sync"

// Volatile holds session-scoped navigation state: the single
// pending-navigation marker recording where the user was before being
// forced to authenticate. It lives only as long as the process.
type Volatile struct {
	mu      sync.Mutex
	pending string
}

func NewVolatile() *Volatile { return &Volatile{} }

// SetPendingPath records the path to return to after authentication.
// At most one marker exists; setting overwrites.
func (v *Volatile) SetPendingPath(path string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = path
}

// TakePendingPath returns the marker and clears it in one step, so it is
// consumed exactly once.
func (v *Volatile) TakePendingPath() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.pending
	v.pending = ""
	return p
}

// ClearPendingPath drops the marker. Called whenever the user is anywhere
// other than the auth views, so a stale marker cannot redirect a later
// fresh session.
func (v *Volatile) ClearPendingPath() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = ""
}
