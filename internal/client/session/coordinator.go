// Package session owns the client-side authentication session: the
// observable state, the operations that mutate it, and the renewal
// protocol the API gateway falls back on when the access credential
// expires.
//
// The Coordinator is the single writer of session state. All operations
// are safe for concurrent use; consumers read via Snapshot or subscribe
// for change notifications.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jaycloud/jaycloud-go/internal/client/api"
	"github.com/jaycloud/jaycloud-go/internal/client/models"
	"github.com/jaycloud/jaycloud-go/internal/client/tokenstore"
	"github.com/jaycloud/jaycloud-go/internal/common"
	"github.com/jaycloud/jaycloud-go/internal/logging"
)

// Subscriber receives a snapshot after every state change. Notifications
// may arrive after the subscribing component stopped caring; subscribers
// must tolerate that.
type Subscriber func(Snapshot)

// Coordinator orchestrates sign-in, sign-out, account and password
// operations, and the silent renewal protocol.
type Coordinator struct {
	gw    *api.Gateway
	store tokenstore.Store
	log   logging.Logger

	mu           sync.Mutex
	state        State
	user         *models.User
	busyCount    int
	reauthorized bool
	expiresAt    time.Time
	subs         []Subscriber

	// restoreLatch makes the initial silent renewal run at most once per
	// process, no matter how many times the owning view mounts. Set
	// synchronously before any asynchronous work starts.
	restoreLatch atomic.Bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// NewCoordinator wires a Coordinator to the gateway and token store and
// registers itself as the gateway's renewer.
func NewCoordinator(gw *api.Gateway, store tokenstore.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		gw:    gw,
		store: store,
		log:   logging.NewNopLogger(),
		state: Unknown,
	}
	for _, o := range opts {
		o(c)
	}
	gw.SetRenewer(c)
	return c
}

// Subscribe registers a callback invoked after every state change.
func (c *Coordinator) Subscribe(s Subscriber) {
	c.mu.Lock()
	c.subs = append(c.subs, s)
	c.mu.Unlock()
}

// Snapshot returns a consistent copy of the observable state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	var user *models.User
	if c.user != nil {
		u := *c.user
		user = &u
	}
	return Snapshot{
		State:                   c.state,
		User:                    user,
		AuthRequestInProcessing: c.busyCount > 0,
		ReauthorizedAtLeastOnce: c.reauthorized,
		ExpiresAt:               c.expiresAt,
	}
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	subs := make([]Subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s(snap)
	}
}

// beginRequest marks an authentication-affecting request in flight and
// returns the matching release. The flag is a counter underneath, so
// nested acquisition (a renewal inside another session operation) cannot
// clear it early; it reads false again only once every acquirer released.
func (c *Coordinator) beginRequest() func() {
	c.mu.Lock()
	c.busyCount++
	c.mu.Unlock()
	c.notify()

	return func() {
		c.mu.Lock()
		c.busyCount--
		c.mu.Unlock()
		c.notify()
	}
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.notify()
}

// adoptIdentity installs fresh credentials and the identity record that
// came with them, moving the session to Authenticated.
func (c *Coordinator) adoptIdentity(ctx context.Context, user *models.User, pair api.TokenPair) {
	c.gw.SetAccessToken(pair.Access)
	if err := c.store.SetRenewalToken(ctx, pair.Renewal); err != nil {
		// the session still works for this page lifetime; only the next
		// restart loses silent renewal
		c.log.Error(ctx, "failed to persist renewal token", "error", err)
	}

	c.mu.Lock()
	c.user = user
	c.state = Authenticated
	c.expiresAt = tokenExpiry(pair.Access)
	c.mu.Unlock()
	c.notify()
}

// dropIdentity clears both credentials and moves to Unauthenticated.
func (c *Coordinator) dropIdentity(ctx context.Context) {
	c.gw.ClearAccessToken()
	if err := c.store.RemoveRenewalToken(ctx); err != nil {
		c.log.Error(ctx, "failed to remove renewal token", "error", err)
	}

	c.mu.Lock()
	c.user = nil
	c.state = Unauthenticated
	c.expiresAt = time.Time{}
	c.mu.Unlock()
	c.notify()
}

// SignIn authenticates with the given credentials. Expected failures are
// reported in the result, never as a panic or error.
func (c *Coordinator) SignIn(ctx context.Context, email, password string) models.AuthResult {
	release := c.beginRequest()
	defer release()

	c.setState(Authenticating)

	user, pair, err := c.gw.SignIn(ctx, email, password)
	if err != nil {
		c.log.Warn(ctx, "sign-in failed", "email", email, "error", err)
		c.setState(Unauthenticated)
		return models.Failure(failureMessage(err))
	}

	c.adoptIdentity(ctx, user, pair)
	c.log.Info(ctx, "signed in", "email", user.Email)
	return models.OK()
}

// CreateAccount registers a new user. The backend signs the new user in,
// so success leaves the session Authenticated.
func (c *Coordinator) CreateAccount(ctx context.Context, acc models.NewAccount) models.AuthResult {
	release := c.beginRequest()
	defer release()

	c.setState(Authenticating)

	user, pair, err := c.gw.CreateAccount(ctx, acc)
	if err != nil {
		c.log.Warn(ctx, "account creation failed", "email", acc.Email, "error", err)
		c.setState(Unauthenticated)
		return models.Failure(failureMessage(err))
	}

	c.adoptIdentity(ctx, user, pair)
	c.log.Info(ctx, "account created", "email", user.Email)
	return models.OK()
}

// SignOut ends the session. The local session becomes Unauthenticated
// regardless of the backend outcome; the return value reports whether the
// backend confirmed, so the caller can pick the next view.
func (c *Coordinator) SignOut(ctx context.Context) bool {
	release := c.beginRequest()
	defer release()

	c.setState(Authenticating)

	err := c.gw.SignOut(ctx)
	if err != nil {
		c.log.Warn(ctx, "backend sign-out failed", "error", err)
	}

	c.dropIdentity(ctx)
	return err == nil
}

// RestoreOnce runs the silent renewal exactly once per process and
// returns the restored identity, or nil when no session could be
// restored. Repeated calls return the current user without touching the
// network.
func (c *Coordinator) RestoreOnce(ctx context.Context) *models.User {
	if !c.restoreLatch.CompareAndSwap(false, true) {
		return c.Snapshot().User
	}

	release := c.beginRequest()
	defer release()

	c.setState(Authenticating)
	user := c.renew(ctx)

	c.mu.Lock()
	c.reauthorized = true
	c.mu.Unlock()
	c.notify()

	return user
}

// Renew implements api.Renewer for the gateway's 401 cascade. A nil
// return means fresh credentials are installed; otherwise the session is
// terminally signed out.
func (c *Coordinator) Renew(ctx context.Context) error {
	release := c.beginRequest()
	defer release()

	if user := c.renew(ctx); user == nil {
		return common.ErrRenewalFailed
	}
	return nil
}

// renew is the renewal protocol: no stored credential fails immediately
// without a network call; any backend rejection clears both credentials.
// It never reports an error, only a nil user.
func (c *Coordinator) renew(ctx context.Context) *models.User {
	token, err := c.store.RenewalToken(ctx)
	if err != nil {
		c.log.Error(ctx, "failed to read renewal token", "error", err)
		c.dropIdentity(ctx)
		return nil
	}
	if token == "" {
		c.log.Debug(ctx, "skipping renewal", "reason", common.ErrRenewalTokenMissing)
		c.setState(Unauthenticated)
		return nil
	}

	user, pair, err := c.gw.RenewToken(ctx, token)
	if err != nil {
		c.log.Info(ctx, "renewal rejected, signing out", "error", err)
		c.dropIdentity(ctx)
		return nil
	}

	c.adoptIdentity(ctx, user, pair)
	c.log.Info(ctx, "session renewed", "email", user.Email)
	return user
}

// UpdateProfile changes profile fields; the stored identity is replaced
// only on success. The session state is otherwise untouched.
func (c *Coordinator) UpdateProfile(ctx context.Context, update models.ProfileUpdate) models.AuthResult {
	release := c.beginRequest()
	defer release()

	user, err := c.gw.UpdateProfile(ctx, update)
	if err != nil {
		return models.Failure(failureMessage(err))
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()
	c.notify()
	return models.OK()
}

// UpdatePassword changes the account password. The identity record is not
// affected.
func (c *Coordinator) UpdatePassword(ctx context.Context, current, next string) models.AuthResult {
	release := c.beginRequest()
	defer release()

	if err := c.gw.UpdatePassword(ctx, current, next); err != nil {
		return models.Failure(failureMessage(err))
	}
	return models.OK()
}

// RequestPasswordReset starts a reset flow for the given email.
func (c *Coordinator) RequestPasswordReset(ctx context.Context, email string) models.AuthResult {
	release := c.beginRequest()
	defer release()

	if err := c.gw.RequestPasswordReset(ctx, email); err != nil {
		return models.Failure(failureMessage(err))
	}
	return models.OK()
}

// failureMessage converts an expected failure into the message surfaced
// to UI code. Transient network failures and auth failures deliberately
// share the same shape.
func failureMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, common.ErrUnavailable) {
		return "service unavailable, please try again"
	}
	return err.Error()
}

// tokenExpiry extracts the exp claim from the access credential without
// verifying the signature. Verification is the backend's job; the client
// only surfaces the timestamp.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
