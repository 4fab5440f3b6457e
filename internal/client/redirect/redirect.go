// Package redirect decides where the user lands after a sign-in or
// sign-out, including bounces back to external sibling services that
// initiated the auth flow.
package redirect

import (
	"context"
	"net/url"
	"sync"

	"github.com/jaycloud/jaycloud-go/internal/client/tokenstore"
	"github.com/jaycloud/jaycloud-go/internal/common"
	"github.com/jaycloud/jaycloud-go/internal/logging"
)

// In-app routes.
const (
	RouteHome      = "/"
	RouteSignIn    = "/login"
	RouteRegister  = "/register"
	RouteProfile   = "/profile"
	RouteServices  = "/services"
	RouteSSOFailed = "/sso-failed"
)

// Navigator performs navigations on behalf of the resolver. NavigateTo is
// an in-app route change; OpenExternal is a full browser navigation that
// leaves the application.
type Navigator interface {
	NavigateTo(route string)
	OpenExternal(url string)
}

// URLResolver asks the backend for redirect destinations. Satisfied by
// *api.Gateway.
type URLResolver interface {
	SSOReturnURL(ctx context.Context) (string, error)
	SSOLogoutReturnURL(ctx context.Context) (string, error)
}

// HasSSOMarker reports whether the query carries the marker indicating the
// auth flow was initiated by an external service.
func HasSSOMarker(q url.Values) bool {
	return q.Get(common.SSOQueryParam) != ""
}

// Resolver performs the post-sign-in and post-sign-out navigation, each at
// most once per event. A failure to resolve a destination never surfaces
// as an error; the user always lands on a deterministic fallback view.
type Resolver struct {
	api URLResolver
	nav Navigator
	vol *tokenstore.Volatile
	log logging.Logger

	mu sync.Mutex
	// signInDone/signOutDone make each direction idempotent per event.
	// Sign-in and sign-out events alternate, so each handler re-arms the
	// other.
	signInDone  bool
	signOutDone bool
}

func NewResolver(api URLResolver, nav Navigator, vol *tokenstore.Volatile, log logging.Logger) *Resolver {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Resolver{api: api, nav: nav, vol: vol, log: log}
}

// AfterSignIn navigates following a successful sign-in. With an SSO marker
// the backend resolves the external return URL tied to the fresh
// credential pair; without one, the pending-navigation marker wins over
// the home view.
func (r *Resolver) AfterSignIn(ctx context.Context, ssoMarker bool) {
	r.mu.Lock()
	if r.signInDone {
		r.mu.Unlock()
		return
	}
	r.signInDone = true
	r.signOutDone = false
	r.mu.Unlock()

	if ssoMarker {
		target, err := r.api.SSOReturnURL(ctx)
		if err != nil || target == "" {
			r.log.Warn(ctx, "sso return url unresolved", "error", err)
			r.nav.NavigateTo(RouteSSOFailed)
			return
		}
		r.nav.OpenExternal(target)
		return
	}

	if pending := r.vol.TakePendingPath(); pending != "" {
		r.nav.NavigateTo(pending)
		return
	}
	r.nav.NavigateTo(RouteHome)
}

// AfterSignOut navigates following a sign-out. The backend resolves the
// originating service from session data retained server-side, so this is
// attempted even though the client credentials are already cleared.
func (r *Resolver) AfterSignOut(ctx context.Context) {
	r.mu.Lock()
	if r.signOutDone {
		r.mu.Unlock()
		return
	}
	r.signOutDone = true
	r.signInDone = false
	r.mu.Unlock()

	target, err := r.api.SSOLogoutReturnURL(ctx)
	if err != nil || target == "" {
		if err != nil {
			r.log.Warn(ctx, "sso logout return url unresolved", "error", err)
		}
		r.nav.NavigateTo(RouteSignIn)
		return
	}
	r.nav.OpenExternal(target)
}

// MarkForcedSignIn records the route the user was on when an authorization
// failure forced them to the sign-in view, then navigates there. The
// session ended without a sign-out event, so the sign-in latch is re-armed
// here for the login that follows.
func (r *Resolver) MarkForcedSignIn(currentRoute string) {
	r.mu.Lock()
	r.signInDone = false
	r.mu.Unlock()

	r.vol.SetPendingPath(currentRoute)
	r.nav.NavigateTo(RouteSignIn)
}

// OnRouteChange keeps the pending marker honest: it survives only while
// the user sits on the auth views.
func (r *Resolver) OnRouteChange(route string) {
	if route != RouteSignIn && route != RouteRegister {
		r.vol.ClearPendingPath()
	}
}
