package redirect

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/jaycloud/jaycloud-go/internal/client/tokenstore"
	"github.com/stretchr/testify/require"
)

/*************
 * Fakes
 *************/

type fakeAPI struct {
	returnURL   string
	returnErr   error
	returnCalls int
	logoutURL   string
	logoutErr   error
	logoutCalls int
}

func (f *fakeAPI) SSOReturnURL(ctx context.Context) (string, error) {
	f.returnCalls++
	return f.returnURL, f.returnErr
}

func (f *fakeAPI) SSOLogoutReturnURL(ctx context.Context) (string, error) {
	f.logoutCalls++
	return f.logoutURL, f.logoutErr
}

type recordingNav struct {
	routes    []string
	externals []string
}

func (n *recordingNav) NavigateTo(route string) { n.routes = append(n.routes, route) }
func (n *recordingNav) OpenExternal(u string)   { n.externals = append(n.externals, u) }

func newResolver(api *fakeAPI) (*Resolver, *recordingNav, *tokenstore.Volatile) {
	nav := &recordingNav{}
	vol := tokenstore.NewVolatile()
	return NewResolver(api, nav, vol, nil), nav, vol
}

/*************
 * Post-sign-in
 *************/

func TestAfterSignIn_SSOMarker_FullNavigationToExactURL(t *testing.T) {
	api := &fakeAPI{returnURL: "https://service.example/app"}
	r, nav, _ := newResolver(api)

	r.AfterSignIn(context.Background(), true)

	require.Equal(t, []string{"https://service.example/app"}, nav.externals)
	require.Empty(t, nav.routes, "no in-app route change on an SSO bounce")
}

func TestAfterSignIn_SSOResolutionFails_FallsBackToSSOFailedView(t *testing.T) {
	for name, api := range map[string]*fakeAPI{
		"backend error": {returnErr: errors.New("boom")},
		"no url":        {},
	} {
		r, nav, _ := newResolver(api)
		r.AfterSignIn(context.Background(), true)
		require.Equal(t, []string{RouteSSOFailed}, nav.routes, name)
		require.Empty(t, nav.externals, name)
	}
}

func TestAfterSignIn_PendingMarkerWinsAndIsConsumed(t *testing.T) {
	api := &fakeAPI{}
	r, nav, vol := newResolver(api)
	vol.SetPendingPath("/profile")

	r.AfterSignIn(context.Background(), false)

	require.Equal(t, []string{"/profile"}, nav.routes)
	require.Equal(t, "", vol.TakePendingPath(), "marker must be removed after use")
	require.Zero(t, api.returnCalls, "no backend call without an SSO marker")
}

func TestAfterSignIn_DefaultsToHome(t *testing.T) {
	r, nav, _ := newResolver(&fakeAPI{})

	r.AfterSignIn(context.Background(), false)

	require.Equal(t, []string{RouteHome}, nav.routes)
}

func TestAfterSignIn_FiresOncePerEvent(t *testing.T) {
	api := &fakeAPI{returnURL: "https://service.example/app"}
	r, nav, _ := newResolver(api)

	r.AfterSignIn(context.Background(), true)
	r.AfterSignIn(context.Background(), true)

	require.Len(t, nav.externals, 1)
	require.Equal(t, 1, api.returnCalls)
}

func TestAfterSignIn_ReArmedBySignOut(t *testing.T) {
	api := &fakeAPI{}
	r, nav, _ := newResolver(api)

	r.AfterSignIn(context.Background(), false)
	r.AfterSignOut(context.Background())
	r.AfterSignIn(context.Background(), false)

	require.Equal(t, []string{RouteHome, RouteSignIn, RouteHome}, nav.routes)
}

/*************
 * Post-sign-out
 *************/

func TestAfterSignOut_ExternalDestination(t *testing.T) {
	api := &fakeAPI{logoutURL: "https://service.example/bye"}
	r, nav, _ := newResolver(api)

	r.AfterSignOut(context.Background())

	require.Equal(t, []string{"https://service.example/bye"}, nav.externals)
	require.Empty(t, nav.routes)
}

func TestAfterSignOut_FallsBackToSignInView(t *testing.T) {
	for name, api := range map[string]*fakeAPI{
		"backend error": {logoutErr: errors.New("down")},
		"no url":        {},
	} {
		r, nav, _ := newResolver(api)
		r.AfterSignOut(context.Background())
		require.Equal(t, []string{RouteSignIn}, nav.routes, name)
		require.Empty(t, nav.externals, name)
	}
}

func TestAfterSignOut_FiresOncePerEvent(t *testing.T) {
	api := &fakeAPI{}
	r, _, _ := newResolver(api)

	r.AfterSignOut(context.Background())
	r.AfterSignOut(context.Background())

	require.Equal(t, 1, api.logoutCalls)
}

/*************
 * Pending marker upkeep
 *************/

func TestMarkForcedSignIn_RecordsRouteAndNavigates(t *testing.T) {
	r, nav, vol := newResolver(&fakeAPI{})

	r.MarkForcedSignIn("/services")

	require.Equal(t, []string{RouteSignIn}, nav.routes)
	require.Equal(t, "/services", vol.TakePendingPath())
}

func TestMarkForcedSignIn_ReArmsSignInRedirect(t *testing.T) {
	r, nav, _ := newResolver(&fakeAPI{})

	// first login of the process
	r.AfterSignIn(context.Background(), false)
	// session expires terminally, no sign-out event
	r.MarkForcedSignIn("/services")
	// second login must redirect again, back to the recorded route
	r.AfterSignIn(context.Background(), false)

	require.Equal(t, []string{RouteHome, RouteSignIn, "/services"}, nav.routes)
}

func TestOnRouteChange_ClearsStaleMarkerOffAuthViews(t *testing.T) {
	r, _, vol := newResolver(&fakeAPI{})
	vol.SetPendingPath("/profile")

	r.OnRouteChange(RouteSignIn)
	r.OnRouteChange(RouteRegister)
	require.Equal(t, "/profile", vol.TakePendingPath(), "marker survives on auth views")

	vol.SetPendingPath("/profile")
	r.OnRouteChange(RouteHome)
	require.Equal(t, "", vol.TakePendingPath(), "marker cleared once the user is elsewhere")
}

func TestHasSSOMarker(t *testing.T) {
	q, err := url.ParseQuery("sso=blog&x=1")
	require.NoError(t, err)
	require.True(t, HasSSOMarker(q))

	q, err = url.ParseQuery("x=1")
	require.NoError(t, err)
	require.False(t, HasSSOMarker(q))
}
