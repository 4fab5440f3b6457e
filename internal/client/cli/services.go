package cli

import (
	"context"
	"fmt"

	"github.com/jaycloud/jaycloud-go/internal/client/redirect"
)

// Services lists the services connected to JayCloud.
func (a *App) Services(ctx context.Context) error {
	services, err := a.gateway.Services(ctx)
	if err != nil {
		return a.reportError(ctx, err)
	}

	a.nav.NavigateTo(redirect.RouteServices)
	a.resolver.OnRouteChange(redirect.RouteServices)

	if len(services) == 0 {
		fmt.Fprintln(a.out, "No services available")
		return nil
	}
	for _, s := range services {
		fmt.Fprintf(a.out, "%s: %s - %s\n", s.ID, s.Name, s.Description)
	}
	return nil
}

// Launch opens the given service in the browser via its SSO entry URL.
func (a *App) Launch(ctx context.Context, id string) error {
	if id == "" {
		fmt.Fprintln(a.out, "Usage: launch <service-id>")
		return nil
	}

	service, err := a.gateway.Service(ctx, id)
	if err != nil {
		return a.reportError(ctx, err)
	}

	a.nav.OpenExternal(service.URL)
	return nil
}
