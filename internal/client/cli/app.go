// Package cli implements the JayCloud terminal client: a small REPL over
// the session coordinator, the services directory, and the redirect
// protocol.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jaycloud/jaycloud-go/internal/client/api"
	"github.com/jaycloud/jaycloud-go/internal/client/config"
	"github.com/jaycloud/jaycloud-go/internal/client/redirect"
	"github.com/jaycloud/jaycloud-go/internal/client/session"
	"github.com/jaycloud/jaycloud-go/internal/client/tokenstore"
	"github.com/jaycloud/jaycloud-go/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config      *config.Config
	gateway     *api.Gateway
	coordinator *session.Coordinator
	resolver    *redirect.Resolver
	nav         *termNavigator

	reader *bufio.Reader
	out    io.Writer

	// ssoMarker mirrors the query parameter a browser client would carry:
	// set when the process was launched on behalf of an external service.
	ssoMarker bool
}

func NewApp(c *config.Config, ssoMarker bool) (*App, error) {
	ctx := context.Background()

	db, err := tokenstore.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("initializing metadata database: %w", err)
	}
	store := tokenstore.NewSQLiteStore(db)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	gw := api.NewGateway(c.APIBaseURL,
		api.WithTimeout(c.RequestTimeout),
		api.WithLogger(log.With("component", "gateway")),
	)

	coord := session.NewCoordinator(gw, store,
		session.WithLogger(log.With("component", "session")),
	)

	out := os.Stdout
	nav := &termNavigator{out: out}
	vol := tokenstore.NewVolatile()
	resolver := redirect.NewResolver(gw, nav, vol, log.With("component", "redirect"))

	return &App{
		config:      c,
		gateway:     gw,
		coordinator: coord,
		resolver:    resolver,
		nav:         nav,
		reader:      bufio.NewReader(os.Stdin),
		out:         out,
		ssoMarker:   ssoMarker,
	}, nil
}

// Run restores the session silently, then drops into the REPL.
func (a *App) Run(ctx context.Context) {
	if user := a.coordinator.RestoreOnce(ctx); user != nil {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", user.FirstName)
	} else {
		fmt.Fprintln(a.out, "Welcome to JayCloud (type 'help' for commands)")
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.coordinator.Snapshot().SignedIn()
}

// status renders the prompt suffix: signed-in email plus time left on the
// access credential when it is a readable JWT.
func (a *App) status() string {
	snap := a.coordinator.Snapshot()
	if snap.User == nil {
		return ""
	}
	s := snap.User.Email
	if !snap.ExpiresAt.IsZero() {
		left := time.Until(snap.ExpiresAt).Round(time.Second)
		if left > 0 {
			s = fmt.Sprintf("%s %s", s, left)
		} else {
			s += " expired"
		}
	}
	return "(" + s + ")"
}
