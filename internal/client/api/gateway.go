package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jaycloud/jaycloud-go/internal/common"
	"github.com/jaycloud/jaycloud-go/internal/logging"
)

// Endpoint paths. Sign-in and renewal are exempt from credential
// attachment and from the renewal cascade: they must never carry a
// possibly-stale bearer token, and a failure on them is final.
const (
	pathSignIn          = "/sign-in"
	pathSignOut         = "/sign-out"
	pathRenewToken      = "/renew-token"
	pathUsers           = "/users"
	pathProfile         = "/users/profile"
	pathPassword        = "/users/password"
	pathPasswordReset   = "/users/password-reset"
	pathServices        = "/services"
	pathSSOReturn       = "/sso/return-url"
	pathSSOLogoutReturn = "/sso/logout-return-url"
)

// Call captures the full configuration of one outbound request, so a call
// that failed on an expired credential can be replayed unchanged.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// Response is the decoded outcome of a successful call.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// RequestHook may mutate an outgoing request before it is sent.
type RequestHook func(call *Call, r *http.Request)

// ErrorHook inspects a failed call. It returns (resp, nil) to resolve the
// call, (nil, err) to reject it, or (nil, nil) to delegate to the next hook.
type ErrorHook func(ctx context.Context, call *Call, callErr error) (*Response, error)

// Renewer runs the session renewal protocol. A nil error means fresh
// credentials are in place and the failed call may be replayed.
type Renewer interface {
	Renew(ctx context.Context) error
}

// Gateway issues every HTTP request the client makes. It holds the
// access credential in memory only and implements transparent
// renew-and-replay for credential-expiry failures.
type Gateway struct {
	baseURL string
	client  *http.Client
	log     logging.Logger

	mu          sync.Mutex
	accessToken string

	renewer Renewer
	// renewing is the single-slot re-entrancy guard: at most one renewal
	// cascade may be in flight. A 401 arriving while it is held is
	// rejected as-is, not queued.
	renewing atomic.Bool

	requestHooks []RequestHook
	errorHooks   []ErrorHook
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithLogger sets the gateway logger.
func WithLogger(l logging.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.client.Timeout = d }
}

// NewGateway builds a Gateway for the backend at baseURL and installs the
// standard hook chains.
func NewGateway(baseURL string, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(g)
	}
	g.requestHooks = []RequestHook{
		g.requestIDHook,
		g.jsonHook,
		g.bearerHook,
	}
	g.errorHooks = []ErrorHook{
		g.renewalHook,
	}
	return g
}

// SetRenewer registers the session's renewal routine. Must be called before
// authenticated traffic flows; without it expired credentials fail outright.
func (g *Gateway) SetRenewer(r Renewer) {
	g.renewer = r
}

// SetAccessToken replaces the in-memory access credential.
func (g *Gateway) SetAccessToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accessToken = token
}

// AccessToken returns the current access credential, or "".
func (g *Gateway) AccessToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accessToken
}

// ClearAccessToken drops the in-memory access credential.
func (g *Gateway) ClearAccessToken() {
	g.SetAccessToken("")
}

// exempt reports whether the path must be left untouched by credential
// attachment and excluded from the renewal cascade.
func exempt(path string) bool {
	return path == pathSignIn || path == pathRenewToken
}

func (g *Gateway) requestIDHook(call *Call, r *http.Request) {
	r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
}

func (g *Gateway) jsonHook(call *Call, r *http.Request) {
	if exempt(call.Path) {
		return
	}
	r.Header.Set("Accept", "application/json")
	if len(call.Body) > 0 {
		r.Header.Set("Content-Type", "application/json")
	}
}

func (g *Gateway) bearerHook(call *Call, r *http.Request) {
	if exempt(call.Path) {
		return
	}
	if tok := g.AccessToken(); tok != "" {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
}

// renewalHook is the response-side interceptor. It fires only when the
// failed call is not exempt, the failure is an HTTP 401 whose message
// points at the bearer token, and no renewal cascade is already running.
// On renewal success the original call is replayed exactly once while the
// guard is still held, so a second expiry cannot recurse.
func (g *Gateway) renewalHook(ctx context.Context, call *Call, callErr error) (*Response, error) {
	if exempt(call.Path) {
		return nil, nil
	}

	var apiErr *Error
	if !errors.As(callErr, &apiErr) {
		// transport-level failure, no response to interpret
		return nil, nil
	}
	if apiErr.Status != http.StatusUnauthorized {
		return nil, nil
	}
	if !strings.Contains(strings.ToLower(apiErr.Message), "token") {
		// unauthorized for some other reason (e.g. wrong password)
		return nil, nil
	}
	if g.renewer == nil {
		return nil, nil
	}

	if !g.renewing.CompareAndSwap(false, true) {
		// a renewal is already in flight for another failure; this call
		// loses the race and observes its original rejection
		return nil, callErr
	}
	defer g.renewing.Store(false)

	g.log.Info(ctx, "access token expired, renewing session", "path", call.Path)

	if err := g.renewer.Renew(ctx); err != nil {
		g.log.Warn(ctx, "session renewal failed", "error", err)
		return nil, err
	}

	return g.send(ctx, call)
}

// Do issues the call through the full hook pipeline.
func (g *Gateway) Do(ctx context.Context, call *Call) (*Response, error) {
	resp, err := g.send(ctx, call)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// send performs one HTTP round trip for the call and routes failures
// through the error-hook chain.
func (g *Gateway) send(ctx context.Context, call *Call) (*Response, error) {
	resp, err := g.roundTrip(ctx, call)
	if err == nil {
		return resp, nil
	}

	for _, hook := range g.errorHooks {
		r, hookErr := hook(ctx, call, err)
		if r != nil {
			return r, nil
		}
		if hookErr != nil {
			return nil, hookErr
		}
	}
	return nil, err
}

func (g *Gateway) roundTrip(ctx context.Context, call *Call) (*Response, error) {
	target := g.baseURL + call.Path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	var body io.Reader
	if len(call.Body) > 0 {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", call.Path, err)
	}
	if len(call.Body) > 0 && exempt(call.Path) {
		// exempt endpoints skip the hook chain's JSON negotiation but
		// still speak JSON on the wire
		req.Header.Set("Content-Type", "application/json")
	}

	for _, hook := range g.requestHooks {
		hook(call, req)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", common.ErrUnavailable, err)
	}

	if res.StatusCode >= 400 {
		return nil, &Error{Status: res.StatusCode, Message: errorMessage(data)}
	}

	return &Response{Status: res.StatusCode, Header: res.Header, Body: data}, nil
}

// errorMessage extracts the human-readable message from an error body,
// falling back to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}
