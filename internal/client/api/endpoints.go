package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jaycloud/jaycloud-go/internal/client/models"
	"github.com/jaycloud/jaycloud-go/internal/common"
)

// TokenPair carries the fresh credentials issued by sign-in, account
// creation, and renewal responses.
type TokenPair struct {
	Access  string
	Renewal string
}

func tokenPair(r *Response) TokenPair {
	return TokenPair{
		Access:  r.Header.Get(common.AccessTokenHeaderName),
		Renewal: r.Header.Get(common.RenewalTokenHeaderName),
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordUpdateRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type renewTokenRequest struct {
	RenewalToken string `json:"renewalToken"`
}

type ssoURLResponse struct {
	URL string `json:"url"`
}

// SignIn authenticates with email and password. Fresh credentials arrive
// in the response headers; the identity record arrives in the body.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*models.User, TokenPair, error) {
	return g.identityCall(ctx, http.MethodPost, pathSignIn, signInRequest{Email: email, Password: password})
}

// CreateAccount registers a new user. The backend signs the user in as
// part of creation, so credentials arrive just like on sign-in.
func (g *Gateway) CreateAccount(ctx context.Context, acc models.NewAccount) (*models.User, TokenPair, error) {
	return g.identityCall(ctx, http.MethodPost, pathUsers, acc)
}

// RenewToken exchanges the renewal credential for a fresh pair.
// The backend answers 401 when the renewal token is invalid or expired.
func (g *Gateway) RenewToken(ctx context.Context, renewalToken string) (*models.User, TokenPair, error) {
	return g.identityCall(ctx, http.MethodPost, pathRenewToken, renewTokenRequest{RenewalToken: renewalToken})
}

func (g *Gateway) identityCall(ctx context.Context, method, path string, payload any) (*models.User, TokenPair, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("encode %s request: %w", path, err)
	}

	resp, err := g.Do(ctx, &Call{Method: method, Path: path, Body: body})
	if err != nil {
		return nil, TokenPair{}, err
	}

	var user models.User
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		return nil, TokenPair{}, fmt.Errorf("decode %s response: %w", path, err)
	}
	return &user, tokenPair(resp), nil
}

// SignOut invalidates the server-side session for the current credential.
func (g *Gateway) SignOut(ctx context.Context) error {
	_, err := g.Do(ctx, &Call{Method: http.MethodPost, Path: pathSignOut})
	return err
}

// Profile fetches the identity record of the signed-in user.
func (g *Gateway) Profile(ctx context.Context) (*models.User, error) {
	resp, err := g.Do(ctx, &Call{Method: http.MethodGet, Path: pathProfile})
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	return &user, nil
}

// UpdateProfile changes the mutable profile fields and returns the updated
// identity record.
func (g *Gateway) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("encode profile update: %w", err)
	}
	resp, err := g.Do(ctx, &Call{Method: http.MethodPut, Path: pathProfile, Body: body})
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	return &user, nil
}

// UpdatePassword changes the account password. The identity record is not
// affected.
func (g *Gateway) UpdatePassword(ctx context.Context, current, next string) error {
	body, err := json.Marshal(passwordUpdateRequest{CurrentPassword: current, NewPassword: next})
	if err != nil {
		return fmt.Errorf("encode password update: %w", err)
	}
	_, err = g.Do(ctx, &Call{Method: http.MethodPut, Path: pathPassword, Body: body})
	return err
}

// RequestPasswordReset asks the backend to start a password reset flow for
// the given email.
func (g *Gateway) RequestPasswordReset(ctx context.Context, email string) error {
	body, err := json.Marshal(passwordResetRequest{Email: email})
	if err != nil {
		return fmt.Errorf("encode password reset request: %w", err)
	}
	_, err = g.Do(ctx, &Call{Method: http.MethodPost, Path: pathPasswordReset, Body: body})
	return err
}

// Services lists the directory of launchable sibling services.
func (g *Gateway) Services(ctx context.Context) ([]models.Service, error) {
	resp, err := g.Do(ctx, &Call{Method: http.MethodGet, Path: pathServices})
	if err != nil {
		return nil, err
	}
	var services []models.Service
	if err := json.Unmarshal(resp.Body, &services); err != nil {
		return nil, fmt.Errorf("decode services response: %w", err)
	}
	return services, nil
}

// Service fetches a single directory entry by id.
func (g *Gateway) Service(ctx context.Context, id string) (*models.Service, error) {
	resp, err := g.Do(ctx, &Call{Method: http.MethodGet, Path: pathServices + "/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	var svc models.Service
	if err := json.Unmarshal(resp.Body, &svc); err != nil {
		return nil, fmt.Errorf("decode service response: %w", err)
	}
	return &svc, nil
}

// SSOReturnURL resolves the post-sign-in destination for sessions that
// originated from an external service. Returns "" when there is none.
func (g *Gateway) SSOReturnURL(ctx context.Context) (string, error) {
	return g.ssoURL(ctx, pathSSOReturn)
}

// SSOLogoutReturnURL resolves the post-sign-out destination. The backend
// answers from session data retained server-side, so the call is valid
// even after the client credentials were cleared.
func (g *Gateway) SSOLogoutReturnURL(ctx context.Context) (string, error) {
	return g.ssoURL(ctx, pathSSOLogoutReturn)
}

func (g *Gateway) ssoURL(ctx context.Context, path string) (string, error) {
	resp, err := g.Do(ctx, &Call{Method: http.MethodGet, Path: path})
	if err != nil {
		return "", err
	}
	var payload ssoURLResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return "", fmt.Errorf("decode sso response: %w", err)
	}
	return payload.URL, nil
}
