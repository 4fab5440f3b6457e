package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaycloud/jaycloud-go/internal/client/models"
	"github.com/jaycloud/jaycloud-go/internal/common"
)

// Profile shows the signed-in user's identity record.
func (a *App) Profile(ctx context.Context) error {
	user, err := a.gateway.Profile(ctx)
	if err != nil {
		return a.reportError(ctx, err)
	}

	fmt.Fprintf(a.out, "%s <%s>\nmember since %s\n", user.FullName(), user.Email, user.CreatedAt)
	return nil
}

// UpdateProfile prompts for new profile fields; empty answers leave the
// field unchanged.
func (a *App) UpdateProfile(ctx context.Context) error {
	firstName, err := getSimpleText(a.reader, "New first name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "New last name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "New email (empty to keep)", a.out)
	if err != nil {
		return err
	}

	res := a.coordinator.UpdateProfile(ctx, models.ProfileUpdate{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	})
	if res.ErrorOccurred {
		fmt.Fprintf(a.out, "Update failed: %s\n", res.ErrorMessage)
		return nil
	}

	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

// UpdatePassword prompts for the current and new password.
func (a *App) UpdatePassword(ctx context.Context) error {
	fmt.Fprintln(a.out, "Current password")
	current, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	fmt.Fprintln(a.out, "New password")
	next, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	res := a.coordinator.UpdatePassword(ctx, string(current), string(next))
	if res.ErrorOccurred {
		fmt.Fprintf(a.out, "Password change failed: %s\n", res.ErrorMessage)
		return nil
	}

	fmt.Fprintln(a.out, "Password changed")
	return nil
}

// RequestPasswordReset starts a reset flow for an email address; usable
// while signed out.
func (a *App) RequestPasswordReset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Account email", a.out)
	if err != nil {
		return err
	}

	res := a.coordinator.RequestPasswordReset(ctx, email)
	if res.ErrorOccurred {
		fmt.Fprintf(a.out, "Reset request failed: %s\n", res.ErrorMessage)
		return nil
	}

	fmt.Fprintln(a.out, "Check your inbox for reset instructions")
	return nil
}

// reportError prints an expected failure. A terminal authorization failure
// additionally remembers the current route and forces the sign-in view, so
// a later successful login can return the user to where they were.
func (a *App) reportError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrRenewalFailed) {
		fmt.Fprintln(a.out, "Your session has expired, please sign in again")
		a.resolver.MarkForcedSignIn(a.nav.Route())
		return nil
	}
	fmt.Fprintf(a.out, "Error: %s\n", err)
	return nil
}
