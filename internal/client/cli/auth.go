package cli

import (
	"context"
	"fmt"

	"github.com/jaycloud/jaycloud-go/internal/client/models"
	"github.com/jaycloud/jaycloud-go/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for account details and attempts to create the account.
// Success signs the user in and runs the post-sign-in redirect.
func (a *App) Register(ctx context.Context) error {
	firstName, err := getSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.coordinator.CreateAccount(ctx, models.NewAccount{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  string(password),
	})
	if res.ErrorOccurred {
		fmt.Fprintf(a.out, "Registration failed: %s\n", res.ErrorMessage)
		return nil
	}

	fmt.Fprintln(a.out, "Account created!")
	a.resolver.AfterSignIn(ctx, a.ssoMarker)
	return nil
}

// Login prompts for credentials and signs in. On success the redirect
// protocol decides where the user lands: back to an external service when
// an SSO marker is present, to the remembered pending path, or home.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.coordinator.SignIn(ctx, email, string(password))
	if res.ErrorOccurred {
		fmt.Fprintf(a.out, "Login failed: %s\n", res.ErrorMessage)
		return nil
	}

	fmt.Fprintln(a.out, "Signed in!")
	a.resolver.AfterSignIn(ctx, a.ssoMarker)
	return nil
}

// Logout ends the session. Local state is cleared regardless; the backend
// outcome only influences the reported message. The post-sign-out redirect
// runs either way.
func (a *App) Logout(ctx context.Context) error {
	if ok := a.coordinator.SignOut(ctx); !ok {
		fmt.Fprintln(a.out, "Signed out locally (backend unreachable)")
	} else {
		fmt.Fprintln(a.out, "Signed out")
	}
	a.resolver.AfterSignOut(ctx)
	return nil
}
