package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/router"
	"github.com/dmitrijs2005/langcrowd/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

// Login prompts for credentials and resumes at the view the user was sent
// away from, or the dashboard.
func (a *App) Login(ctx context.Context, _ []string) error {
	if err := a.authenticate(ctx); err != nil {
		return err
	}
	a.announce(a.nav.AfterLogin())
	return nil
}

func (a *App) authenticate(ctx context.Context) error {
	username, err := a.ask("Username")
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	s, err := a.session.Login(ctx, models.Credentials{Username: username, Password: string(password)})
	if err != nil {
		return err
	}
	a.printf("Welcome, %s!\n", s.User.Username)
	return nil
}

func (a *App) Register(ctx context.Context, _ []string) error {
	var f models.RegisterForm
	var err error
	if f.Username, err = a.ask("Username"); err != nil {
		return err
	}
	if f.Email, err = a.ask("Email"); err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(confirm)
	f.Password, f.PasswordConfirm = string(password), string(confirm)

	s, err := a.session.Register(ctx, f)
	if err != nil {
		return err
	}
	if !s.IsAuthenticated {
		a.println("Account created. Please log in.")
		return nil
	}
	a.printf("Account created. Welcome, %s!\n", s.User.Username)
	a.announce(a.nav.AfterLogin())
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if !a.session.Current().IsAuthenticated {
		a.println("You are not logged in.")
		return nil
	}
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.nav.Open(router.PathRoot)
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(_ context.Context, _ []string) error {
	u := a.session.Current().User
	if u == nil {
		a.println("Not logged in.")
		return nil
	}
	a.printf("%s <%s>, %s\n", u.Username, u.Email, models.FormatLabel(string(u.Role)))
	return nil
}

func (a *App) ForgotPassword(ctx context.Context, _ []string) error {
	email, err := a.ask("Email")
	if err != nil {
		return err
	}
	if err := a.accounts.ForgotPassword(ctx, email); err != nil {
		return err
	}
	a.println("If the email exists, a reset link has been sent.")
	return nil
}

func (a *App) ResetPassword(ctx context.Context, _ []string) error {
	uid, err := a.ask("User id (from the reset link)")
	if err != nil {
		return err
	}
	token, err := a.ask("Reset token")
	if err != nil {
		return err
	}
	password, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.accounts.ResetPassword(ctx, uid, token, string(password)); err != nil {
		return err
	}
	a.println("Password has been reset. You can log in now.")
	return nil
}

// TwoFactor sends a code when none is entered, then verifies one.
func (a *App) TwoFactor(ctx context.Context, _ []string) error {
	code, err := a.ask("Verification code (leave empty to send a new one)")
	if err != nil {
		return err
	}
	if code == "" {
		email := ""
		if u := a.session.Current().User; u != nil {
			email = u.Email
		} else if email, err = a.ask("Email"); err != nil {
			return err
		}
		if err := a.accounts.Send2FACode(ctx, email); err != nil {
			return err
		}
		a.println("Verification code sent.")
		if code, err = a.ask("Verification code"); err != nil {
			return err
		}
	}
	if err := a.accounts.Verify2FACode(ctx, strings.TrimSpace(code)); err != nil {
		return err
	}
	a.println("Verified.")
	return nil
}

func (a *App) Open(_ context.Context, args []string) error {
	a.announce(a.nav.Open(args[0]))
	return nil
}

func (a *App) announce(d router.Decision) {
	switch d.Kind {
	case router.Render:
		a.printf("Now viewing: %s (%s)\n", d.Route.Title, d.Path)
	case router.RedirectLogin:
		a.printf("Login required. You will return to %s after logging in.\n", d.Next)
	case router.Redirect:
		a.printf("Redirected to %s\n", d.Path)
	case router.Forbidden:
		a.println(accessDenied)
	default:
		a.println("Page not found:", d.Path)
	}
}

func (a *App) Routes(_ context.Context, _ []string) error {
	s := a.session.Current()
	for _, rt := range a.routes.Routes() {
		mark := " "
		if a.routes.Resolve(rt.Path, s).Kind == router.Render {
			mark = "*"
		}
		a.printf("%s %-18s %s\n", mark, rt.Path, rt.Title)
	}
	a.println(fmt.Sprintf("(* = available, current: %s)", a.nav.Current()))
	return nil
}
