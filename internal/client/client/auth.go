package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

type AuthAPI struct{ g *Gateway }

func (g *Gateway) Auth() *AuthAPI { return &AuthAPI{g: g} }

func (a *AuthAPI) Login(ctx context.Context, c models.Credentials) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := a.g.send(ctx, http.MethodPost, loginPath, c, &out); err != nil {
		return nil, err
	}
	if out.Token == "" || out.User == nil {
		return nil, ErrInvalidCredentials
	}
	return &out, nil
}

func (a *AuthAPI) Register(ctx context.Context, f models.RegisterForm) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := a.g.send(ctx, http.MethodPost, "accounts/api/register/", f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.g.send(ctx, http.MethodPost, "accounts/logout/", nil, nil)
}

func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) error {
	return a.g.send(ctx, http.MethodPost, "accounts/forgot-password/", map[string]string{"email": email}, nil)
}

func (a *AuthAPI) ResetPassword(ctx context.Context, uid, token, password string) error {
	body := map[string]string{"uid": uid, "token": token, "password": password}
	return a.g.send(ctx, http.MethodPost, "accounts/reset-password/", body, nil)
}

func (a *AuthAPI) Send2FACode(ctx context.Context, email string) error {
	return a.g.send(ctx, http.MethodPost, "accounts/2fa/send-code/", map[string]string{"email": email}, nil)
}

func (a *AuthAPI) Verify2FACode(ctx context.Context, code string) error {
	return a.g.send(ctx, http.MethodPost, "accounts/2fa/verify/", map[string]string{"code": code}, nil)
}

type availability struct {
	Available bool `json:"available"`
}

// CheckUsername reports whether the username is still free.
func (a *AuthAPI) CheckUsername(ctx context.Context, username string) (bool, error) {
	var out availability
	err := a.g.get(ctx, "accounts/api/check-username/", url.Values{"username": {username}}, &out)
	return out.Available, err
}

// CheckEmail reports whether the email address is still free.
func (a *AuthAPI) CheckEmail(ctx context.Context, email string) (bool, error) {
	var out availability
	err := a.g.get(ctx, "accounts/api/check-email/", url.Values{"email": {email}}, &out)
	return out.Available, err
}
