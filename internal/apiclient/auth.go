package apiclient

import (
	"context"
	"net/http"

	"github.com/angelmondragon/webmarket/internal/analytics"
	"github.com/angelmondragon/webmarket/internal/auth"
)

// AuthClient signs in and out. A successful login or register stores the access token on the shared Client.
type AuthClient struct{ c *Client }

func NewAuthClient(c *Client) *AuthClient { return &AuthClient{c: c} }

func (ac *AuthClient) Login(ctx context.Context, email, password string) (*auth.LoginResponse, error) {
	var out auth.LoginResponse
	if err := ac.c.do(ctx, http.MethodPost, "/auth/login", nil, auth.LoginRequest{Email: email, Password: password}, nil, &out); err != nil {
		return nil, err
	}
	ac.c.SetToken(out.AccessToken)
	return &out, nil
}

func (ac *AuthClient) Register(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
	var out auth.LoginResponse
	if err := ac.c.do(ctx, http.MethodPost, "/auth/register", nil, req, nil, &out); err != nil {
		return nil, err
	}
	ac.c.SetToken(out.AccessToken)
	return &out, nil
}

// Logout revokes the server session. The local token is cleared even when the call fails.
func (ac *AuthClient) Logout(ctx context.Context) error {
	defer ac.c.SetToken("")
	if ac.c.Token() == "" {
		return nil
	}
	return ac.c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil, nil)
}

type AnalyticsClient struct{ c *Client }

func NewAnalyticsClient(c *Client) *AnalyticsClient { return &AnalyticsClient{c: c} }

func (an *AnalyticsClient) Dashboard(ctx context.Context) (*analytics.Dashboard, error) {
	var out analytics.Dashboard
	if err := an.c.do(ctx, http.MethodGet, "/admin/analytics", nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
