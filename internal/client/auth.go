package client

import (
	"context"
	"net/http"

	"github.com/bigdealegypt/bigdeal/internal/session"
)

// SignIn authenticates with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (*session.AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp session.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signin", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignUp creates a customer account.
func (c *Client) SignUp(ctx context.Context, req session.SignUpRequest) (*session.AuthResponse, error) {
	var resp session.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignOut revokes token on the server.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/signout", token, nil, nil)
}

// GetSession returns the user and session that token belongs to.
func (c *Client) GetSession(ctx context.Context, token string) (*session.AuthResponse, error) {
	var resp session.AuthResponse
	if err := c.do(ctx, http.MethodGet, "/auth/session", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken exchanges token for a fresh session.
func (c *Client) RefreshToken(ctx context.Context, token string) (*session.AuthResponse, error) {
	var resp session.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh-token", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
