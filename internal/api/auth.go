package api

import (
	"context"
	"net/http"
)

// Login exchanges a Google identity token for a backend session. Returns a
// 404 APIError when the account has never registered.
func (c *Client) Login(ctx context.Context, req AuthRequest) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &resp, false)
	return resp, err
}

// Register creates the account and returns a session in one call.
func (c *Client) Register(ctx context.Context, req AuthRequest) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &resp, false)
	return resp, err
}

// Me returns the profile behind the current bearer token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &u, true)
	return u, err
}

// Health reports backend liveness. Unauthenticated.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var h HealthResponse
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &h, false)
	return h, err
}
