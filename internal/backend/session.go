package backend

import (
	"context"
	"net/http"

	"github.com/mmynk/tillpoint/internal/models"
)

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login authenticates an operator and stores the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res LoginResult
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, in, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

// Me returns the operator owning the current token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil, nil)
}
