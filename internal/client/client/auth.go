package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/lingua/internal/client/models"
)

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{method: http.MethodPost, route: "/auth/login", path: "/auth/login", body: req, out: &out, anonymous: true})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{method: http.MethodPost, route: "/auth/register", path: "/auth/register", body: req, out: &out, anonymous: true})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	body := map[string]string{"refreshToken": refreshToken}
	err := c.do(ctx, call{method: http.MethodPost, route: "/auth/refresh", path: "/auth/refresh", body: body, out: &out, anonymous: true})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refreshToken": refreshToken}
	return c.do(ctx, call{method: http.MethodPost, route: "/auth/logout", path: "/auth/logout", body: body})
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: http.MethodGet, route: "/auth/me", path: "/auth/me", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: http.MethodPatch, route: "/auth/profile", path: "/auth/profile", body: upd, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}
