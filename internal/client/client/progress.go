package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/lingua/internal/client/models"
)

func (c *HTTPClient) GetProgress(ctx context.Context) (*models.Progress, error) {
	var out models.Progress
	if err := c.do(ctx, call{method: http.MethodGet, route: "/progress", path: "/progress", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetStreak(ctx context.Context) (*models.Streak, error) {
	var out models.Streak
	if err := c.do(ctx, call{method: http.MethodGet, route: "/progress/streak", path: "/progress/streak", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetXPSummary(ctx context.Context) (*models.XPSummary, error) {
	var out models.XPSummary
	if err := c.do(ctx, call{method: http.MethodGet, route: "/xp/summary", path: "/xp/summary", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}
