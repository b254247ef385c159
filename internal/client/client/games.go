package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/lingua/internal/client/models"
)

func (c *HTTPClient) GetGames(ctx context.Context) ([]models.Game, error) {
	var out []models.Game
	if err := c.do(ctx, call{method: http.MethodGet, route: "/games", path: "/games", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) StartGameSession(ctx context.Context, gameID string) (*models.GameSession, error) {
	var out models.GameSession
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/games/{id}/sessions",
		path:   "/games/" + url.PathEscape(gameID) + "/sessions",
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SubmitGameSession(ctx context.Context, sessionID string, answers []models.GameAnswer) (*models.GameResult, error) {
	var out models.GameResult
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/games/sessions/{id}/submit",
		path:   "/games/sessions/" + url.PathEscape(sessionID) + "/submit",
		body:   map[string]any{"answers": answers},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
