package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/lingua/internal/client/models"
)

func (c *HTTPClient) listAchievements(ctx context.Context, method, path string) ([]models.Achievement, error) {
	var out []models.Achievement
	if err := c.do(ctx, call{method: method, route: path, path: path, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetUserAchievements(ctx context.Context) ([]models.Achievement, error) {
	return c.listAchievements(ctx, http.MethodGet, "/achievements")
}

func (c *HTTPClient) GetAvailableAchievements(ctx context.Context) ([]models.Achievement, error) {
	return c.listAchievements(ctx, http.MethodGet, "/achievements/available")
}

func (c *HTTPClient) GetUnviewedAchievements(ctx context.Context) ([]models.Achievement, error) {
	return c.listAchievements(ctx, http.MethodGet, "/achievements/unviewed")
}

func (c *HTTPClient) MarkAchievementsViewed(ctx context.Context, ids []string) error {
	body := map[string][]string{"achievementIds": ids}
	return c.do(ctx, call{method: http.MethodPost, route: "/achievements/viewed", path: "/achievements/viewed", body: body})
}

// CheckAchievements asks the backend to evaluate unlock rules and returns
// what was newly unlocked.
func (c *HTTPClient) CheckAchievements(ctx context.Context) ([]models.Achievement, error) {
	return c.listAchievements(ctx, http.MethodPost, "/achievements/check")
}
