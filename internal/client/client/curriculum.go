package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/lingua/internal/client/models"
)

func (c *HTTPClient) GetLevels(ctx context.Context) ([]models.Level, error) {
	var out []models.Level
	if err := c.do(ctx, call{method: http.MethodGet, route: "/curriculum/levels", path: "/curriculum/levels", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetLessons(ctx context.Context, levelID string) ([]models.Lesson, error) {
	var out []models.Lesson
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/curriculum/levels/{id}/lessons",
		path:   "/curriculum/levels/" + url.PathEscape(levelID) + "/lessons",
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	var out models.Lesson
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/curriculum/lessons/{id}",
		path:   "/curriculum/lessons/" + url.PathEscape(id),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CompleteLesson(ctx context.Context, id string, result models.LessonResult) (*models.LessonCompletion, error) {
	var out models.LessonCompletion
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/curriculum/lessons/{id}/complete",
		path:   "/curriculum/lessons/" + url.PathEscape(id) + "/complete",
		body:   result,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
