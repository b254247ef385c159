package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/lingua/internal/client/models"
)

func (c *HTTPClient) StartConversation(ctx context.Context, topic string) (*models.Conversation, error) {
	var out models.Conversation
	body := map[string]string{"topic": topic}
	if err := c.do(ctx, call{method: http.MethodPost, route: "/tutor/conversations", path: "/tutor/conversations", body: body, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SendTutorMessage(ctx context.Context, conversationID, text string) (*models.TutorReply, error) {
	var out models.TutorReply
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/tutor/conversations/{id}/messages",
		path:   "/tutor/conversations/" + url.PathEscape(conversationID) + "/messages",
		body:   map[string]string{"content": text},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var out []models.Conversation
	if err := c.do(ctx, call{method: http.MethodGet, route: "/tutor/conversations", path: "/tutor/conversations", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CheckGrammar(ctx context.Context, text string) (*models.GrammarCheck, error) {
	var out models.GrammarCheck
	body := map[string]string{"text": text}
	if err := c.do(ctx, call{method: http.MethodPost, route: "/tutor/grammar/check", path: "/tutor/grammar/check", body: body, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateRealtimeSession(ctx context.Context, req models.RealtimeSessionRequest) (*models.RealtimeSession, error) {
	var out models.RealtimeSession
	if err := c.do(ctx, call{method: http.MethodPost, route: "/tutor/realtime/session", path: "/tutor/realtime/session", body: req, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) EndRealtimeSession(ctx context.Context, sessionID string, end models.RealtimeSessionEnd) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		route:  "/tutor/realtime/session/{id}/end",
		path:   "/tutor/realtime/session/" + url.PathEscape(sessionID) + "/end",
		body:   end,
	})
}
