package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/lingua/internal/client/models"
)

func (c *HTTPClient) GetPlans(ctx context.Context) ([]models.Plan, error) {
	var out []models.Plan
	if err := c.do(ctx, call{method: http.MethodGet, route: "/subscriptions/plans", path: "/subscriptions/plans", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCurrentSubscription returns (nil, nil) when the user has no subscription.
func (c *HTTPClient) GetCurrentSubscription(ctx context.Context) (*models.Subscription, error) {
	var out *models.Subscription
	if err := c.do(ctx, call{method: http.MethodGet, route: "/subscriptions/current", path: "/subscriptions/current", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateOrder(ctx context.Context, planID string) (*models.Order, error) {
	var out models.Order
	body := map[string]string{"planId": planID}
	if err := c.do(ctx, call{method: http.MethodPost, route: "/subscriptions/orders", path: "/subscriptions/orders", body: body, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) VerifyPayment(ctx context.Context, v models.PaymentVerification) (*models.Subscription, error) {
	var out models.Subscription
	if err := c.do(ctx, call{method: http.MethodPost, route: "/subscriptions/verify", path: "/subscriptions/verify", body: v, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	if err := c.do(ctx, call{method: http.MethodGet, route: "/subscriptions/transactions", path: "/subscriptions/transactions", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}
