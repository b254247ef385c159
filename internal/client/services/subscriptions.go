package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/lingua/internal/client/cache"
	"github.com/dmitrijs2005/lingua/internal/client/client"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

const keyPlans = "subscriptions:plans"

var ErrIncompletePayment = errors.New("order id, payment id and signature are required")

type SubscriptionService struct {
	api client.SubscriptionsAPI
	reader
}

func NewSubscriptionService(api client.SubscriptionsAPI, c *cache.Cache, l logging.Logger) *SubscriptionService {
	return &SubscriptionService{api: api, reader: newReader(c, l)}
}

func (s *SubscriptionService) Plans(ctx context.Context) []models.Plan {
	v, _ := read(ctx, s.reader, keyPlans, 0, s.api.GetPlans)
	return orEmpty(v)
}

// Current returns nil when there is no active subscription or it could not be
// read.
func (s *SubscriptionService) Current(ctx context.Context) *models.Subscription {
	v, _ := read(ctx, s.reader, "", 0, s.api.GetCurrentSubscription)
	return v
}

func (s *SubscriptionService) Transactions(ctx context.Context) []models.Transaction {
	v, _ := read(ctx, s.reader, "", 0, s.api.GetTransactions)
	return orEmpty(v)
}

// CreateOrder opens a gateway order for planID. The payment itself happens
// outside the client; its callback fields go to VerifyPayment.
func (s *SubscriptionService) CreateOrder(ctx context.Context, planID string) (*models.Order, error) {
	if strings.TrimSpace(planID) == "" {
		return nil, ErrEmptyID
	}
	return s.api.CreateOrder(ctx, planID)
}

func (s *SubscriptionService) VerifyPayment(ctx context.Context, v models.PaymentVerification) (*models.Subscription, error) {
	if v.OrderID == "" || v.PaymentID == "" || v.Signature == "" {
		return nil, ErrIncompletePayment
	}
	sub, err := s.api.VerifyPayment(ctx, v)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyAchievementsPrefix)
	return sub, nil
}
