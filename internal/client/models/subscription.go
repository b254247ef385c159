package models

import "time"

// Plan amounts are in minor currency units (paise for INR).
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Amount       int64    `json:"amount"`
	Currency     string   `json:"currency"`
	IntervalDays int      `json:"intervalDays"`
	Features     []string `json:"features,omitempty"`
}

type Subscription struct {
	ID        string     `json:"id"`
	PlanID    string     `json:"planId"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"startedAt,omitzero"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Order is a payment-gateway order created by the backend for a plan.
type Order struct {
	ID       string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId,omitempty"`
	PlanID   string `json:"planId,omitempty"`
}

// PaymentVerification carries the gateway callback fields to the backend,
// which checks the signature.
type PaymentVerification struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type Transaction struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId,omitempty"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}
