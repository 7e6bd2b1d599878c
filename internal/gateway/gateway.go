package gateway

import (
	"context"
)

// Subscription is the gateway's view of a recurring billing plan instance
type Subscription struct {
	ID     string
	Status string
}

// BillingGateway defines the interface to the external payment gateway
type BillingGateway interface {
	// CreateSubscription creates a recurring billing plan instance
	CreateSubscription(ctx context.Context, planID string, totalCount int) (*Subscription, error)

	// CancelSubscription cancels the subscription at the gateway
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// RefundPayment issues a full refund for a payment
	RefundPayment(ctx context.Context, paymentID string) error

	// Name returns the gateway name
	Name() string
}

// Config holds common gateway configuration
type Config struct {
	KeyID     string
	KeySecret string
}
