package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway implements BillingGateway against the Razorpay API
type RazorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway creates a gateway using the account's key pair
func NewRazorpayGateway(cfg *Config) (*RazorpayGateway, error) {
	if cfg == nil || cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay key id and secret are required")
	}
	return &RazorpayGateway{client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret)}, nil
}

// CreateSubscription creates a recurring plan instance with customer
// notifications enabled
func (g *RazorpayGateway) CreateSubscription(ctx context.Context, planID string, totalCount int) (*Subscription, error) {
	data := map[string]interface{}{
		"plan_id":         planID,
		"total_count":     totalCount,
		"customer_notify": 1,
	}
	result, err := g.client.Subscription.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay subscription create failed: %w", err)
	}

	id, _ := result["id"].(string)
	status, _ := result["status"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay returned subscription without id")
	}
	return &Subscription{ID: id, Status: status}, nil
}

// CancelSubscription cancels the subscription at Razorpay
func (g *RazorpayGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if _, err := g.client.Subscription.Cancel(subscriptionID, nil, nil); err != nil {
		return fmt.Errorf("razorpay subscription cancel failed: %w", err)
	}
	return nil
}

// RefundPayment issues a full refund for the payment
func (g *RazorpayGateway) RefundPayment(ctx context.Context, paymentID string) error {
	payment, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return fmt.Errorf("razorpay payment fetch failed: %w", err)
	}
	amount := 0
	if v, ok := payment["amount"].(float64); ok {
		amount = int(v)
	}
	if _, err := g.client.Payment.Refund(paymentID, amount, nil, nil); err != nil {
		return fmt.Errorf("razorpay refund failed: %w", err)
	}
	return nil
}

// Name returns the gateway name
func (g *RazorpayGateway) Name() string {
	return "razorpay"
}
