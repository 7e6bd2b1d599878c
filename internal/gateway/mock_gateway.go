package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockGateway implements BillingGateway for testing and local development
type MockGateway struct {
	mu            sync.Mutex
	subscriptions map[string]*Subscription
	refunded      map[string]bool

	// CreateErr/CancelErr/RefundErr, when set, force the corresponding
	// call to fail (for testing failure paths)
	CreateErr error
	CancelErr error
	RefundErr error
}

// NewMockGateway creates an empty mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		subscriptions: make(map[string]*Subscription),
		refunded:      make(map[string]bool),
	}
}

// CreateSubscription issues a fake subscription id in created state
func (g *MockGateway) CreateSubscription(ctx context.Context, planID string, totalCount int) (*Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	sub := &Subscription{
		ID:     fmt.Sprintf("sub_mock_%s", uuid.New().String()[:8]),
		Status: "created",
	}
	g.subscriptions[sub.ID] = sub
	return sub, nil
}

// CancelSubscription marks the subscription cancelled
func (g *MockGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.CancelErr != nil {
		return g.CancelErr
	}
	sub, ok := g.subscriptions[subscriptionID]
	if !ok {
		return fmt.Errorf("subscription not found: %s", subscriptionID)
	}
	sub.Status = "cancelled"
	return nil
}

// RefundPayment records the refund
func (g *MockGateway) RefundPayment(ctx context.Context, paymentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.RefundErr != nil {
		return g.RefundErr
	}
	g.refunded[paymentID] = true
	return nil
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}

// Cancelled reports whether the subscription was cancelled (test helper)
func (g *MockGateway) Cancelled(subscriptionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.subscriptions[subscriptionID]
	return ok && sub.Status == "cancelled"
}

// Refunded reports whether the payment was refunded (test helper)
func (g *MockGateway) Refunded(paymentID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refunded[paymentID]
}

// Register pre-seeds a subscription (test helper)
func (g *MockGateway) Register(subscriptionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subscriptions[subscriptionID] = &Subscription{ID: subscriptionID, Status: "created"}
}
