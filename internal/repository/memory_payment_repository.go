package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// MemoryPaymentRepository is an in-memory PaymentRepository for tests
type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[bson.ObjectID]*domain.Payment

	// DeleteErr, when set, is returned by Delete; lets tests exercise the
	// partial-failure path after a gateway call succeeded.
	DeleteErr error
}

// NewMemoryPaymentRepository creates an empty in-memory payment repository
func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{payments: make(map[bson.ObjectID]*domain.Payment)}
}

// Create inserts a payment receipt
func (r *MemoryPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment.ID.IsZero() {
		payment.ID = bson.NewObjectID()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	cp := *payment
	r.payments[payment.ID] = &cp
	return nil
}

// GetBySubscriptionID returns the receipt or (nil, nil)
func (r *MemoryPaymentRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.SubscriptionID == subscriptionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// Delete removes the receipt
func (r *MemoryPaymentRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	if _, ok := r.payments[id]; !ok {
		return domain.E(domain.KindNotFound, "Payment not found")
	}
	delete(r.payments, id)
	return nil
}

// Len reports how many receipts are stored (test helper)
func (r *MemoryPaymentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}
