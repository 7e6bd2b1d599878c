package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/gateway"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/pkg/saga"
)

// ErrSignatureMismatch is returned when the checkout callback signature does
// not match the expected HMAC. The payment handler redirects on this error
// instead of answering JSON.
var ErrSignatureMismatch = errors.New("payment signature mismatch")

const cancelSagaName = "cancel-subscription"

// SubscriptionService drives the user's billing relationship with the
// external gateway: none -> created -> active -> none.
type SubscriptionService interface {
	// Subscribe creates a gateway subscription and stores its reference on
	// the user. Admins may not hold subscriptions.
	Subscribe(ctx context.Context, userID bson.ObjectID) (string, error)
	// VerifyPayment checks the checkout signature; on match it persists a
	// receipt and activates the subscription
	VerifyPayment(ctx context.Context, userID bson.ObjectID, signature, paymentID, subscriptionID string) error
	// Cancel cancels at the gateway, refunds inside the window, deletes the
	// receipt and clears the user's subscription. Returns whether a refund
	// was granted.
	Cancel(ctx context.Context, userID bson.ObjectID) (bool, error)
}

// SubscriptionServiceConfig holds billing settings
type SubscriptionServiceConfig struct {
	PlanID        string
	TotalCount    int
	GatewaySecret string
	RefundWindow  time.Duration
}

type subscriptionService struct {
	users        repository.UserRepository
	payments     repository.PaymentRepository
	billing      gateway.BillingGateway
	orchestrator *saga.Orchestrator
	config       *SubscriptionServiceConfig
}

// NewSubscriptionService creates a SubscriptionService. The cancel flow is
// registered as a saga so its state survives a crash between the external
// gateway calls and the local cleanup.
func NewSubscriptionService(
	users repository.UserRepository,
	payments repository.PaymentRepository,
	billing gateway.BillingGateway,
	store saga.Store,
	logger saga.Logger,
	config *SubscriptionServiceConfig,
) SubscriptionService {
	if config.TotalCount == 0 {
		config.TotalCount = 12
	}
	if config.RefundWindow == 0 {
		config.RefundWindow = 7 * 24 * time.Hour
	}

	s := &subscriptionService{
		users:    users,
		payments: payments,
		billing:  billing,
		config:   config,
	}
	s.orchestrator = saga.NewOrchestrator(&saga.OrchestratorConfig{Store: store, Logger: logger})
	if err := s.orchestrator.RegisterDefinition(s.cancelDefinition()); err != nil {
		// Registration only fails on duplicate names within one orchestrator
		panic(err)
	}
	return s
}

func (s *subscriptionService) loadUser(ctx context.Context, userID bson.ObjectID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "Failed to load user", err)
	}
	if user == nil {
		return nil, domain.E(domain.KindNotFound, "User not found")
	}
	return user, nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID bson.ObjectID) (string, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.IsAdmin() {
		return "", domain.E(domain.KindForbidden, "Admin can't buy subscription")
	}

	sub, err := s.billing.CreateSubscription(ctx, s.config.PlanID, s.config.TotalCount)
	if err != nil {
		return "", domain.Wrap(domain.KindInternal, "Failed to create subscription", err)
	}

	user.Subscription.ID = sub.ID
	user.Subscription.Status = domain.SubscriptionStatus(sub.Status)
	if err := s.users.Update(ctx, user); err != nil {
		return "", err
	}
	return sub.ID, nil
}

// signature computes the expected checkout HMAC: SHA-256 over
// "paymentID|subscriptionID" keyed by the shared gateway secret.
func (s *subscriptionService) signature(paymentID, subscriptionID string) string {
	mac := hmac.New(sha256.New, []byte(s.config.GatewaySecret))
	mac.Write([]byte(paymentID + "|" + subscriptionID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *subscriptionService) VerifyPayment(ctx context.Context, userID bson.ObjectID, signature, paymentID, subscriptionID string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	// The stored subscription id is authoritative, not the one the client
	// posted back
	expected := s.signature(paymentID, user.Subscription.ID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}

	payment := &domain.Payment{
		Signature:      signature,
		PaymentID:      paymentID,
		SubscriptionID: subscriptionID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to save payment", err)
	}

	user.Subscription.Status = domain.SubscriptionActive
	return s.users.Update(ctx, user)
}

// cancelDefinition builds the cancellation saga. The first two steps mutate
// the external gateway and cannot be rolled back; the last two are local.
func (s *subscriptionService) cancelDefinition() *saga.Definition {
	return saga.NewDefinition(cancelSagaName).
		AddStep(&saga.Step{
			Name:     "gateway-cancel",
			External: true,
			Execute: func(ctx context.Context, data saga.Data) (saga.Data, error) {
				return nil, s.billing.CancelSubscription(ctx, data["subscription_id"])
			},
		}).
		AddStep(&saga.Step{
			Name:     "gateway-refund",
			External: true,
			Execute: func(ctx context.Context, data saga.Data) (saga.Data, error) {
				paidAt, err := time.Parse(time.RFC3339Nano, data["paid_at"])
				if err != nil {
					return nil, err
				}
				if time.Since(paidAt) >= s.config.RefundWindow {
					return saga.Data{"refund": "denied"}, nil
				}
				if err := s.billing.RefundPayment(ctx, data["payment_id"]); err != nil {
					return nil, err
				}
				return saga.Data{"refund": "granted"}, nil
			},
		}).
		AddStep(&saga.Step{
			Name: "delete-receipt",
			Execute: func(ctx context.Context, data saga.Data) (saga.Data, error) {
				receiptID, err := bson.ObjectIDFromHex(data["receipt_id"])
				if err != nil {
					return nil, err
				}
				return nil, s.payments.Delete(ctx, receiptID)
			},
		}).
		AddStep(&saga.Step{
			Name: "clear-subscription",
			Execute: func(ctx context.Context, data saga.Data) (saga.Data, error) {
				userID, err := bson.ObjectIDFromHex(data["user_id"])
				if err != nil {
					return nil, err
				}
				user, err := s.loadUser(ctx, userID)
				if err != nil {
					return nil, err
				}
				user.Subscription = domain.Subscription{}
				return nil, s.users.Update(ctx, user)
			},
		})
}

func (s *subscriptionService) Cancel(ctx context.Context, userID bson.ObjectID) (bool, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}

	payment, err := s.payments.GetBySubscriptionID(ctx, user.Subscription.ID)
	if err != nil {
		return false, domain.Wrap(domain.KindInternal, "Failed to look up payment", err)
	}
	if payment == nil {
		return false, domain.E(domain.KindNotFound, "Payment not found")
	}

	instance, err := s.orchestrator.Execute(ctx, cancelSagaName, saga.Data{
		"user_id":         user.ID.Hex(),
		"subscription_id": user.Subscription.ID,
		"payment_id":      payment.PaymentID,
		"receipt_id":      payment.ID.Hex(),
		"paid_at":         payment.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		if instance != nil && instance.ExternalEffectApplied() {
			// The gateway cancel (and possibly refund) went through but the
			// local cleanup did not; operators must reconcile from the saga
			// store
			return false, domain.Wrap(domain.KindPartialFailure,
				"Subscription cancelled at gateway but local cleanup failed", err)
		}
		return false, domain.Wrap(domain.KindInternal, "Failed to cancel subscription", err)
	}

	return instance.Data["refund"] == "granted", nil
}
