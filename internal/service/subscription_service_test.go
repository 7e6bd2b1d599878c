package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/gateway"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/pkg/saga"
)

const testGatewaySecret = "test-gateway-secret"

type subscriptionFixture struct {
	users    *repository.MemoryUserRepository
	payments *repository.MemoryPaymentRepository
	billing  *gateway.MockGateway
	store    *saga.MemoryStore
	service  SubscriptionService
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()
	f := &subscriptionFixture{
		users:    repository.NewMemoryUserRepository(),
		payments: repository.NewMemoryPaymentRepository(),
		billing:  gateway.NewMockGateway(),
		store:    saga.NewMemoryStore(),
	}
	f.service = NewSubscriptionService(f.users, f.payments, f.billing, f.store, &saga.NoOpLogger{}, &SubscriptionServiceConfig{
		PlanID:        "plan_test",
		GatewaySecret: testGatewaySecret,
		RefundWindow:  7 * 24 * time.Hour,
	})
	return f
}

func (f *subscriptionFixture) addUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:  "Test User",
		Email: string(role) + "@example.com",
		Role:  role,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func sign(paymentID, subscriptionID string) string {
	mac := hmac.New(sha256.New, []byte(testGatewaySecret))
	mac.Write([]byte(paymentID + "|" + subscriptionID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSubscribe(t *testing.T) {
	t.Run("creates gateway subscription and stores the reference", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		user := f.addUser(t, domain.RoleUser)

		subID, err := f.service.Subscribe(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, subID)

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, subID, stored.Subscription.ID)
		assert.Equal(t, domain.SubscriptionCreated, stored.Subscription.Status)
	})

	t.Run("rejects admins", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		admin := f.addUser(t, domain.RoleAdmin)

		_, err := f.service.Subscribe(context.Background(), admin.ID)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		_, err := f.service.Subscribe(context.Background(), bson.NewObjectID())
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestVerifyPayment(t *testing.T) {
	t.Run("valid signature activates and stores a receipt", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		user := f.addUser(t, domain.RoleUser)
		subID, err := f.service.Subscribe(context.Background(), user.ID)
		require.NoError(t, err)

		err = f.service.VerifyPayment(context.Background(), user.ID, sign("pay_1", subID), "pay_1", subID)
		require.NoError(t, err)

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionActive, stored.Subscription.Status)
		assert.True(t, stored.HasActiveSubscription())

		receipt, err := f.payments.GetBySubscriptionID(context.Background(), subID)
		require.NoError(t, err)
		require.NotNil(t, receipt)
		assert.Equal(t, "pay_1", receipt.PaymentID)
	})

	t.Run("forged signature leaves everything untouched", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		user := f.addUser(t, domain.RoleUser)
		subID, err := f.service.Subscribe(context.Background(), user.ID)
		require.NoError(t, err)

		err = f.service.VerifyPayment(context.Background(), user.ID, "deadbeef", "pay_1", subID)
		assert.ErrorIs(t, err, ErrSignatureMismatch)

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionCreated, stored.Subscription.Status)
		assert.Zero(t, f.payments.Len())
	})

	t.Run("signature over a different subscription id is rejected", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		user := f.addUser(t, domain.RoleUser)
		_, err := f.service.Subscribe(context.Background(), user.ID)
		require.NoError(t, err)

		// Signed against an id the user never held
		err = f.service.VerifyPayment(context.Background(), user.ID, sign("pay_1", "sub_other"), "pay_1", "sub_other")
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})
}

func TestCancel(t *testing.T) {
	activate := func(t *testing.T, f *subscriptionFixture, user *domain.User) string {
		t.Helper()
		subID, err := f.service.Subscribe(context.Background(), user.ID)
		require.NoError(t, err)
		require.NoError(t, f.service.VerifyPayment(context.Background(), user.ID, sign("pay_1", subID), "pay_1", subID))
		return subID
	}

	t.Run("inside the refund window: cancelled and refunded", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		user := f.addUser(t, domain.RoleUser)
		subID := activate(t, f, user)

		refunded, err := f.service.Cancel(context.Background(), user.ID)
		require.NoError(t, err)
		assert.True(t, refunded)
		assert.True(t, f.billing.Cancelled(subID))
		assert.True(t, f.billing.Refunded("pay_1"))

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Subscription.ID)
		assert.Empty(t, stored.Subscription.Status)
		assert.Zero(t, f.payments.Len())
	})

	t.Run("outside the refund window: cancelled, no refund", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		user := f.addUser(t, domain.RoleUser)
		subID := activate(t, f, user)

		receipt, err := f.payments.GetBySubscriptionID(context.Background(), subID)
		require.NoError(t, err)
		receipt.CreatedAt = time.Now().Add(-8 * 24 * time.Hour)
		require.NoError(t, f.payments.Create(context.Background(), receipt))

		refunded, err := f.service.Cancel(context.Background(), user.ID)
		require.NoError(t, err)
		assert.False(t, refunded)
		assert.True(t, f.billing.Cancelled(subID))
		assert.False(t, f.billing.Refunded("pay_1"))

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Subscription.ID)
	})

	t.Run("no receipt", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		user := f.addUser(t, domain.RoleUser)
		_, err := f.service.Subscribe(context.Background(), user.ID)
		require.NoError(t, err)

		_, err = f.service.Cancel(context.Background(), user.ID)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("local cleanup failure after gateway cancel is a partial failure", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		user := f.addUser(t, domain.RoleUser)
		subID := activate(t, f, user)

		f.payments.DeleteErr = assert.AnError

		_, err := f.service.Cancel(context.Background(), user.ID)
		assert.Equal(t, domain.KindPartialFailure, domain.KindOf(err))
		// The gateway side effect did happen
		assert.True(t, f.billing.Cancelled(subID))

		// And the stuck instance is visible for reconciliation
		orch := f.service.(*subscriptionService).orchestrator
		unfinished, err := orch.Unfinished(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, unfinished, 1)
		assert.Equal(t, cancelSagaName, unfinished[0].DefinitionID)
	})

	t.Run("gateway cancel failure leaves local state intact", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		user := f.addUser(t, domain.RoleUser)
		activate(t, f, user)

		f.billing.CancelErr = assert.AnError

		_, err := f.service.Cancel(context.Background(), user.ID)
		assert.Equal(t, domain.KindInternal, domain.KindOf(err))

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionActive, stored.Subscription.Status)
		assert.Equal(t, 1, f.payments.Len())
	})
}
