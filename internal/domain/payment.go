package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Payment is an immutable receipt of a verified gateway payment. It is
// created once per successful verification and deleted when the
// subscription is cancelled.
type Payment struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Signature      string        `bson:"razorpay_signature" json:"razorpay_signature"`
	PaymentID      string        `bson:"razorpay_payment_id" json:"razorpay_payment_id"`
	SubscriptionID string        `bson:"razorpay_subscription_id" json:"razorpay_subscription_id"`
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
}

// StatsSnapshot is one persisted aggregate-stats row. The aggregator always
// targets the most recently created one.
type StatsSnapshot struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Views         int64         `bson:"views" json:"views"`
	Users         int64         `bson:"users" json:"users"`
	Subscriptions int64         `bson:"subscription" json:"subscription"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
}
