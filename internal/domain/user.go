package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role represents user role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// SubscriptionStatus tracks the billing relationship with the gateway
type SubscriptionStatus string

const (
	SubscriptionNone      SubscriptionStatus = ""
	SubscriptionCreated   SubscriptionStatus = "created"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription is the user's reference to the gateway subscription resource
type Subscription struct {
	ID     string             `bson:"id,omitempty" json:"id,omitempty"`
	Status SubscriptionStatus `bson:"status,omitempty" json:"status,omitempty"`
}

// Avatar is a stored media reference
type Avatar struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

// PlaylistItem is a saved course with its poster cached for display
type PlaylistItem struct {
	CourseID bson.ObjectID `bson:"course" json:"course"`
	Poster   string        `bson:"poster" json:"poster"`
}

// User represents a user entity
type User struct {
	ID           bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string         `bson:"name" json:"name"`
	Email        string         `bson:"email" json:"email"`
	PasswordHash string         `bson:"password" json:"-"` // never serialize
	Role         Role           `bson:"role" json:"role"`
	Subscription Subscription   `bson:"subscription" json:"subscription"`
	Playlist     []PlaylistItem `bson:"playlist" json:"playlist"`
	Avatar       Avatar         `bson:"avatar" json:"avatar"`

	ResetPasswordToken  string    `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpire time.Time `bson:"reset_password_expire,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasActiveSubscription reports whether the user's subscription is active
func (u *User) HasActiveSubscription() bool {
	return u.Subscription.Status == SubscriptionActive
}

// InPlaylist reports whether the course is already saved
func (u *User) InPlaylist(courseID bson.ObjectID) bool {
	for _, item := range u.Playlist {
		if item.CourseID == courseID {
			return true
		}
	}
	return false
}
