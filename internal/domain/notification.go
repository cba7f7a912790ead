package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotifyFeedback NotificationType = "feedback"
	NotifySystem   NotificationType = "system"
	NotifyAlert    NotificationType = "alert"
	NotifySocial   NotificationType = "social"
)

// Notification is a read-mostly record addressed to one user.
type Notification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"userId" json:"userId"` // Recipient
	From    string             `bson:"from" json:"from"`
	Message string             `bson:"message" json:"message"`
	Type    NotificationType   `bson:"type" json:"type"`
	Read    bool               `bson:"read" json:"read"`

	// Optional deep link to the content the notification is about.
	LinkToMediaID *primitive.ObjectID `bson:"linkToMediaId,omitempty" json:"linkToMediaId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
