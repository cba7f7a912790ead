package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is an append-only record under a media item.
type Comment struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MediaID primitive.ObjectID `bson:"mediaId" json:"mediaId"`
	UserID  primitive.ObjectID `bson:"userId" json:"userId"`
	Text    string             `bson:"text" json:"text"`

	// Denormalized author presentation
	AuthorName   string `bson:"authorName,omitempty" json:"authorName,omitempty"`
	AuthorAvatar string `bson:"authorAvatar,omitempty" json:"authorAvatar,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
