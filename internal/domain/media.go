package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaType distinguishes uploaded assets.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaPhoto MediaType = "photo"
)

// MediaCategory classifies what the clip or photo shows.
type MediaCategory string

const (
	CategoryMatch    MediaCategory = "Match"
	CategoryTraining MediaCategory = "Training"
	CategoryPhysical MediaCategory = "Physical"
	CategoryTactical MediaCategory = "Tactical"
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c MediaCategory) bool {
	switch c {
	case CategoryMatch, CategoryTraining, CategoryPhysical, CategoryTactical:
		return true
	}
	return false
}

// MediaStatus type for the review lifecycle
type MediaStatus string

const (
	StatusPending  MediaStatus = "pending"  // Awaiting coach review
	StatusApproved MediaStatus = "approved" // Visible in feeds; may still be promoted
	StatusRejected MediaStatus = "rejected" // Terminal
	StatusFeatured MediaStatus = "featured" // Terminal, promoted from approved
)

// CanReview reports whether a review decision may still be applied.
// Only pending items accept a first (and only) review.
func (s MediaStatus) CanReview() bool {
	return s == StatusPending
}

// CanPromote reports whether the item may be elevated to featured.
func (s MediaStatus) CanPromote() bool {
	return s == StatusApproved
}

// Visible reports whether the item belongs in public feeds.
func (s MediaStatus) Visible() bool {
	return s == StatusApproved || s == StatusFeatured
}

// MediaItem is one uploaded asset. The asset itself resides in S3;
// ThumbnailURL points at it (or its preview).
type MediaItem struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"` // Owner/author

	Type         MediaType     `bson:"type" json:"type"`
	Title        string        `bson:"title" json:"title"`
	Category     MediaCategory `bson:"category" json:"category"`
	ThumbnailURL string        `bson:"thumbnailUrl" json:"thumbnailUrl"`
	S3ObjectKey  string        `bson:"s3ObjectKey,omitempty" json:"-"` // Key in the media bucket, internal use
	Duration     *string       `bson:"duration,omitempty" json:"duration,omitempty"`

	// Review payload. CoachRating stays nil until an approving review.
	Status        MediaStatus `bson:"status" json:"status"`
	CoachRating   *float64    `bson:"coachRating,omitempty" json:"coachRating,omitempty"` // 0-10
	CoachFeedback string      `bson:"coachFeedback,omitempty" json:"coachFeedback,omitempty"`
	ReviewedAt    *time.Time  `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`

	// Social fields. Likes is a set of user ids maintained by the writer.
	Likes         []primitive.ObjectID `bson:"likes,omitempty" json:"likes"`
	CommentsCount int                  `bson:"commentsCount" json:"commentsCount"` // Denormalized, not atomically maintained
	Views         int                  `bson:"views" json:"views"`

	// Denormalized author presentation for feed cards.
	AuthorName   string `bson:"authorName,omitempty" json:"authorName,omitempty"`
	AuthorAvatar string `bson:"authorAvatar,omitempty" json:"authorAvatar,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LikedBy reports membership of userID in the likes set.
func (m *MediaItem) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range m.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
