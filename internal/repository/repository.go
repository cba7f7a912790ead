package repository

import (
	"context"

	"verum/academy-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// CancelFunc tears down a live subscription. Every subscription handle
// must be cancelled when its owning context goes away; after Cancel
// returns no further snapshot is delivered.
type CancelFunc func()

// UserRepository defines the interface for interacting with user profiles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.UserProfile) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.UserProfile, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.UserProfile, error)

	// UpdateFields performs a partial, single-document update. The store
	// never requires a full-document replace.
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error

	// Social graph mutations, implemented as atomic array union/remove.
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error

	// Stat rollups. Naive increments; the store serializes conflicting
	// writes but there is no cross-document transaction.
	IncrementStats(ctx context.Context, id primitive.ObjectID, minutes, goals, assists int) error
	SetRatingAvg(ctx context.Context, id primitive.ObjectID, avg float64) error

	// Subscribe delivers the profile document to fn on registration and
	// again on every subsequent change to it.
	Subscribe(ctx context.Context, id primitive.ObjectID, fn func(*domain.UserProfile)) (CancelFunc, error)
}

// MediaRepository defines the interface for interacting with media items.
type MediaRepository interface {
	Create(ctx context.Context, item *domain.MediaItem) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MediaItem, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MediaItem, error)
	GetPending(ctx context.Context) ([]domain.MediaItem, error)
	GetRecent(ctx context.Context, limit int) ([]domain.MediaItem, error)
	Update(ctx context.Context, item *domain.MediaItem) error

	AddLike(ctx context.Context, mediaID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, mediaID, userID primitive.ObjectID) error
	IncrementComments(ctx context.Context, mediaID primitive.ObjectID) error

	// Subscriptions deliver the full result set of their query on every
	// matching change (a snapshot, not a diff), starting with the
	// current state at registration time.
	SubscribeRecent(ctx context.Context, limit int, fn func([]domain.MediaItem)) (CancelFunc, error)
	SubscribeByUser(ctx context.Context, userID primitive.ObjectID, fn func([]domain.MediaItem)) (CancelFunc, error)
	SubscribePending(ctx context.Context, fn func([]domain.MediaItem)) (CancelFunc, error)
}

// MatchRepository defines the interface for interacting with agenda fixtures.
type MatchRepository interface {
	Create(ctx context.Context, event *domain.MatchEvent) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MatchEvent, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MatchEvent, error)
	GetAll(ctx context.Context) ([]domain.MatchEvent, error)
	Update(ctx context.Context, event *domain.MatchEvent) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SubscribeByUser(ctx context.Context, userID primitive.ObjectID, fn func([]domain.MatchEvent)) (CancelFunc, error)
}

// CommentRepository defines the interface for interacting with comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (primitive.ObjectID, error)
	GetByMediaID(ctx context.Context, mediaID primitive.ObjectID) ([]domain.Comment, error)
}

// NotificationRepository defines the interface for interacting with notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
}

// AwardRepository defines the interface for interacting with awards.
type AwardRepository interface {
	Create(ctx context.Context, award *domain.Award) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Award, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
