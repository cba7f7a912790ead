package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
	"time"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/repository"
	"verum/academy-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMediaNotFound      = errors.New("media item not found")
	ErrMediaValidation    = errors.New("media validation failed")
	ErrInvalidDecision    = errors.New("review decision must be approved or rejected")
	ErrInvalidRating      = errors.New("coach rating must be between 0 and 10")
	ErrAlreadyReviewed    = errors.New("media item has already been reviewed")
	ErrPromoteNotAllowed  = errors.New("only approved media can be promoted to featured")
	ErrMediaUploadURL     = errors.New("failed to generate media upload URL")
	ErrReviewWriteFailed  = errors.New("review could not be saved; item left in its prior state")
	ErrMediaContentType   = errors.New("content type does not match the media type")
	ErrMediaOwnerRequired = errors.New("media owner is required")
)

// SubmitMediaInput is what an athlete provides when submitting an asset
// for review.
type SubmitMediaInput struct {
	Type         domain.MediaType
	Title        string
	Category     domain.MediaCategory
	ObjectKey    string
	ThumbnailURL string
	Duration     *string
}

type MediaService interface {
	// UploadURL starts the two-phase upload: the client PUTs the asset to
	// the returned URL, then calls Submit with the object key.
	UploadURL(ctx context.Context, userID primitive.ObjectID, mediaType domain.MediaType, contentType string) (*UploadURLResponse, error)

	// Submit creates a new item in status pending with no rating.
	Submit(ctx context.Context, userID primitive.ObjectID, input SubmitMediaInput) (*domain.MediaItem, error)

	// Review applies the one-and-only review decision to a pending item.
	// Re-submitting the same terminal decision is a no-op; a conflicting
	// decision fails with ErrAlreadyReviewed.
	Review(ctx context.Context, reviewerID, mediaID primitive.ObjectID, decision domain.MediaStatus, rating *float64, feedback string) (*domain.MediaItem, error)

	// Promote elevates an approved item to featured.
	Promote(ctx context.Context, mediaID primitive.ObjectID) (*domain.MediaItem, error)

	// AggregateRatingForUser recomputes the mean coach rating over the
	// athlete's rated items. The persisted stats.ratingAvg is the system
	// of record; this is the suggested value that review flows commit.
	AggregateRatingForUser(ctx context.Context, userID primitive.ObjectID) (float64, error)

	// ToggleLike flips membership of userID in the item's likes set and
	// reports the resulting state.
	ToggleLike(ctx context.Context, mediaID, userID primitive.ObjectID) (liked bool, err error)

	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MediaItem, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.MediaItem, error)
	GetPending(ctx context.Context) ([]domain.MediaItem, error)
}

// mediaService implements the MediaService interface.
type mediaService struct {
	mediaRepo        repository.MediaRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	fileStorage      storage.FileStorage
}

// NewMediaService creates a new instance of mediaService.
func NewMediaService(
	mediaRepo repository.MediaRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	fileStorage storage.FileStorage,
) MediaService {
	return &mediaService{
		mediaRepo:        mediaRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		fileStorage:      fileStorage,
	}
}

// AggregateRating is the pure rollup over a media list: the arithmetic
// mean of all non-nil coach ratings, or 0 when no rated items exist.
func AggregateRating(items []domain.MediaItem) float64 {
	var sum float64
	var count int
	for i := range items {
		if items[i].CoachRating != nil {
			sum += *items[i].CoachRating
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// SortMediaByDateDesc orders items newest first. The store's native
// ordering is never relied on; every presentation path sorts in-process.
func SortMediaByDateDesc(items []domain.MediaItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// UploadURL generates a presigned PUT URL for a media asset.
func (s *mediaService) UploadURL(ctx context.Context, userID primitive.ObjectID, mediaType domain.MediaType, contentType string) (*UploadURLResponse, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrMediaOwnerRequired
	}

	ct := strings.ToLower(contentType)
	switch mediaType {
	case domain.MediaVideo:
		if !strings.HasPrefix(ct, "video/") {
			return nil, ErrMediaContentType
		}
	case domain.MediaPhoto:
		if !strings.HasPrefix(ct, "image/") {
			return nil, ErrMediaContentType
		}
	default:
		return nil, fmt.Errorf("%w: unknown media type %q", ErrMediaValidation, mediaType)
	}

	fileExtension := ""
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("media", userID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrMediaUploadURL
	}

	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// Submit creates a new media item awaiting review. The item appears in the
// owner's media list and the pending-review queue via their subscriptions,
// and in nobody's public feed until disposed.
func (s *mediaService) Submit(ctx context.Context, userID primitive.ObjectID, input SubmitMediaInput) (*domain.MediaItem, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrMediaOwnerRequired
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrMediaValidation)
	}
	if !domain.ValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrMediaValidation, input.Category)
	}
	if input.Type != domain.MediaVideo && input.Type != domain.MediaPhoto {
		return nil, fmt.Errorf("%w: unknown media type %q", ErrMediaValidation, input.Type)
	}
	if input.ObjectKey == "" && input.ThumbnailURL == "" {
		return nil, fmt.Errorf("%w: an uploaded asset is required", ErrMediaValidation)
	}

	// Denormalize author presentation for feed cards.
	owner, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMediaOwnerRequired
		}
		return nil, err
	}
	owner.Canonicalize()

	thumbnail := input.ThumbnailURL
	if thumbnail == "" && input.ObjectKey != "" {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, input.ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			log.Printf("WARN: could not presign thumbnail for %s: %v", input.ObjectKey, err)
		} else {
			thumbnail = url
		}
	}

	item := &domain.MediaItem{
		UserID:       userID,
		Type:         input.Type,
		Title:        strings.TrimSpace(input.Title),
		Category:     input.Category,
		ThumbnailURL: thumbnail,
		S3ObjectKey:  input.ObjectKey,
		Duration:     input.Duration,
		Status:       domain.StatusPending,
		Likes:        []primitive.ObjectID{},
		AuthorName:   owner.FullName,
		AuthorAvatar: owner.AvatarURL,
	}

	id, err := s.mediaRepo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = id
	return item, nil
}

// Review applies the disposition of a pending item. A failed store write
// surfaces ErrReviewWriteFailed and leaves the item in its prior state;
// callers that removed the item from a pending list optimistically must
// put it back.
func (s *mediaService) Review(ctx context.Context, reviewerID, mediaID primitive.ObjectID, decision domain.MediaStatus, rating *float64, feedback string) (*domain.MediaItem, error) {
	if decision != domain.StatusApproved && decision != domain.StatusRejected {
		return nil, ErrInvalidDecision
	}
	// Out-of-range ratings are rejected, never clamped, and nothing is
	// mutated when validation fails.
	if rating != nil && (*rating < 0 || *rating > 10) {
		return nil, ErrInvalidRating
	}

	item, err := s.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}

	if !item.Status.CanReview() {
		// Re-invoking with the same terminal decision is idempotent.
		if item.Status == decision {
			return item, nil
		}
		return nil, ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	item.Status = decision
	item.CoachFeedback = feedback
	item.ReviewedAt = &now
	if decision == domain.StatusApproved {
		item.CoachRating = rating
	}

	if err := s.mediaRepo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMediaNotFound
		}
		log.Printf("ERROR: review write failed for %s: %v", mediaID.Hex(), err)
		return nil, ErrReviewWriteFailed
	}

	// The persisted ratingAvg is the system of record; converge it with
	// the recomputed mean after every approving review.
	if decision == domain.StatusApproved && rating != nil {
		if avg, err := s.AggregateRatingForUser(ctx, item.UserID); err != nil {
			log.Printf("WARN: rating rollup failed for %s: %v", item.UserID.Hex(), err)
		} else if err := s.userRepo.SetRatingAvg(ctx, item.UserID, avg); err != nil {
			log.Printf("WARN: persisting ratingAvg failed for %s: %v", item.UserID.Hex(), err)
		}
	}

	s.notifyReview(ctx, item, decision)

	return item, nil
}

// notifyReview tells the owner about the disposition. Best effort.
func (s *mediaService) notifyReview(ctx context.Context, item *domain.MediaItem, decision domain.MediaStatus) {
	message := fmt.Sprintf("Your %s %q has been %s.", item.Type, item.Title, decision)
	mediaID := item.ID
	n := &domain.Notification{
		UserID:        item.UserID,
		From:          "Coaching staff",
		Message:       message,
		Type:          domain.NotifyFeedback,
		LinkToMediaID: &mediaID,
	}
	if _, err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Printf("WARN: review notification failed for %s: %v", item.ID.Hex(), err)
	}
}

// Promote elevates approved media to featured. Featured and rejected are
// terminal; nothing transitions out of them.
func (s *mediaService) Promote(ctx context.Context, mediaID primitive.ObjectID) (*domain.MediaItem, error) {
	item, err := s.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}

	if item.Status == domain.StatusFeatured {
		return item, nil
	}
	if !item.Status.CanPromote() {
		return nil, ErrPromoteNotAllowed
	}

	item.Status = domain.StatusFeatured
	if err := s.mediaRepo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return item, nil
}

// AggregateRatingForUser recomputes the mean over the athlete's currently
// stored items.
func (s *mediaService) AggregateRatingForUser(ctx context.Context, userID primitive.ObjectID) (float64, error) {
	items, err := s.mediaRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return AggregateRating(items), nil
}

// ToggleLike reads current membership and flips it. There is no atomic
// toggle on the store side; the read-then-union/remove pair is the
// documented pattern and toggling twice restores the original set.
func (s *mediaService) ToggleLike(ctx context.Context, mediaID, userID primitive.ObjectID) (bool, error) {
	item, err := s.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrMediaNotFound
		}
		return false, err
	}

	if item.LikedBy(userID) {
		if err := s.mediaRepo.RemoveLike(ctx, mediaID, userID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.mediaRepo.AddLike(ctx, mediaID, userID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *mediaService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MediaItem, error) {
	item, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *mediaService) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.MediaItem, error) {
	items, err := s.mediaRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	SortMediaByDateDesc(items)
	return items, nil
}

func (s *mediaService) GetPending(ctx context.Context) ([]domain.MediaItem, error) {
	items, err := s.mediaRepo.GetPending(ctx)
	if err != nil {
		return nil, err
	}
	SortMediaByDateDesc(items)
	return items, nil
}
