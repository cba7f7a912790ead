package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSelfFollow        = errors.New("a user cannot follow themselves")
	ErrCommentValidation = errors.New("comment validation failed")
	ErrAwardValidation   = errors.New("award validation failed")
	ErrAwardNotFound     = errors.New("award not found")
	ErrNotificationOwner = errors.New("notification does not belong to this user")
)

type SocialService interface {
	// ToggleFollow flips the follow edge between actor and target and
	// reports whether the actor now follows the target. Both sides of the
	// edge are written; there is no transaction spanning the two profile
	// documents.
	ToggleFollow(ctx context.Context, actorID, targetID primitive.ObjectID) (following bool, err error)

	// AddComment appends a comment and bumps the denormalized counter on
	// the media document.
	AddComment(ctx context.Context, userID, mediaID primitive.ObjectID, text string) (*domain.Comment, error)
	CommentsForMedia(ctx context.Context, mediaID primitive.ObjectID) ([]domain.Comment, error)

	NotificationsForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID) error

	GrantAward(ctx context.Context, userID primitive.ObjectID, title, issuer, date string, icon domain.AwardIcon) (*domain.Award, error)
	AwardsForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Award, error)

	// RevokeAward removes a previously granted award.
	RevokeAward(ctx context.Context, awardID primitive.ObjectID) error
}

// socialService implements the SocialService interface.
type socialService struct {
	userRepo         repository.UserRepository
	mediaRepo        repository.MediaRepository
	commentRepo      repository.CommentRepository
	notificationRepo repository.NotificationRepository
	awardRepo        repository.AwardRepository
}

// NewSocialService creates a new instance of socialService.
func NewSocialService(
	userRepo repository.UserRepository,
	mediaRepo repository.MediaRepository,
	commentRepo repository.CommentRepository,
	notificationRepo repository.NotificationRepository,
	awardRepo repository.AwardRepository,
) SocialService {
	return &socialService{
		userRepo:         userRepo,
		mediaRepo:        mediaRepo,
		commentRepo:      commentRepo,
		notificationRepo: notificationRepo,
		awardRepo:        awardRepo,
	}
}

// ToggleFollow reads current membership on the actor's profile and then
// mutates both sides of the edge with array union/remove.
func (s *socialService) ToggleFollow(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	if actorID == targetID {
		return false, ErrSelfFollow
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrProfileNotFound
		}
		return false, err
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrProfileNotFound
		}
		return false, err
	}

	if actor.IsFollowing(targetID) {
		if err := s.userRepo.RemoveFollowing(ctx, actorID, targetID); err != nil {
			return true, err
		}
		if err := s.userRepo.RemoveFollower(ctx, targetID, actorID); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.userRepo.AddFollowing(ctx, actorID, targetID); err != nil {
		return false, err
	}
	if err := s.userRepo.AddFollower(ctx, targetID, actorID); err != nil {
		return false, err
	}

	s.notifyFollow(ctx, actor, targetID)
	return true, nil
}

// notifyFollow tells the target about a new follower. Best effort.
func (s *socialService) notifyFollow(ctx context.Context, actor *domain.UserProfile, targetID primitive.ObjectID) {
	actor.Canonicalize()
	n := &domain.Notification{
		UserID:  targetID,
		From:    actor.FullName,
		Message: fmt.Sprintf("%s started following you.", actor.FullName),
		Type:    domain.NotifySocial,
	}
	if _, err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Printf("WARN: follow notification failed for %s: %v", targetID.Hex(), err)
	}
}

func (s *socialService) AddComment(ctx context.Context, userID, mediaID primitive.ObjectID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrCommentValidation)
	}

	if _, err := s.mediaRepo.GetByID(ctx, mediaID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	author.Canonicalize()

	comment := &domain.Comment{
		MediaID:      mediaID,
		UserID:       userID,
		Text:         text,
		AuthorName:   author.FullName,
		AuthorAvatar: author.AvatarURL,
	}

	id, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	comment.ID = id

	// The counter is denormalized and not atomically tied to the insert;
	// a failure here leaves it behind by one.
	if err := s.mediaRepo.IncrementComments(ctx, mediaID); err != nil {
		log.Printf("WARN: comment counter bump failed for %s: %v", mediaID.Hex(), err)
	}

	return comment, nil
}

func (s *socialService) CommentsForMedia(ctx context.Context, mediaID primitive.ObjectID) ([]domain.Comment, error) {
	comments, err := s.commentRepo.GetByMediaID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (s *socialService) NotificationsForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error) {
	notifications, err := s.notificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (s *socialService) MarkNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	err := s.notificationRepo.MarkRead(ctx, notificationID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationOwner
	}
	return err
}

func (s *socialService) GrantAward(ctx context.Context, userID primitive.ObjectID, title, issuer, date string, icon domain.AwardIcon) (*domain.Award, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrAwardValidation)
	}
	switch icon {
	case domain.IconTrophy, domain.IconMedal, domain.IconStar:
	default:
		return nil, fmt.Errorf("%w: unknown icon %q", ErrAwardValidation, icon)
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	award := &domain.Award{
		UserID: userID,
		Title:  strings.TrimSpace(title),
		Issuer: issuer,
		Icon:   icon,
		Date:   date,
	}

	id, err := s.awardRepo.Create(ctx, award)
	if err != nil {
		return nil, err
	}
	award.ID = id
	return award, nil
}

func (s *socialService) RevokeAward(ctx context.Context, awardID primitive.ObjectID) error {
	err := s.awardRepo.Delete(ctx, awardID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAwardNotFound
	}
	return err
}

func (s *socialService) AwardsForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Award, error) {
	awards, err := s.awardRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(awards, func(i, j int) bool {
		return awards[i].Date > awards[j].Date
	})
	return awards, nil
}
