package service

import (
	"context"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultFeedLimit caps the global feed when the caller gives no limit.
const DefaultFeedLimit = 50

// FeedService is the read-only aggregation over media documents: the
// global feed (all users, most recent first) and per-user galleries.
// Every subscription delivers the full, already-sorted result set on each
// matching change; callers re-render, they never patch.
type FeedService interface {
	GlobalFeed(ctx context.Context, limit int) ([]domain.MediaItem, error)
	UserFeed(ctx context.Context, userID primitive.ObjectID, visibleOnly bool) ([]domain.MediaItem, error)

	SubscribeGlobal(ctx context.Context, limit int, fn func([]domain.MediaItem)) (repository.CancelFunc, error)
	SubscribeUser(ctx context.Context, userID primitive.ObjectID, visibleOnly bool, fn func([]domain.MediaItem)) (repository.CancelFunc, error)
	SubscribePending(ctx context.Context, fn func([]domain.MediaItem)) (repository.CancelFunc, error)
}

// feedService implements the FeedService interface.
type feedService struct {
	mediaRepo    repository.MediaRepository
	defaultLimit int
}

// NewFeedService creates a new instance of feedService.
func NewFeedService(mediaRepo repository.MediaRepository, defaultLimit int) FeedService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultFeedLimit
	}
	return &feedService{
		mediaRepo:    mediaRepo,
		defaultLimit: defaultLimit,
	}
}

func (s *feedService) limitOrDefault(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	return limit
}

// present sorts newest-first in-process and then truncates. The store may
// return results in any order (its ordering needs index configuration we
// do not assume), so the sort here is what guarantees feed order.
func present(items []domain.MediaItem, limit int) []domain.MediaItem {
	SortMediaByDateDesc(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// filterVisible keeps only approved and featured items.
func filterVisible(items []domain.MediaItem) []domain.MediaItem {
	visible := items[:0]
	for _, item := range items {
		if item.Status.Visible() {
			visible = append(visible, item)
		}
	}
	return visible
}

func (s *feedService) GlobalFeed(ctx context.Context, limit int) ([]domain.MediaItem, error) {
	limit = s.limitOrDefault(limit)
	items, err := s.mediaRepo.GetRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return present(items, limit), nil
}

// UserFeed returns one owner's items. visibleOnly hides pending and
// rejected items, which is how every viewer other than the owner (or an
// admin) sees a gallery.
func (s *feedService) UserFeed(ctx context.Context, userID primitive.ObjectID, visibleOnly bool) ([]domain.MediaItem, error) {
	items, err := s.mediaRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if visibleOnly {
		items = filterVisible(items)
	}
	return present(items, 0), nil
}

func (s *feedService) SubscribeGlobal(ctx context.Context, limit int, fn func([]domain.MediaItem)) (repository.CancelFunc, error) {
	limit = s.limitOrDefault(limit)
	return s.mediaRepo.SubscribeRecent(ctx, limit, func(items []domain.MediaItem) {
		fn(present(items, limit))
	})
}

func (s *feedService) SubscribeUser(ctx context.Context, userID primitive.ObjectID, visibleOnly bool, fn func([]domain.MediaItem)) (repository.CancelFunc, error) {
	return s.mediaRepo.SubscribeByUser(ctx, userID, func(items []domain.MediaItem) {
		if visibleOnly {
			items = filterVisible(items)
		}
		fn(present(items, 0))
	})
}

func (s *feedService) SubscribePending(ctx context.Context, fn func([]domain.MediaItem)) (repository.CancelFunc, error) {
	return s.mediaRepo.SubscribePending(ctx, func(items []domain.MediaItem) {
		fn(present(items, 0))
	})
}
