package service

import (
	"context"
	"sync"
	"time"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. Subscriptions are driven manually via the
// emit helpers so tests control exactly when snapshots are delivered.

type fakeSub[T any] struct {
	fn        func(T)
	cancelled bool
}

// --- fakeUserRepo ---

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]*domain.UserProfile
	updates []map[string]interface{}
	subs    map[primitive.ObjectID][]*fakeSub[*domain.UserProfile]

	incMinutes, incGoals, incAssists int
	ratingAvg                        map[primitive.ObjectID]float64
	failUpdate                       error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     make(map[primitive.ObjectID]*domain.UserProfile),
		subs:      make(map[primitive.ObjectID][]*fakeSub[*domain.UserProfile]),
		ratingAvg: make(map[primitive.ObjectID]float64),
	}
}

func (r *fakeUserRepo) put(u *domain.UserProfile) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == primitive.NilObjectID {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	r.users[u.ID] = &cp
	return u.ID
}

func copyUser(u *domain.UserProfile) *domain.UserProfile {
	cp := *u
	return &cp
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.UserProfile) (primitive.ObjectID, error) {
	return r.put(user), nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UserProfile
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.updates = append(r.updates, fields)
	for k, v := range fields {
		switch k {
		case "fullName":
			u.FullName = v.(string)
		case "username":
			u.Username = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "position":
			u.Position = v.(string)
		case "club":
			u.Club = v.(string)
		case "avatarUrl":
			u.AvatarURL = v.(string)
		case "stats":
			if s, ok := v.(*domain.Stats); ok {
				u.Stats = s
			}
		case "physical":
			if p, ok := v.(*domain.Physical); ok {
				u.Physical = p
			}
		case "role":
			if role, ok := v.(domain.Role); ok {
				u.Role = role
			}
		}
	}
	return nil
}

func (r *fakeUserRepo) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func (r *fakeUserRepo) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.arrayOp(userID, func(u *domain.UserProfile) {
		u.Followers = addID(u.Followers, followerID)
	})
}

func (r *fakeUserRepo) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.arrayOp(userID, func(u *domain.UserProfile) {
		u.Followers = removeID(u.Followers, followerID)
	})
}

func (r *fakeUserRepo) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return r.arrayOp(userID, func(u *domain.UserProfile) {
		u.Following = addID(u.Following, targetID)
	})
}

func (r *fakeUserRepo) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return r.arrayOp(userID, func(u *domain.UserProfile) {
		u.Following = removeID(u.Following, targetID)
	})
}

func (r *fakeUserRepo) arrayOp(id primitive.ObjectID, mutate func(*domain.UserProfile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	mutate(u)
	return nil
}

func (r *fakeUserRepo) IncrementStats(ctx context.Context, id primitive.ObjectID, minutes, goals, assists int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Stats == nil {
		u.Stats = domain.NewDefaultStats()
	}
	u.Stats.Matches++
	u.Stats.MinutesPlayed += minutes
	u.Stats.Goals += goals
	u.Stats.Assists += assists
	r.incMinutes += minutes
	r.incGoals += goals
	r.incAssists += assists
	return nil
}

func (r *fakeUserRepo) SetRatingAvg(ctx context.Context, id primitive.ObjectID, avg float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	r.ratingAvg[id] = avg
	return nil
}

func (r *fakeUserRepo) Subscribe(ctx context.Context, id primitive.ObjectID, fn func(*domain.UserProfile)) (repository.CancelFunc, error) {
	r.mu.Lock()
	sub := &fakeSub[*domain.UserProfile]{fn: fn}
	r.subs[id] = append(r.subs[id], sub)
	u := r.users[id]
	r.mu.Unlock()

	// Initial snapshot at registration, like the real store.
	if u != nil {
		fn(copyUser(u))
	}
	return func() {
		r.mu.Lock()
		sub.cancelled = true
		r.mu.Unlock()
	}, nil
}

// emitUser redelivers the user's current document to live subscribers.
func (r *fakeUserRepo) emitUser(id primitive.ObjectID) {
	r.mu.Lock()
	u := r.users[id]
	var fns []func(*domain.UserProfile)
	for _, sub := range r.subs[id] {
		if !sub.cancelled {
			fns = append(fns, sub.fn)
		}
	}
	r.mu.Unlock()
	if u == nil {
		return
	}
	for _, fn := range fns {
		fn(copyUser(u))
	}
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// --- fakeMediaRepo ---

type fakeMediaRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*domain.MediaItem

	userSubs    map[primitive.ObjectID][]*fakeSub[[]domain.MediaItem]
	recentSubs  []*fakeSub[[]domain.MediaItem]
	pendingSubs []*fakeSub[[]domain.MediaItem]

	failUpdate error
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{
		items:    make(map[primitive.ObjectID]*domain.MediaItem),
		userSubs: make(map[primitive.ObjectID][]*fakeSub[[]domain.MediaItem]),
	}
}

func (r *fakeMediaRepo) put(item *domain.MediaItem) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == primitive.NilObjectID {
		item.ID = primitive.NewObjectID()
	}
	cp := *item
	r.items[item.ID] = &cp
	return item.ID
}

func (r *fakeMediaRepo) Create(ctx context.Context, item *domain.MediaItem) (primitive.ObjectID, error) {
	return r.put(item), nil
}

func (r *fakeMediaRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeMediaRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MediaItem
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeMediaRepo) GetPending(ctx context.Context) ([]domain.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MediaItem
	for _, item := range r.items {
		if item.Status == domain.StatusPending {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeMediaRepo) GetRecent(ctx context.Context, limit int) ([]domain.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MediaItem
	for _, item := range r.items {
		if item.Status.Visible() {
			out = append(out, *item)
		}
	}
	// No ordering on purpose; callers must sort.
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMediaRepo) Update(ctx context.Context, item *domain.MediaItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.items[item.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeMediaRepo) AddLike(ctx context.Context, mediaID, userID primitive.ObjectID) error {
	return r.mutate(mediaID, func(item *domain.MediaItem) {
		item.Likes = addID(item.Likes, userID)
	})
}

func (r *fakeMediaRepo) RemoveLike(ctx context.Context, mediaID, userID primitive.ObjectID) error {
	return r.mutate(mediaID, func(item *domain.MediaItem) {
		item.Likes = removeID(item.Likes, userID)
	})
}

func (r *fakeMediaRepo) IncrementComments(ctx context.Context, mediaID primitive.ObjectID) error {
	return r.mutate(mediaID, func(item *domain.MediaItem) {
		item.CommentsCount++
	})
}

func (r *fakeMediaRepo) mutate(id primitive.ObjectID, fn func(*domain.MediaItem)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(item)
	return nil
}

func (r *fakeMediaRepo) SubscribeRecent(ctx context.Context, limit int, fn func([]domain.MediaItem)) (repository.CancelFunc, error) {
	r.mu.Lock()
	sub := &fakeSub[[]domain.MediaItem]{fn: fn}
	r.recentSubs = append(r.recentSubs, sub)
	r.mu.Unlock()

	items, _ := r.GetRecent(ctx, limit)
	fn(items)
	return func() {
		r.mu.Lock()
		sub.cancelled = true
		r.mu.Unlock()
	}, nil
}

func (r *fakeMediaRepo) SubscribeByUser(ctx context.Context, userID primitive.ObjectID, fn func([]domain.MediaItem)) (repository.CancelFunc, error) {
	r.mu.Lock()
	sub := &fakeSub[[]domain.MediaItem]{fn: fn}
	r.userSubs[userID] = append(r.userSubs[userID], sub)
	r.mu.Unlock()

	items, _ := r.GetByUserID(ctx, userID)
	fn(items)
	return func() {
		r.mu.Lock()
		sub.cancelled = true
		r.mu.Unlock()
	}, nil
}

func (r *fakeMediaRepo) SubscribePending(ctx context.Context, fn func([]domain.MediaItem)) (repository.CancelFunc, error) {
	r.mu.Lock()
	sub := &fakeSub[[]domain.MediaItem]{fn: fn}
	r.pendingSubs = append(r.pendingSubs, sub)
	r.mu.Unlock()

	items, _ := r.GetPending(ctx)
	fn(items)
	return func() {
		r.mu.Lock()
		sub.cancelled = true
		r.mu.Unlock()
	}, nil
}

// emitUserMedia redelivers the user's media set to live subscribers.
func (r *fakeMediaRepo) emitUserMedia(userID primitive.ObjectID) {
	items, _ := r.GetByUserID(context.Background(), userID)

	r.mu.Lock()
	var fns []func([]domain.MediaItem)
	for _, sub := range r.userSubs[userID] {
		if !sub.cancelled {
			fns = append(fns, sub.fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(items)
	}
}

// --- fakeMatchRepo ---

type fakeMatchRepo struct {
	mu     sync.Mutex
	events map[primitive.ObjectID]*domain.MatchEvent
	subs   map[primitive.ObjectID][]*fakeSub[[]domain.MatchEvent]
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{
		events: make(map[primitive.ObjectID]*domain.MatchEvent),
		subs:   make(map[primitive.ObjectID][]*fakeSub[[]domain.MatchEvent]),
	}
}

func (r *fakeMatchRepo) Create(ctx context.Context, event *domain.MatchEvent) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == primitive.NilObjectID {
		event.ID = primitive.NewObjectID()
	}
	cp := *event
	r.events[event.ID] = &cp
	return event.ID, nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MatchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *event
	return &cp, nil
}

func (r *fakeMatchRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MatchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MatchEvent
	for _, event := range r.events {
		if event.UserID == userID {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) GetAll(ctx context.Context) ([]domain.MatchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MatchEvent
	for _, event := range r.events {
		out = append(out, *event)
	}
	return out, nil
}

func (r *fakeMatchRepo) Update(ctx context.Context, event *domain.MatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeMatchRepo) SubscribeByUser(ctx context.Context, userID primitive.ObjectID, fn func([]domain.MatchEvent)) (repository.CancelFunc, error) {
	r.mu.Lock()
	sub := &fakeSub[[]domain.MatchEvent]{fn: fn}
	r.subs[userID] = append(r.subs[userID], sub)
	r.mu.Unlock()

	events, _ := r.GetByUserID(ctx, userID)
	fn(events)
	return func() {
		r.mu.Lock()
		sub.cancelled = true
		r.mu.Unlock()
	}, nil
}

// --- fakeCommentRepo ---

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []domain.Comment
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comment.ID == primitive.NilObjectID {
		comment.ID = primitive.NewObjectID()
	}
	r.comments = append(r.comments, *comment)
	return comment.ID, nil
}

func (r *fakeCommentRepo) GetByMediaID(ctx context.Context, mediaID primitive.ObjectID) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for _, c := range r.comments {
		if c.MediaID == mediaID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- fakeNotificationRepo ---

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == primitive.NilObjectID {
		n.ID = primitive.NewObjectID()
	}
	r.notifications = append(r.notifications, *n)
	return n.ID, nil
}

func (r *fakeNotificationRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications[i].Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- fakeAwardRepo ---

type fakeAwardRepo struct {
	mu     sync.Mutex
	awards []domain.Award
}

func (r *fakeAwardRepo) Create(ctx context.Context, award *domain.Award) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if award.ID == primitive.NilObjectID {
		award.ID = primitive.NewObjectID()
	}
	r.awards = append(r.awards, *award)
	return award.ID, nil
}

func (r *fakeAwardRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Award, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Award
	for _, a := range r.awards {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAwardRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.awards {
		if r.awards[i].ID == id {
			r.awards = append(r.awards[:i], r.awards[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- fakeStorage ---

type fakeStorage struct{}

func (fakeStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://files.test/upload/" + objectKey, nil
}

func (fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://files.test/" + objectKey, nil
}

func (fakeStorage) DeleteObject(ctx context.Context, objectKey string) error { return nil }
