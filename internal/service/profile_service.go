package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"
	"time"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/repository"
	"verum/academy-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Timeout for background writes that are not tied to a request context.
const defaultWriteTimeout = 10 * time.Second

// --- Error Definitions ---
var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAccessDenied  = errors.New("access denied to modify this profile")
	ErrInvalidProfileField  = errors.New("profile field cannot be updated")
	ErrAvatarUploadURLError = errors.New("failed to generate avatar upload URL")
)

// updatableProfileFields is the whitelist for field-level profile writes.
// Identity and credential fields never go through UpdateProfile.
var updatableProfileFields = map[string]bool{
	"fullName":            true,
	"username":            true,
	"avatarUrl":           true,
	"bio":                 true,
	"position":            true,
	"club":                true,
	"phone":               true,
	"dob":                 true,
	"physical.height":     true,
	"physical.weight":     true,
	"physical.foot":       true,
	"physical.age":        true,
	"stats.matches":       true,
	"stats.goals":         true,
	"stats.assists":       true,
	"stats.minutesPlayed": true,
}

type ProfileService interface {
	// GetProfile reads and canonicalizes one profile, repairing legacy
	// documents with a best-effort write-back.
	GetProfile(ctx context.Context, id primitive.ObjectID) (*domain.UserProfile, error)

	// UpdateProfile performs a field-level write. Athletes edit only
	// themselves; admins may edit anyone.
	UpdateProfile(ctx context.Context, actorID primitive.ObjectID, actorRole domain.Role, targetID primitive.ObjectID, fields map[string]interface{}) (*domain.UserProfile, error)

	// StartSession opens the live subscriptions for a signed-in identity.
	// An existing session for the same identity is replaced.
	StartSession(ctx context.Context, userID primitive.ObjectID, onProfile func(*domain.UserProfile), onMedia func([]domain.MediaItem)) (*ProfileSession, error)

	// EndSession tears down the identity's session, cancelling its
	// subscriptions and clearing its caches. No-op if none is active.
	EndSession(userID primitive.ObjectID)

	ListAthletes(ctx context.Context) ([]domain.UserProfile, error)
	AvatarUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
}

// UploadURLResponse carries a presigned PUT URL and the object key the
// client must confirm with.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// ProfileSession is the per-identity sync state: the current canonical
// profile (nil until the first snapshot arrives), the owner's media list,
// and the subscription handles that feed them.
type ProfileSession struct {
	UserID primitive.ObjectID

	mu      sync.RWMutex
	profile *domain.UserProfile
	media   []domain.MediaItem
	cancels []repository.CancelFunc
	closed  bool
}

// CurrentProfile returns the last observed canonical profile, or nil if no
// snapshot has arrived yet.
func (s *ProfileSession) CurrentProfile() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Media returns the owner's media list as of the last snapshot.
func (s *ProfileSession) Media() []domain.MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.media
}

// Close cancels all subscriptions and clears the cached state. After Close
// returns no callback fires and no snapshot mutates the session.
func (s *ProfileSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancels := s.cancels
	s.cancels = nil
	s.profile = nil
	s.media = nil
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (s *ProfileSession) setProfile(p *domain.UserProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.profile = p
	return true
}

func (s *ProfileSession) setMedia(items []domain.MediaItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.media = items
	return true
}

// profileService implements the ProfileService interface.
type profileService struct {
	userRepo    repository.UserRepository
	mediaRepo   repository.MediaRepository
	fileStorage storage.FileStorage

	mu       sync.Mutex
	sessions map[primitive.ObjectID]*ProfileSession
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(userRepo repository.UserRepository, mediaRepo repository.MediaRepository, fileStorage storage.FileStorage) ProfileService {
	return &profileService{
		userRepo:    userRepo,
		mediaRepo:   mediaRepo,
		fileStorage: fileStorage,
		sessions:    make(map[primitive.ObjectID]*ProfileSession),
	}
}

// canonicalize repairs a legacy document and schedules the write-back of
// the defaults. The repair is fire-and-forget: a failed write-back is
// logged and the defaulted profile is still presented.
func (s *profileService) canonicalize(user *domain.UserProfile) *domain.UserProfile {
	if !user.Canonicalize() {
		return user
	}

	repair := map[string]interface{}{
		"stats":     user.Stats,
		"physical":  user.Physical,
		"role":      user.Role,
		"bio":       user.Bio,
		"position":  user.Position,
		"club":      user.Club,
		"followers": user.Followers,
		"following": user.Following,
	}
	id := user.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
		defer cancel()
		if err := s.userRepo.UpdateFields(ctx, id, repair); err != nil {
			log.Printf("WARN: profile migration save failed for %s: %v", id.Hex(), err)
		}
	}()
	return user
}

// GetProfile reads one profile, healing legacy shapes on the way out.
func (s *profileService) GetProfile(ctx context.Context, id primitive.ObjectID) (*domain.UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	user = s.canonicalize(user)
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile performs a partial write and then optimistically replaces
// the in-memory copy held by the owner's session. The local copy is not
// guaranteed to equal the next snapshot if a concurrent writer touched the
// same document; last snapshot wins.
func (s *profileService) UpdateProfile(ctx context.Context, actorID primitive.ObjectID, actorRole domain.Role, targetID primitive.ObjectID, fields map[string]interface{}) (*domain.UserProfile, error) {
	if actorID != targetID && actorRole != domain.RoleAdmin {
		return nil, ErrProfileAccessDenied
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields given", ErrInvalidProfileField)
	}
	for k := range fields {
		if !updatableProfileFields[k] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidProfileField, k)
		}
	}

	if err := s.userRepo.UpdateFields(ctx, targetID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	updated, err := s.GetProfile(ctx, targetID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	session := s.sessions[targetID]
	s.mu.Unlock()
	if session != nil {
		session.setProfile(updated)
	}

	return updated, nil
}

// StartSession opens the live profile and media subscriptions for one
// identity. Each delivered profile snapshot is canonicalized before it is
// cached; a snapshot that fails to load leaves the last-known-good state
// in place rather than blanking it.
func (s *profileService) StartSession(ctx context.Context, userID primitive.ObjectID, onProfile func(*domain.UserProfile), onMedia func([]domain.MediaItem)) (*ProfileSession, error) {
	s.EndSession(userID) // resubscribe on identity change

	session := &ProfileSession{UserID: userID}

	cancelProfile, err := s.userRepo.Subscribe(ctx, userID, func(user *domain.UserProfile) {
		user = s.canonicalize(user)
		user.PasswordHash = ""
		if !session.setProfile(user) {
			return
		}
		if onProfile != nil {
			onProfile(user)
		}
	})
	if err != nil {
		return nil, err
	}
	session.cancels = append(session.cancels, cancelProfile)

	cancelMedia, err := s.mediaRepo.SubscribeByUser(ctx, userID, func(items []domain.MediaItem) {
		SortMediaByDateDesc(items)
		if !session.setMedia(items) {
			return
		}
		if onMedia != nil {
			onMedia(items)
		}
	})
	if err != nil {
		cancelProfile()
		return nil, err
	}
	session.cancels = append(session.cancels, cancelMedia)

	s.mu.Lock()
	s.sessions[userID] = session
	s.mu.Unlock()

	return session, nil
}

// EndSession closes and forgets the identity's active session.
func (s *profileService) EndSession(userID primitive.ObjectID) {
	s.mu.Lock()
	session := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if session != nil {
		session.Close()
	}
}

// ListAthletes returns every athlete profile, canonicalized, for the admin
// directory.
func (s *profileService) ListAthletes(ctx context.Context) ([]domain.UserProfile, error) {
	users, err := s.userRepo.ListByRole(ctx, domain.RoleAthlete)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Canonicalize()
		users[i].PasswordHash = ""
	}
	return users, nil
}

// AvatarUploadURL generates a presigned PUT URL for a new avatar image.
func (s *profileService) AvatarUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, fmt.Errorf("%w: avatar content type must be image/*", ErrInvalidProfileField)
	}

	fileExtension := ""
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("avatars", userID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrAvatarUploadURLError
	}

	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}
