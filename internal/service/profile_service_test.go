package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"verum/academy-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newProfileFixture() (*fakeUserRepo, *fakeMediaRepo, ProfileService) {
	userRepo := newFakeUserRepo()
	mediaRepo := newFakeMediaRepo()
	return userRepo, mediaRepo, NewProfileService(userRepo, mediaRepo, fakeStorage{})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestGetProfileHealsLegacyDocument(t *testing.T) {
	userRepo, _, svc := newProfileFixture()

	// A document written under the old schema: no stats, no physical,
	// no bio, no role.
	legacyID := userRepo.put(&domain.UserProfile{
		Email:    "legacy@example.com",
		FullName: "Old Timer",
	})

	profile, err := svc.GetProfile(context.Background(), legacyID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}

	if profile.Stats == nil || profile.Physical == nil {
		t.Fatal("legacy profile not defaulted")
	}
	if profile.Role != domain.RoleAthlete || profile.Bio != domain.DefaultBio {
		t.Errorf("role/bio = %q/%q, want defaults", profile.Role, profile.Bio)
	}

	// The defaults are written back so the next reader sees a canonical
	// document.
	waitFor(t, func() bool { return userRepo.updateCount() > 0 })
}

func TestGetProfileDoesNotRepairCanonicalDocument(t *testing.T) {
	userRepo, _, svc := newProfileFixture()

	id := userRepo.put(&domain.UserProfile{
		Email:     "done@example.com",
		FullName:  "Complete Profile",
		Username:  "complete",
		Role:      domain.RoleAthlete,
		Bio:       "All set.",
		Position:  "GK",
		Club:      "U19",
		Physical:  domain.NewDefaultPhysical(),
		Stats:     domain.NewDefaultStats(),
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
	})

	if _, err := svc.GetProfile(context.Background(), id); err != nil {
		t.Fatalf("GetProfile: %v", err)
	}

	// Give a would-be write-back a moment to fire; none should.
	time.Sleep(50 * time.Millisecond)
	if n := userRepo.updateCount(); n != 0 {
		t.Errorf("canonical profile triggered %d write-backs", n)
	}
}

func TestGetProfileStripsPasswordHash(t *testing.T) {
	userRepo, _, svc := newProfileFixture()
	id := userRepo.put(&domain.UserProfile{
		Email:        "secret@example.com",
		FullName:     "Keeper",
		PasswordHash: "$2a$10$abcdef",
	})

	profile, err := svc.GetProfile(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.PasswordHash != "" {
		t.Error("password hash leaked out of the service")
	}
}

func TestUpdateProfileWhitelist(t *testing.T) {
	userRepo, _, svc := newProfileFixture()
	id := userRepo.put(&domain.UserProfile{Email: "a@example.com", FullName: "Ath Lete", Role: domain.RoleAthlete})
	ctx := context.Background()

	// Unknown and protected fields are rejected outright.
	for _, field := range []string{"email", "passwordHash", "stats.ratingAvg", "followers"} {
		_, err := svc.UpdateProfile(ctx, id, domain.RoleAthlete, id, map[string]interface{}{field: "x"})
		if !errors.Is(err, ErrInvalidProfileField) {
			t.Errorf("field %q: err = %v, want ErrInvalidProfileField", field, err)
		}
	}

	// Whitelisted fields go through and the updated profile comes back.
	updated, err := svc.UpdateProfile(ctx, id, domain.RoleAthlete, id, map[string]interface{}{"bio": "New season, new me."})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Bio != "New season, new me." {
		t.Errorf("bio = %q", updated.Bio)
	}
}

func TestUpdateProfileAccessControl(t *testing.T) {
	userRepo, _, svc := newProfileFixture()
	owner := userRepo.put(&domain.UserProfile{Email: "o@example.com", FullName: "Owner", Role: domain.RoleAthlete})
	other := userRepo.put(&domain.UserProfile{Email: "x@example.com", FullName: "Other", Role: domain.RoleAthlete})
	ctx := context.Background()

	fields := map[string]interface{}{"club": "First Team"}

	if _, err := svc.UpdateProfile(ctx, other, domain.RoleAthlete, owner, fields); !errors.Is(err, ErrProfileAccessDenied) {
		t.Errorf("athlete editing someone else: err = %v, want ErrProfileAccessDenied", err)
	}

	if _, err := svc.UpdateProfile(ctx, other, domain.RoleAdmin, owner, fields); err != nil {
		t.Errorf("admin editing athlete: %v", err)
	}
}

func TestStartSessionDeliversInitialSnapshots(t *testing.T) {
	userRepo, mediaRepo, svc := newProfileFixture()
	id := userRepo.put(&domain.UserProfile{Email: "live@example.com", FullName: "Live Wire"})

	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	mediaRepo.put(&domain.MediaItem{UserID: id, Title: "old", Status: domain.StatusApproved, CreatedAt: jan})
	mediaRepo.put(&domain.MediaItem{UserID: id, Title: "new", Status: domain.StatusPending, CreatedAt: mar})

	var gotProfile *domain.UserProfile
	var gotMedia []domain.MediaItem
	session, err := svc.StartSession(context.Background(), id,
		func(p *domain.UserProfile) { gotProfile = p },
		func(items []domain.MediaItem) { gotMedia = items },
	)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer svc.EndSession(id)

	if gotProfile == nil {
		t.Fatal("no initial profile snapshot")
	}
	if gotProfile.Stats == nil {
		t.Error("session snapshot not canonicalized")
	}
	if len(gotMedia) != 2 || gotMedia[0].Title != "new" || gotMedia[1].Title != "old" {
		t.Errorf("media snapshot = %+v, want [new old]", gotMedia)
	}

	if session.CurrentProfile() == nil || len(session.Media()) != 2 {
		t.Error("session cache not primed by initial snapshots")
	}
}

func TestEndSessionStopsDeliveries(t *testing.T) {
	userRepo, mediaRepo, svc := newProfileFixture()
	id := userRepo.put(&domain.UserProfile{Email: "gone@example.com", FullName: "Sign Out"})

	profileCalls := 0
	mediaCalls := 0
	session, err := svc.StartSession(context.Background(), id,
		func(*domain.UserProfile) { profileCalls++ },
		func([]domain.MediaItem) { mediaCalls++ },
	)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	baseProfile, baseMedia := profileCalls, mediaCalls

	svc.EndSession(id)

	// Post-teardown store events must not reach the callbacks.
	userRepo.emitUser(id)
	mediaRepo.put(&domain.MediaItem{UserID: id, Title: "late", Status: domain.StatusPending})
	mediaRepo.emitUserMedia(id)

	if profileCalls != baseProfile || mediaCalls != baseMedia {
		t.Errorf("callbacks fired after EndSession: profile %d->%d media %d->%d",
			baseProfile, profileCalls, baseMedia, mediaCalls)
	}
	if session.CurrentProfile() != nil || session.Media() != nil {
		t.Error("session caches not cleared on close")
	}
}

func TestStartSessionReplacesExistingSession(t *testing.T) {
	userRepo, _, svc := newProfileFixture()
	id := userRepo.put(&domain.UserProfile{Email: "swap@example.com", FullName: "Re Login"})
	ctx := context.Background()

	firstCalls := 0
	first, err := svc.StartSession(ctx, id, func(*domain.UserProfile) { firstCalls++ }, nil)
	if err != nil {
		t.Fatalf("first StartSession: %v", err)
	}

	secondCalls := 0
	if _, err := svc.StartSession(ctx, id, func(*domain.UserProfile) { secondCalls++ }, nil); err != nil {
		t.Fatalf("second StartSession: %v", err)
	}
	defer svc.EndSession(id)

	base := firstCalls
	userRepo.emitUser(id)

	if firstCalls != base {
		t.Error("replaced session still receives snapshots")
	}
	if secondCalls < 2 {
		t.Errorf("active session missed the redelivery: %d calls", secondCalls)
	}
	if first.CurrentProfile() != nil {
		t.Error("replaced session cache not cleared")
	}
}

func TestAvatarUploadURLRequiresImage(t *testing.T) {
	userRepo, _, svc := newProfileFixture()
	id := userRepo.put(&domain.UserProfile{Email: "pic@example.com", FullName: "Head Shot"})
	ctx := context.Background()

	if _, err := svc.AvatarUploadURL(ctx, id, "video/mp4"); !errors.Is(err, ErrInvalidProfileField) {
		t.Errorf("non-image: err = %v, want ErrInvalidProfileField", err)
	}

	resp, err := svc.AvatarUploadURL(ctx, id, "image/jpeg")
	if err != nil {
		t.Fatalf("AvatarUploadURL: %v", err)
	}
	if resp.ObjectKey == "" || resp.UploadURL == "" {
		t.Errorf("incomplete response: %+v", resp)
	}
}
