package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"verum/academy-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSocialFixture() (*fakeUserRepo, *fakeMediaRepo, *fakeNotificationRepo, *fakeAwardRepo, SocialService) {
	userRepo := newFakeUserRepo()
	mediaRepo := newFakeMediaRepo()
	commentRepo := &fakeCommentRepo{}
	notifRepo := &fakeNotificationRepo{}
	awardRepo := &fakeAwardRepo{}
	svc := NewSocialService(userRepo, mediaRepo, commentRepo, notifRepo, awardRepo)
	return userRepo, mediaRepo, notifRepo, awardRepo, svc
}

func TestToggleFollowMaintainsBothSides(t *testing.T) {
	userRepo, _, notifRepo, _, svc := newSocialFixture()
	ctx := context.Background()

	fan := userRepo.put(&domain.UserProfile{Email: "fan@example.com", FullName: "Fan Person"})
	star := userRepo.put(&domain.UserProfile{Email: "star@example.com", FullName: "Star Player"})

	following, err := svc.ToggleFollow(ctx, fan, star)
	if err != nil || !following {
		t.Fatalf("first toggle: following=%v err=%v", following, err)
	}

	fanDoc, _ := userRepo.GetByID(ctx, fan)
	starDoc, _ := userRepo.GetByID(ctx, star)
	if !fanDoc.IsFollowing(star) {
		t.Error("actor's following edge missing")
	}
	if len(starDoc.Followers) != 1 || starDoc.Followers[0] != fan {
		t.Error("target's follower edge missing")
	}

	// The target heard about it.
	got, _ := notifRepo.GetByUserID(ctx, star)
	if len(got) != 1 || got[0].Type != domain.NotifySocial {
		t.Errorf("notifications = %+v, want one social entry", got)
	}

	// Toggling again removes both edges.
	following, err = svc.ToggleFollow(ctx, fan, star)
	if err != nil || following {
		t.Fatalf("second toggle: following=%v err=%v", following, err)
	}
	fanDoc, _ = userRepo.GetByID(ctx, fan)
	starDoc, _ = userRepo.GetByID(ctx, star)
	if fanDoc.IsFollowing(star) || len(starDoc.Followers) != 0 {
		t.Error("unfollow left edges behind")
	}
}

func TestToggleFollowRejectsSelf(t *testing.T) {
	userRepo, _, _, _, svc := newSocialFixture()
	me := userRepo.put(&domain.UserProfile{Email: "me@example.com", FullName: "Me"})

	if _, err := svc.ToggleFollow(context.Background(), me, me); !errors.Is(err, ErrSelfFollow) {
		t.Errorf("err = %v, want ErrSelfFollow", err)
	}
}

func TestAddCommentBumpsDenormalizedCounter(t *testing.T) {
	userRepo, mediaRepo, _, _, svc := newSocialFixture()
	ctx := context.Background()

	author := userRepo.put(&domain.UserProfile{Email: "c@example.com", FullName: "Chat Ty"})
	mediaID := mediaRepo.put(&domain.MediaItem{
		UserID: primitive.NewObjectID(), Title: "clip",
		Status: domain.StatusApproved, CreatedAt: time.Now(),
	})

	comment, err := svc.AddComment(ctx, author, mediaID, "  Great touch!  ")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.Text != "Great touch!" {
		t.Errorf("text = %q, want trimmed", comment.Text)
	}
	if comment.AuthorName != "Chat Ty" {
		t.Errorf("author not denormalized: %q", comment.AuthorName)
	}

	item, _ := mediaRepo.GetByID(ctx, mediaID)
	if item.CommentsCount != 1 {
		t.Errorf("CommentsCount = %d, want 1", item.CommentsCount)
	}
}

func TestAddCommentValidation(t *testing.T) {
	userRepo, mediaRepo, _, _, svc := newSocialFixture()
	ctx := context.Background()
	author := userRepo.put(&domain.UserProfile{Email: "c@example.com", FullName: "Chat Ty"})
	mediaID := mediaRepo.put(&domain.MediaItem{UserID: primitive.NewObjectID(), Title: "clip", Status: domain.StatusApproved})

	if _, err := svc.AddComment(ctx, author, mediaID, "   "); !errors.Is(err, ErrCommentValidation) {
		t.Errorf("blank text: err = %v, want ErrCommentValidation", err)
	}
	if _, err := svc.AddComment(ctx, author, primitive.NewObjectID(), "hi"); !errors.Is(err, ErrMediaNotFound) {
		t.Errorf("missing media: err = %v, want ErrMediaNotFound", err)
	}
}

func TestNotificationsNewestFirstAndMarkRead(t *testing.T) {
	userRepo, _, notifRepo, _, svc := newSocialFixture()
	ctx := context.Background()
	me := userRepo.put(&domain.UserProfile{Email: "me@example.com", FullName: "Me"})
	other := primitive.NewObjectID()

	oldID, _ := notifRepo.Create(ctx, &domain.Notification{
		UserID: me, Message: "old", Type: domain.NotifySystem,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	notifRepo.Create(ctx, &domain.Notification{
		UserID: me, Message: "new", Type: domain.NotifySystem,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	items, err := svc.NotificationsForUser(ctx, me)
	if err != nil {
		t.Fatalf("NotificationsForUser: %v", err)
	}
	if len(items) != 2 || items[0].Message != "new" {
		t.Errorf("order = %+v, want newest first", items)
	}

	// Marking someone else's notification is an ownership error.
	if err := svc.MarkNotificationRead(ctx, other, oldID); !errors.Is(err, ErrNotificationOwner) {
		t.Errorf("foreign mark: err = %v, want ErrNotificationOwner", err)
	}
	if err := svc.MarkNotificationRead(ctx, me, oldID); err != nil {
		t.Errorf("own mark: %v", err)
	}

	items, _ = svc.NotificationsForUser(ctx, me)
	for _, n := range items {
		if n.Message == "old" && !n.Read {
			t.Error("notification not marked read")
		}
	}
}

func TestGrantAwardValidation(t *testing.T) {
	userRepo, _, _, _, svc := newSocialFixture()
	ctx := context.Background()
	athlete := userRepo.put(&domain.UserProfile{Email: "a@example.com", FullName: "Ath Lete"})

	if _, err := svc.GrantAward(ctx, athlete, "", "Academy", "2026-05-01", domain.IconTrophy); !errors.Is(err, ErrAwardValidation) {
		t.Errorf("blank title: err = %v, want ErrAwardValidation", err)
	}
	if _, err := svc.GrantAward(ctx, athlete, "Top Scorer", "Academy", "2026-05-01", "ribbon"); !errors.Is(err, ErrAwardValidation) {
		t.Errorf("bad icon: err = %v, want ErrAwardValidation", err)
	}
	if _, err := svc.GrantAward(ctx, primitive.NewObjectID(), "Top Scorer", "Academy", "2026-05-01", domain.IconTrophy); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("missing athlete: err = %v, want ErrProfileNotFound", err)
	}

	award, err := svc.GrantAward(ctx, athlete, "Top Scorer", "Academy", "2026-05-01", domain.IconTrophy)
	if err != nil {
		t.Fatalf("GrantAward: %v", err)
	}
	if award.ID == primitive.NilObjectID || award.Icon != domain.IconTrophy {
		t.Errorf("award = %+v", award)
	}
}

func TestRevokeAwardRemovesIt(t *testing.T) {
	userRepo, _, _, awardRepo, svc := newSocialFixture()
	ctx := context.Background()
	athlete := userRepo.put(&domain.UserProfile{Email: "a@example.com", FullName: "Ath Lete"})

	keep := &domain.Award{UserID: athlete, Title: "golden boot", Date: "2026-05-01"}
	gone := &domain.Award{UserID: athlete, Title: "fair play", Date: "2026-06-01"}
	awardRepo.Create(ctx, keep)
	awardRepo.Create(ctx, gone)

	if err := svc.RevokeAward(ctx, gone.ID); err != nil {
		t.Fatalf("RevokeAward: %v", err)
	}

	awards, err := svc.AwardsForUser(ctx, athlete)
	if err != nil {
		t.Fatalf("AwardsForUser: %v", err)
	}
	if len(awards) != 1 || awards[0].Title != "golden boot" {
		t.Fatalf("awards after revoke = %+v, want only the golden boot", awards)
	}

	if err := svc.RevokeAward(ctx, gone.ID); !errors.Is(err, ErrAwardNotFound) {
		t.Fatalf("second revoke error = %v, want ErrAwardNotFound", err)
	}
}

func TestAwardsNewestFirst(t *testing.T) {
	userRepo, _, _, awardRepo, svc := newSocialFixture()
	ctx := context.Background()
	athlete := userRepo.put(&domain.UserProfile{Email: "a@example.com", FullName: "Ath Lete"})

	awardRepo.Create(ctx, &domain.Award{UserID: athlete, Title: "spring", Date: "2026-04-01"})
	awardRepo.Create(ctx, &domain.Award{UserID: athlete, Title: "winter", Date: "2026-01-15"})
	awardRepo.Create(ctx, &domain.Award{UserID: athlete, Title: "summer", Date: "2026-07-20"})

	awards, err := svc.AwardsForUser(ctx, athlete)
	if err != nil {
		t.Fatalf("AwardsForUser: %v", err)
	}
	want := []string{"summer", "spring", "winter"}
	for i, w := range want {
		if awards[i].Title != w {
			t.Fatalf("order = %+v, want %v", awards, want)
		}
	}
}
