package domain

import "testing"

func TestMediaStatusTransitions(t *testing.T) {
	cases := []struct {
		status     MediaStatus
		canReview  bool
		canPromote bool
		visible    bool
	}{
		{StatusPending, true, false, false},
		{StatusApproved, false, true, true},
		{StatusRejected, false, false, false},
		{StatusFeatured, false, false, true},
	}

	for _, tc := range cases {
		if got := tc.status.CanReview(); got != tc.canReview {
			t.Errorf("%s.CanReview() = %v, want %v", tc.status, got, tc.canReview)
		}
		if got := tc.status.CanPromote(); got != tc.canPromote {
			t.Errorf("%s.CanPromote() = %v, want %v", tc.status, got, tc.canPromote)
		}
		if got := tc.status.Visible(); got != tc.visible {
			t.Errorf("%s.Visible() = %v, want %v", tc.status, got, tc.visible)
		}
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range []MediaCategory{CategoryMatch, CategoryTraining, CategoryPhysical, CategoryTactical} {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = false", c)
		}
	}
	if ValidCategory("Freestyle") {
		t.Error("unknown category accepted")
	}
}
