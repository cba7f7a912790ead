package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAthlete Role = "athlete"
	RoleAdmin   Role = "admin"
)

// Foot is the preferred foot of an athlete. "-" means not set.
type Foot string

const (
	FootRight Foot = "Right"
	FootLeft  Foot = "Left"
	FootBoth  Foot = "Both"
	FootUnset Foot = "-"
)

// Unset is the sentinel for free-text scouting fields that have not
// been filled in yet.
const Unset = "-"

// DefaultBio is written into profiles that were created without one.
const DefaultBio = "Ready to work."

// Physical holds the scouting measurements of an athlete. All values are
// free-text strings with "-" as the explicit "not set" sentinel, matching
// how the mobile client captures them.
type Physical struct {
	Height string `bson:"height" json:"height"`
	Weight string `bson:"weight" json:"weight"`
	Foot   Foot   `bson:"foot" json:"foot"`
	Age    string `bson:"age" json:"age"`
}

// Stats holds the aggregate performance counters for an athlete.
// RatingAvg is the persisted system of record; see MediaService for how
// it is recomputed after reviews.
type Stats struct {
	Matches       int     `bson:"matches" json:"matches"`
	Goals         int     `bson:"goals" json:"goals"`
	Assists       int     `bson:"assists" json:"assists"`
	MinutesPlayed int     `bson:"minutesPlayed" json:"minutesPlayed"`
	RatingAvg     float64 `bson:"ratingAvg" json:"ratingAvg"`
}

// UserProfile represents a user in the system (an Athlete or an Admin).
// Stats and Physical are pointers so that documents written under an older
// schema decode with nil fields and can be repaired; see Canonicalize.
type UserProfile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"` // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         Role               `bson:"role,omitempty" json:"role"`

	Username  string `bson:"username,omitempty" json:"username"`
	FullName  string `bson:"fullName,omitempty" json:"fullName"`
	AvatarURL string `bson:"avatarUrl,omitempty" json:"avatarUrl"`
	Bio       string `bson:"bio,omitempty" json:"bio"`

	// Scouting attributes
	Position string    `bson:"position,omitempty" json:"position"`
	Club     string    `bson:"club,omitempty" json:"club"`
	Phone    string    `bson:"phone,omitempty" json:"phone,omitempty"`
	DOB      string    `bson:"dob,omitempty" json:"dob,omitempty"` // YYYY-MM-DD
	Physical *Physical `bson:"physical,omitempty" json:"physical"`
	Stats    *Stats    `bson:"stats,omitempty" json:"stats"`

	// Social graph. Stored as arrays; uniqueness is enforced by the
	// writer ($addToSet), not by the store.
	Followers []primitive.ObjectID `bson:"followers,omitempty" json:"followers"`
	Following []primitive.ObjectID `bson:"following,omitempty" json:"following"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *UserProfile) IsAthlete() bool {
	return u.Role == RoleAthlete
}

// NewDefaultPhysical returns the placeholder physical block for a profile
// that has not been measured yet.
func NewDefaultPhysical() *Physical {
	return &Physical{Height: Unset, Weight: Unset, Foot: FootUnset, Age: Unset}
}

// NewDefaultStats returns all-zero counters.
func NewDefaultStats() *Stats {
	return &Stats{}
}

// Canonicalize repairs a profile decoded from a legacy document shape.
// It is the single place where "is this legacy data" logic lives: every
// missing field gets its documented default exactly once, so applying it
// twice yields the same profile as applying it once. The returned flag
// reports whether a write-back of the defaults is needed.
func (u *UserProfile) Canonicalize() (changed bool) {
	if u.Stats == nil {
		u.Stats = NewDefaultStats()
		changed = true
	}
	if u.Physical == nil {
		u.Physical = NewDefaultPhysical()
		changed = true
	}
	if u.Role == "" {
		u.Role = RoleAthlete
		changed = true
	}
	if u.Bio == "" {
		u.Bio = DefaultBio
		changed = true
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
		changed = true
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
		changed = true
	}
	if u.Position == "" {
		u.Position = Unset
	}
	if u.Club == "" {
		u.Club = Unset
	}
	if u.FullName == "" {
		u.FullName = "Athlete"
	}
	if u.Username == "" {
		u.Username = strings.ReplaceAll(strings.ToLower(u.FullName), " ", "_")
	}
	return changed
}

// IsFollowing reports whether the profile already follows the given user.
func (u *UserProfile) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}
