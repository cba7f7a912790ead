package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchType classifies a fixture.
type MatchType string

const (
	MatchLeague   MatchType = "League"
	MatchFriendly MatchType = "Friendly"
	MatchCup      MatchType = "Cup"
	MatchTraining MatchType = "Training"
)

// MatchStatus type for the fixture lifecycle
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
)

// HomeOrAway is where the fixture is played.
type HomeOrAway string

const (
	Home HomeOrAway = "Home"
	Away HomeOrAway = "Away"
)

// MatchStats are the athlete's own numbers for a completed fixture.
type MatchStats struct {
	Minutes int     `bson:"minutes" json:"minutes"`
	Goals   int     `bson:"goals" json:"goals"`
	Assists int     `bson:"assists" json:"assists"`
	Rating  float64 `bson:"rating" json:"rating"` // 0-10
}

// MatchEvent is one scheduled fixture on a user's agenda. Once completed
// it carries the result and the user's stats; completion happens exactly
// once via the log-result action.
type MatchEvent struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"` // Owner of this agenda entry

	Opponent   string     `bson:"opponent" json:"opponent"`
	Date       string     `bson:"date" json:"date"` // YYYY-MM-DD
	Time       string     `bson:"time" json:"time"` // HH:mm
	Location   string     `bson:"location,omitempty" json:"location,omitempty"`
	Type       MatchType  `bson:"type" json:"type"`
	HomeOrAway HomeOrAway `bson:"homeOrAway" json:"homeOrAway"`

	Status    MatchStatus `bson:"status" json:"status"`
	Result    *string     `bson:"result,omitempty" json:"result,omitempty"` // e.g. "2-1"
	UserStats *MatchStats `bson:"userStats,omitempty" json:"userStats,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
