package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AwardIcon selects the badge shown next to an award.
type AwardIcon string

const (
	IconTrophy AwardIcon = "trophy"
	IconMedal  AwardIcon = "medal"
	IconStar   AwardIcon = "star"
)

// Award is issued to an athlete by the academy.
type Award struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Title  string             `bson:"title" json:"title"`
	Issuer string             `bson:"issuer" json:"issuer"`
	Icon   AwardIcon          `bson:"icon" json:"icon"`
	Date   string             `bson:"date" json:"date"` // YYYY-MM-DD

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
