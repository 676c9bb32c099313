package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WarningsCollection is the collection holding Warning documents
const WarningsCollection = "userwarnings"

// Warning is a single warning issued to a guild member
type Warning struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GuildID     string             `bson:"guildId" json:"guildId"`
	UserID      string             `bson:"userId" json:"userId"`
	ModeratorID string             `bson:"moderatorId" json:"moderatorId"`
	Reason      string             `bson:"reason" json:"reason"`
	Active      bool               `bson:"active" json:"active"` // false once revoked
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewWarning builds an active warning stamped with a fresh id
func NewWarning(guildID, userID, moderatorID, reason string, now time.Time) *Warning {
	return &Warning{
		ID:          primitive.NewObjectID(),
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Reason:      reason,
		Active:      true,
		CreatedAt:   now,
	}
}
