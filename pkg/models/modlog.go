package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationLogsCollection is the collection holding ModerationLogEntry documents
const ModerationLogsCollection = "moderationlogs"

// DefaultReason is stored when a moderator gives no reason
const DefaultReason = "No reason provided"

// Action is the kind of moderation action recorded in the audit log
type Action string

const (
	ActionKick    Action = "kick"
	ActionBan     Action = "ban"
	ActionTimeout Action = "timeout"
	ActionWarn    Action = "warn"
	ActionUnban   Action = "unban"
)

// Valid reports whether a is one of the known actions
func (a Action) Valid() bool {
	switch a {
	case ActionKick, ActionBan, ActionTimeout, ActionWarn, ActionUnban:
		return true
	}
	return false
}

// ModerationLogEntry is an append-only audit record
type ModerationLogEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GuildID     string             `bson:"guildId" json:"guildId"`
	UserID      string             `bson:"userId" json:"userId"`
	ModeratorID string             `bson:"moderatorId" json:"moderatorId"`
	Action      Action             `bson:"action" json:"action"`
	Reason      string             `bson:"reason" json:"reason"`
	DurationMs  *int64             `bson:"duration" json:"duration"` // timeout only
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewModerationLogEntry applies the default reason and keeps the duration only for timeouts
func NewModerationLogEntry(action Action, guildID, userID, moderatorID, reason string, duration time.Duration, now time.Time) *ModerationLogEntry {
	if reason == "" {
		reason = DefaultReason
	}

	entry := &ModerationLogEntry{
		ID:          primitive.NewObjectID(),
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Action:      action,
		Reason:      reason,
		CreatedAt:   now,
	}

	if action == ActionTimeout {
		ms := duration.Milliseconds()
		entry.DurationMs = &ms
	}

	return entry
}
