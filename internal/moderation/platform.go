// Package moderation runs ban, kick, timeout and warn actions: precondition
// gates, best-effort DM, the platform call, the audit log entry and, for
// warns, the ledger bookkeeping.
package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// ErrMemberNotFound is returned by ResolveMember for users outside the guild
var ErrMemberNotFound = errors.New("member not found")

// Platform is the chat platform capability used by the engine
type Platform interface {
	// BotID is the user id of the bot itself
	BotID() string
	ResolveMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	// Actionable reports whether the bot may apply action to member
	Actionable(ctx context.Context, guildID string, member *discordgo.Member, action models.Action) (bool, error)
	IsBanned(ctx context.Context, guildID, userID string) (bool, error)
	Ban(ctx context.Context, guildID, userID, auditReason string, deleteMessageDays int) error
	Kick(ctx context.Context, guildID, userID, auditReason string) error
	Timeout(ctx context.Context, guildID, userID string, until time.Time, auditReason string) error
	SendDirect(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error
}

// Publisher receives every successful action
type Publisher interface {
	PublishAction(ctx context.Context, entry *models.ModerationLogEntry) error
}

// Tag renders a user the way moderators see it
func Tag(u *discordgo.User) string {
	if u == nil {
		return "Unknown User"
	}
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}
