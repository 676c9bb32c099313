package moderation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// DiscordPlatform implements Platform over a discordgo session
type DiscordPlatform struct {
	session *discordgo.Session
}

var _ Platform = (*DiscordPlatform)(nil)

// NewDiscordPlatform creates a platform over session
func NewDiscordPlatform(session *discordgo.Session) *DiscordPlatform {
	return &DiscordPlatform{session: session}
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// BotID returns the id of the connected bot user
func (p *DiscordPlatform) BotID() string {
	if p.session.State == nil || p.session.State.User == nil {
		return ""
	}
	return p.session.State.User.ID
}

// ResolveMember fetches a guild member, ErrMemberNotFound when absent
func (p *DiscordPlatform) ResolveMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if p.session.State != nil {
		if m, err := p.session.State.Member(guildID, userID); err == nil {
			return m, nil
		}
	}

	m, err := p.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

func (p *DiscordPlatform) guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if p.session.State != nil {
		if g, err := p.session.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
			return g, nil
		}
	}
	return p.session.Guild(guildID, discordgo.WithContext(ctx))
}

// Actionable compares the bot's permissions and top role against the target
func (p *DiscordPlatform) Actionable(ctx context.Context, guildID string, member *discordgo.Member, action models.Action) (bool, error) {
	g, err := p.guild(ctx, guildID)
	if err != nil {
		return false, fmt.Errorf("fetch guild: %w", err)
	}
	bot, err := p.ResolveMember(ctx, guildID, p.BotID())
	if err != nil {
		return false, fmt.Errorf("fetch bot member: %w", err)
	}
	return CanModerate(g, bot, member, action), nil
}

// IsBanned reports whether the user has an active ban
func (p *DiscordPlatform) IsBanned(ctx context.Context, guildID, userID string) (bool, error) {
	_, err := p.session.GuildBan(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Ban bans the user
func (p *DiscordPlatform) Ban(ctx context.Context, guildID, userID, auditReason string, deleteMessageDays int) error {
	return p.session.GuildBanCreateWithReason(guildID, userID, auditReason, deleteMessageDays, discordgo.WithContext(ctx))
}

// Kick removes the member from the guild
func (p *DiscordPlatform) Kick(ctx context.Context, guildID, userID, auditReason string) error {
	return p.session.GuildMemberDeleteWithReason(guildID, userID, auditReason, discordgo.WithContext(ctx))
}

// Timeout disables communication until the given time
func (p *DiscordPlatform) Timeout(ctx context.Context, guildID, userID string, until time.Time, auditReason string) error {
	return p.session.GuildMemberTimeout(guildID, userID, &until,
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(auditReason),
	)
}

// SendDirect opens a DM channel and sends the embed
func (p *DiscordPlatform) SendDirect(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error {
	ch, err := p.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = p.session.ChannelMessageSendEmbed(ch.ID, embed, discordgo.WithContext(ctx))
	return err
}

func requiredPermission(action models.Action) int64 {
	switch action {
	case models.ActionBan:
		return discordgo.PermissionBanMembers
	case models.ActionKick:
		return discordgo.PermissionKickMembers
	case models.ActionTimeout:
		return discordgo.PermissionModerateMembers
	}
	return 0
}

// allPermissions sets every permission bit Discord defines
const allPermissions int64 = 1<<53 - 1

// MemberPermissions computes guild-level permissions from roles
func MemberPermissions(g *discordgo.Guild, m *discordgo.Member) int64 {
	if m.User != nil && g.OwnerID == m.User.ID {
		return allPermissions
	}

	var perms int64
	for _, r := range g.Roles {
		if r.ID == g.ID {
			perms |= r.Permissions
			break
		}
	}
	for _, r := range g.Roles {
		for _, id := range m.Roles {
			if r.ID == id {
				perms |= r.Permissions
			}
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return allPermissions
	}
	return perms
}

// highestRole returns the top role position of a member, 0 for @everyone only
func highestRole(g *discordgo.Guild, m *discordgo.Member) int {
	top := 0
	for _, r := range g.Roles {
		for _, id := range m.Roles {
			if r.ID == id && r.Position > top {
				top = r.Position
			}
		}
	}
	return top
}

// CanModerate applies the platform rules: the bot needs the action's
// permission, the owner is untouchable, and the bot's top role must be above
// the target's. Administrators cannot be timed out.
func CanModerate(g *discordgo.Guild, bot, target *discordgo.Member, action models.Action) bool {
	if g == nil || bot == nil || target == nil || target.User == nil {
		return false
	}
	if target.User.ID == g.OwnerID {
		return false
	}

	need := requiredPermission(action)
	if MemberPermissions(g, bot)&need != need {
		return false
	}

	if action == models.ActionTimeout && MemberPermissions(g, target)&discordgo.PermissionAdministrator != 0 {
		return false
	}

	if bot.User != nil && bot.User.ID == g.OwnerID {
		return true
	}
	return highestRole(g, bot) > highestRole(g, target)
}
