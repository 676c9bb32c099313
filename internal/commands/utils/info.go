package utils

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createInfoCommand creates the /info command
func createInfoCommand() *discord.Command {
	return discord.NewCommand(
		"info",
		"Shows information about the bot, server, or user",
		infoHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "type",
			Description: "Type of information",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Bot", Value: "bot"},
				{Name: "Server", Value: "server"},
				{Name: "User", Value: "user"},
			},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "target",
			Description: "Select a user (only for user info)",
			Required:    false,
		},
	)
}

func infoHandler(ctx *discord.CommandContext) error {
	if ctx.Client == nil || ctx.Client.Session == nil {
		return fmt.Errorf("info: no session")
	}
	session := ctx.Client.Session

	switch ctx.GetStringOption("type") {
	case "bot":
		return ctx.ReplyEmbed(BotInfoEmbed(ctx.Client.BotUser(), ctx.Client.GuildCount(), ctx.Client.UserCount(), ctx.Client.StartTime))

	case "server":
		if ctx.GuildID() == "" {
			return ctx.ReplyEphemeral(discord.GuildOnlyMessage)
		}
		g, err := session.State.Guild(ctx.GuildID())
		if err != nil {
			if g, err = session.Guild(ctx.GuildID(), discordgo.WithContext(ctx.Context())); err != nil {
				return err
			}
		}
		return ctx.ReplyEmbed(ServerInfoEmbed(g))

	case "user":
		target := ctx.GetUserOption("target")
		if target == nil {
			target = ctx.User()
		}
		var member *discordgo.Member
		var roles []*discordgo.Role
		if ctx.GuildID() != "" {
			member, _ = session.GuildMember(ctx.GuildID(), target.ID, discordgo.WithContext(ctx.Context()))
			if g, err := session.State.Guild(ctx.GuildID()); err == nil {
				roles = g.Roles
			}
		}
		if member != nil && member.User != nil {
			target = member.User
		}
		return ctx.ReplyEmbed(UserInfoEmbed(target, member, roles))
	}

	return ctx.ReplyEphemeral("❌ Unknown information type.")
}

func createdAt(id string) string {
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return "Unknown"
	}
	return fmt.Sprintf("<t:%d:F>", t.Unix())
}

// BotInfoEmbed describes the bot account
func BotInfoEmbed(bot *discordgo.User, guilds, users int, started time.Time) *discordgo.MessageEmbed {
	if bot == nil {
		bot = &discordgo.User{Username: "Unknown"}
	}
	embed := &discordgo.MessageEmbed{
		Title:     "🤖 Bot Information",
		Color:     0x0099FF,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: bot.AvatarURL("")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bot Name", Value: moderation.Tag(bot), Inline: true},
			{Name: "Bot ID", Value: bot.ID, Inline: true},
			{Name: "Created", Value: createdAt(bot.ID)},
			{Name: "Servers", Value: fmt.Sprint(guilds), Inline: true},
			{Name: "Users", Value: fmt.Sprint(users), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if !started.IsZero() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Uptime", Value: fmt.Sprintf("<t:%d:R>", started.Unix()), Inline: true,
		})
	}
	return embed
}

// ServerInfoEmbed describes a guild
func ServerInfoEmbed(g *discordgo.Guild) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:     "🏰 Server Information",
		Color:     0xFF9900,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: g.IconURL("")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Server Name", Value: g.Name, Inline: true},
			{Name: "Server ID", Value: g.ID, Inline: true},
			{Name: "Owner", Value: "<@" + g.OwnerID + ">", Inline: true},
			{Name: "Members", Value: fmt.Sprint(g.MemberCount), Inline: true},
			{Name: "Channels", Value: fmt.Sprint(len(g.Channels)), Inline: true},
			{Name: "Roles", Value: fmt.Sprint(len(g.Roles)), Inline: true},
			{Name: "Created", Value: createdAt(g.ID)},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// UserInfoEmbed describes a user and, when present, their membership
func UserInfoEmbed(u *discordgo.User, m *discordgo.Member, guildRoles []*discordgo.Role) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "👤 User Information",
		Color:     0x9900FF,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL("")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Username", Value: moderation.Tag(u), Inline: true},
			{Name: "ID", Value: u.ID, Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if m == nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Account Created", Value: createdAt(u.ID)})
		return embed
	}

	nick := m.Nick
	if nick == "" {
		nick = "None"
	}
	joined := "Unknown"
	if !m.JoinedAt.IsZero() {
		joined = fmt.Sprintf("<t:%d:F>", m.JoinedAt.Unix())
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Nickname", Value: nick, Inline: true},
		&discordgo.MessageEmbedField{Name: "Account Created", Value: createdAt(u.ID)},
		&discordgo.MessageEmbedField{Name: "Joined Server", Value: joined},
		&discordgo.MessageEmbedField{Name: "Roles", Value: roleMentions(m, guildRoles)},
	)
	return embed
}

// roleMentions lists the member's roles, highest first
func roleMentions(m *discordgo.Member, guildRoles []*discordgo.Role) string {
	held := make(map[string]bool, len(m.Roles))
	for _, id := range m.Roles {
		held[id] = true
	}

	var ordered []*discordgo.Role
	for _, r := range guildRoles {
		if held[r.ID] {
			ordered = append(ordered, r)
			delete(held, r.ID)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position > ordered[j].Position })

	mentions := make([]string, 0, len(m.Roles))
	for _, r := range ordered {
		mentions = append(mentions, "<@&"+r.ID+">")
	}
	// roles missing from the cache keep their member order
	for _, id := range m.Roles {
		if held[id] {
			mentions = append(mentions, "<@&"+id+">")
		}
	}
	if len(mentions) == 0 {
		return "None"
	}
	return strings.Join(mentions, ", ")
}
