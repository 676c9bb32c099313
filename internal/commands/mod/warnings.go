package mod

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/internal/warnings"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// createWarningsCommand creates the /warnings command
func createWarningsCommand(ledger *warnings.Ledger) *discord.Command {
	return discord.NewCommand(
		"warnings",
		"View warnings for a user",
		warningsHandler(ledger),
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "target",
			Description: "The user to view warnings for",
			Required:    false,
		},
	).WithPermissions(discordgo.PermissionModerateMembers).GuildOnly()
}

func warningsHandler(ledger *warnings.Ledger) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		target := ctx.GetUserOption("target")
		if target == nil {
			target = ctx.User()
		}

		if err := ctx.Defer(false); err != nil {
			return err
		}

		history, err := ledger.History(ctx.Context(), ctx.GuildID(), target.ID, warnings.DefaultRecentLimit)
		if err != nil {
			logger.Error(fmt.Sprintf("Error obteniendo advertencias de %s: %v", target.ID, err), "CMD-Warnings")
			return ctx.FollowUp("❌ An error occurred while fetching warnings.", false)
		}

		embed := HistoryEmbed(HistoryView{
			Target:    target,
			CheckedBy: ctx.User(),
			GuildName: guildName(ctx),
			History:   history,
			Moderator: moderatorResolver(ctx),
		}, time.Now())
		return ctx.FollowUpEmbed(embed, false)
	}
}

// moderatorResolver looks moderators up in the state cache and then the API
func moderatorResolver(ctx *discord.CommandContext) func(id string) string {
	return func(id string) string {
		if ctx.Client == nil || ctx.Client.Session == nil {
			return "Unknown User"
		}
		u, err := ctx.Client.Session.User(id)
		if err != nil {
			return "Unknown User"
		}
		return moderation.Tag(u)
	}
}

// HistoryView is what the warning history embed is built from
type HistoryView struct {
	Target    *discordgo.User
	CheckedBy *discordgo.User
	GuildName string
	History   *warnings.History
	Moderator func(id string) string
}

func pluralWarnings(n int64) string {
	if n == 1 {
		return "warning"
	}
	return "warnings"
}

// HistoryEmbed renders a member's warning history: a clean record when there
// are none, otherwise the risk level, the most recent entries and the true total.
func HistoryEmbed(v HistoryView, now time.Time) *discordgo.MessageEmbed {
	h := v.History
	userField := &discordgo.MessageEmbedField{
		Name:   "👤 User",
		Value:  fmt.Sprintf("%s\n`%s`", moderation.Tag(v.Target), v.Target.ID),
		Inline: true,
	}
	checkedBy := &discordgo.MessageEmbedField{Name: "🔍 Checked By", Value: moderation.Tag(v.CheckedBy), Inline: true}
	guild := v.GuildName
	if guild == "" {
		guild = "this server"
	}

	if h.Total == 0 {
		return &discordgo.MessageEmbed{
			Title:       "✅ Clean Record",
			Description: fmt.Sprintf("**%s** has no active warnings.\n\n🎉 This user has maintained good behavior!", moderation.Tag(v.Target)),
			Color:       warnings.TierClean.Color(),
			Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: v.Target.AvatarURL("")},
			Timestamp:   now.Format(time.RFC3339),
			Fields: []*discordgo.MessageEmbedField{
				userField,
				{Name: "📊 Status", Value: "🟢 **Good Standing**\n0 warnings", Inline: true},
				checkedBy,
			},
			Footer: &discordgo.MessageEmbedFooter{Text: "Warning Check • " + guild},
		}
	}

	level := h.Tier.Icon() + " " + h.Tier.Label()
	embed := &discordgo.MessageEmbed{
		Title:       "⚠️ Warning History: " + moderation.Tag(v.Target),
		Description: fmt.Sprintf("%s **%d** active %s • **%s**", h.Tier.Icon(), h.Total, pluralWarnings(h.Total), level),
		Color:       h.Tier.Color(),
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: v.Target.AvatarURL("")},
		Timestamp:   now.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			userField,
			{Name: "📊 Risk Level", Value: level, Inline: true},
			checkedBy,
		},
	}

	resolve := v.Moderator
	if resolve == nil {
		resolve = func(string) string { return "Unknown User" }
	}

	for i, w := range h.Recent {
		created := w.CreatedAt.Unix()
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("%s Warning #%d", h.Tier.Icon(), h.Total-int64(i)),
			Value: strings.Join([]string{
				fmt.Sprintf("**📝 Reason:** `%s`", w.Reason),
				"**👮 Moderator:** " + resolve(w.ModeratorID),
				fmt.Sprintf("**📅 Date:** <t:%d:F> (<t:%d:R>)", created, created),
				fmt.Sprintf("**🆔 ID:** `%s`", w.ID.Hex()),
			}, "\n"),
		})
	}

	if h.Truncated() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "📄 Note",
			Value: fmt.Sprintf("Showing the **%d most recent** warnings out of **%d total** warnings.", len(h.Recent), h.Total),
		})
	}

	if rec := h.Tier.Recommendations(); rec != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "⚡ Recommended Actions", Value: rec})
	}

	pages := (h.Total + warnings.DefaultRecentLimit - 1) / warnings.DefaultRecentLimit
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Warning History • %s • Page 1/%d", guild, pages)}
	return embed
}
