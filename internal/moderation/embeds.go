package moderation

import (
	"fmt"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/warnings"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

type actionStyle struct {
	color   int
	dmTitle string
	title   string
	past    string
}

var actionStyles = map[models.Action]actionStyle{
	models.ActionBan:     {color: 0xFF0000, dmTitle: "🔨 You have been banned", title: "🔨 User Banned", past: "banned from"},
	models.ActionKick:    {color: 0xFF6B35, dmTitle: "⚠️ You have been kicked", title: "👢 User Kicked", past: "kicked from"},
	models.ActionTimeout: {color: 0xFFA500, dmTitle: "⏰ You have been timed out", title: "⏰ User Timed Out", past: "timed out in"},
	models.ActionWarn:    {color: 0xFFFF00, dmTitle: "⚠️ You have received a warning", title: "⚠️ User Warned", past: "warned in"},
}

func guildLabel(name string) string {
	if name == "" {
		return "this server"
	}
	return name
}

func minutes(d time.Duration) string {
	m := int64(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

// ActionDMEmbed is sent to the target before a ban, kick or timeout
func ActionDMEmbed(req Request, now time.Time) *discordgo.MessageEmbed {
	style := actionStyles[req.Action]
	embed := &discordgo.MessageEmbed{
		Title:       style.dmTitle,
		Description: fmt.Sprintf("You have been %s **%s**", style.past, guildLabel(req.GuildName)),
		Color:       style.color,
		Timestamp:   now.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reason", Value: req.Reason, Inline: true},
			{Name: "Moderator", Value: Tag(req.Moderator), Inline: true},
		},
	}
	if req.Action == models.ActionTimeout {
		until := now.Add(req.Duration)
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Duration", Value: minutes(req.Duration), Inline: true},
			&discordgo.MessageEmbedField{Name: "Until", Value: fmt.Sprintf("<t:%d:F>", until.Unix()), Inline: true},
		)
	}
	return embed
}

// WarnDMEmbed is sent to a warned member once the new total is known
func WarnDMEmbed(req Request, total int64, now time.Time) *discordgo.MessageEmbed {
	style := actionStyles[models.ActionWarn]
	return &discordgo.MessageEmbed{
		Title:       style.dmTitle,
		Description: fmt.Sprintf("You have received a warning in **%s**", guildLabel(req.GuildName)),
		Color:       style.color,
		Timestamp:   now.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reason", Value: req.Reason},
			{Name: "Moderator", Value: Tag(req.Moderator), Inline: true},
			{Name: "Total warnings", Value: fmt.Sprint(total), Inline: true},
		},
	}
}

func notificationField(n NotificationOutcome) *discordgo.MessageEmbedField {
	value := "✅ Yes"
	if !n.Delivered {
		value = "❌ No"
	}
	return &discordgo.MessageEmbedField{Name: "DM Sent", Value: value, Inline: true}
}

// ConfirmationEmbed summarizes a completed action for the channel
func ConfirmationEmbed(res *Result, now time.Time) *discordgo.MessageEmbed {
	style := actionStyles[res.Action]
	embed := &discordgo.MessageEmbed{
		Title:       style.title,
		Description: fmt.Sprintf("**%s** has been %s the server", Tag(res.Target), style.past),
		Color:       style.color,
		Timestamp:   now.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", Tag(res.Target), res.Target.ID), Inline: true},
			{Name: "Moderator", Value: Tag(res.Moderator), Inline: true},
		},
	}

	switch res.Action {
	case models.ActionBan:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Messages deleted", Value: fmt.Sprintf("%d days", res.DeleteMessageDays), Inline: true,
		})
	case models.ActionTimeout:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Duration", Value: minutes(res.Duration), Inline: true},
			&discordgo.MessageEmbedField{Name: "Until", Value: fmt.Sprintf("<t:%d:F>", res.Until.Unix()), Inline: true},
		)
	case models.ActionWarn:
		embed.Description = fmt.Sprintf("**%s** has received a warning", Tag(res.Target))
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Total warnings", Value: fmt.Sprint(res.TotalWarnings), Inline: true},
			&discordgo.MessageEmbedField{Name: "Risk Level", Value: res.Tier.Icon() + " " + res.Tier.Label(), Inline: true},
		)
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Reason", Value: res.Reason},
		notificationField(res.Notification),
	)
	return embed
}

// AdvisoryEmbed suggests follow-up actions for members at high tier or above.
// It returns nil below that.
func AdvisoryEmbed(res *Result) *discordgo.MessageEmbed {
	if res.Action != models.ActionWarn || !res.Tier.AtLeast(warnings.TierHigh) {
		return nil
	}
	return &discordgo.MessageEmbed{
		Title:       "⚡ Recommended Actions",
		Description: fmt.Sprintf("**%s** now has **%d** active warnings (%s).", Tag(res.Target), res.TotalWarnings, res.Tier.Label()),
		Color:       res.Tier.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Suggestions", Value: res.Tier.Recommendations()},
		},
	}
}

// FailureMessage is the generic reply when an action fails after its checks
func FailureMessage(action models.Action) string {
	switch action {
	case models.ActionBan:
		return "❌ An error occurred while banning the user."
	case models.ActionKick:
		return "❌ An error occurred while kicking the user."
	case models.ActionTimeout:
		return "❌ An error occurred while timing out the user."
	case models.ActionWarn:
		return "❌ An error occurred while warning the user."
	}
	return "❌ An error occurred while executing this action."
}
