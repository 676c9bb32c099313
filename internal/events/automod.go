package events

import (
	"fmt"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func actionLabel(t discordgo.AutoModerationActionType) string {
	switch t {
	case discordgo.AutoModerationRuleActionBlockMessage:
		return "Message blocked"
	case discordgo.AutoModerationRuleActionSendAlertMessage:
		return "Alert sent"
	case discordgo.AutoModerationRuleActionTimeout:
		return "User timed out"
	}
	return "Unknown"
}

// AutomodActionEmbed reports an executed AutoMod rule to the log channel
func AutomodActionEmbed(e *discordgo.AutoModerationActionExecution, ruleName string, now time.Time) *discordgo.MessageEmbed {
	if ruleName == "" {
		ruleName = e.RuleID
	}
	embed := &discordgo.MessageEmbed{
		Title: "🤖 AutoMod Action",
		Color: 0xFF6B35,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s>", e.UserID), Inline: true},
			{Name: "Rule", Value: ruleName, Inline: true},
			{Name: "Action", Value: actionLabel(e.Action.Type), Inline: true},
		},
		Timestamp: now.Format(time.RFC3339),
	}
	if e.ChannelID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Channel", Value: fmt.Sprintf("<#%s>", e.ChannelID), Inline: true})
	}
	if e.MatchedKeyword != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Matched", Value: "`" + e.MatchedKeyword + "`", Inline: true})
	}
	if e.Content != "" {
		content := e.Content
		if len(content) > 1000 {
			content = content[:1000] + "..."
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Content", Value: content})
	}
	return embed
}

// onAutoModerationAction forwards AutoMod executions to a log channel.
// Discord fires one event per action, so only the block action is reported.
func onAutoModerationAction(s *discordgo.Session, e *discordgo.AutoModerationActionExecution) {
	if e.Action.Type != discordgo.AutoModerationRuleActionBlockMessage {
		return
	}
	logger.Info(fmt.Sprintf("🤖 AutoMod actuó sobre %s en %s", e.UserID, e.GuildID), "AutoMod")

	guild, err := cachedGuild(s, e.GuildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error obteniendo servidor: %v", err), "AutoMod")
		return
	}
	channelID := logChannel(guild)
	if channelID == "" {
		return
	}

	var ruleName string
	if rule, err := s.AutoModerationRule(e.GuildID, e.RuleID); err == nil {
		ruleName = rule.Name
	}

	if _, err := s.ChannelMessageSendEmbed(channelID, AutomodActionEmbed(e, ruleName, time.Now())); err != nil {
		logger.Error(fmt.Sprintf("Error enviando alerta de AutoMod: %v", err), "AutoMod")
	}
}
