// Package automod manages the guild's AutoMod rules through slash commands.
package automod

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Rule kinds offered by /automod create
const (
	KindSpam    = "spam"
	KindKeyword = "keyword"
	KindMention = "mention"
)

// DefaultMentionLimit is the mention total that triggers a mention-spam rule
const DefaultMentionLimit = 5

// mention spam is trigger type 5 in the AutoMod API
const triggerMentionSpam discordgo.AutoModerationRuleTriggerType = 5

var (
	ErrKeywordsRequired = errors.New("keywords are required for keyword rules")
	ErrUnknownKind      = errors.New("unknown rule type")
)

// rulesAPI is the part of *discordgo.Session used by the automod commands
type rulesAPI interface {
	AutoModerationRules(guildID string, options ...discordgo.RequestOption) ([]*discordgo.AutoModerationRule, error)
	AutoModerationRule(guildID, ruleID string, options ...discordgo.RequestOption) (*discordgo.AutoModerationRule, error)
	AutoModerationRuleCreate(guildID string, rule *discordgo.AutoModerationRule, options ...discordgo.RequestOption) (*discordgo.AutoModerationRule, error)
	AutoModerationRuleDelete(guildID, ruleID string, options ...discordgo.RequestOption) error
}

// SplitKeywords splits a comma separated list, dropping blanks
func SplitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// BuildRule builds an enabled rule that blocks the message and alerts alertChannelID
func BuildRule(kind, name, keywords, alertChannelID string) (*discordgo.AutoModerationRule, error) {
	enabled := true
	rule := &discordgo.AutoModerationRule{
		Name:      name,
		EventType: discordgo.AutoModerationEventMessageSend,
		Enabled:   &enabled,
		Actions: []discordgo.AutoModerationAction{
			{Type: discordgo.AutoModerationRuleActionBlockMessage},
		},
	}
	if alertChannelID != "" {
		rule.Actions = append(rule.Actions, discordgo.AutoModerationAction{
			Type:     discordgo.AutoModerationRuleActionSendAlertMessage,
			Metadata: &discordgo.AutoModerationActionMetadata{ChannelID: alertChannelID},
		})
	}

	switch kind {
	case KindSpam:
		rule.TriggerType = discordgo.AutoModerationEventTriggerSpam
	case KindKeyword:
		words := SplitKeywords(keywords)
		if len(words) == 0 {
			return nil, ErrKeywordsRequired
		}
		rule.TriggerType = discordgo.AutoModerationEventTriggerKeyword
		rule.TriggerMetadata = &discordgo.AutoModerationTriggerMetadata{KeywordFilter: words}
	case KindMention:
		rule.TriggerType = triggerMentionSpam
		rule.TriggerMetadata = &discordgo.AutoModerationTriggerMetadata{MentionTotalLimit: DefaultMentionLimit}
	default:
		return nil, ErrUnknownKind
	}
	return rule, nil
}

// TriggerName is the display name of a trigger type
func TriggerName(t discordgo.AutoModerationRuleTriggerType) string {
	switch t {
	case discordgo.AutoModerationEventTriggerKeyword:
		return "Keywords"
	case discordgo.AutoModerationEventTriggerSpam:
		return "Spam"
	case discordgo.AutoModerationEventTriggerKeywordPreset:
		return "Preset"
	case triggerMentionSpam:
		return "Mention Spam"
	}
	return "Unknown"
}

func enabledLabel(r *discordgo.AutoModerationRule) string {
	if r.Enabled != nil && *r.Enabled {
		return "✅ Enabled"
	}
	return "❌ Disabled"
}

// RuleListEmbed lists the rules of a guild. It returns nil when there are none.
func RuleListEmbed(rules []*discordgo.AutoModerationRule) *discordgo.MessageEmbed {
	if len(rules) == 0 {
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title:       "📋 AutoMod Rules",
		Description: fmt.Sprintf("There are **%d** AutoMod rules configured:", len(rules)),
		Color:       0x0099FF,
	}
	for i, r := range rules {
		// embeds hold at most 25 fields
		if i == 25 {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   r.Name + " (" + r.ID + ")",
			Value:  "**Type:** " + TriggerName(r.TriggerType) + "\n**Status:** " + enabledLabel(r),
			Inline: true,
		})
	}
	return embed
}
