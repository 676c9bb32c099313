package automod

import (
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterAutomodCommands registers the /automod group
func RegisterAutomodCommands(client *discord.ExtendedClient) error {
	_, err := client.CommandHandler.BuildCommandGroup(
		"automod",
		"Manage AutoMod rules",
		createRuleCommand(),
		listRulesCommand(),
		deleteRuleCommand(),
	)
	return err
}

func sessionAPI(ctx *discord.CommandContext) (rulesAPI, error) {
	if ctx.Client == nil || ctx.Client.Session == nil {
		return nil, errors.New("automod: no session")
	}
	return ctx.Client.Session, nil
}

func createRuleCommand() *discord.Command {
	return discord.NewCommand("create", "Create a new AutoMod rule", func(ctx *discord.CommandContext) error {
		api, err := sessionAPI(ctx)
		if err != nil {
			return err
		}
		return createRule(ctx, api)
	}).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "type",
			Description: "Type of AutoMod rule",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Spam Messages", Value: KindSpam},
				{Name: "Keywords", Value: KindKeyword},
				{Name: "Mention Spam", Value: KindMention},
			},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "name",
			Description: "Name for the AutoMod rule",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "keywords",
			Description: "Keywords separated by commas (only for keyword type)",
			Required:    false,
		},
	).WithPermissions(discordgo.PermissionManageGuild).GuildOnly()
}

func listRulesCommand() *discord.Command {
	return discord.NewCommand("list", "Show all AutoMod rules", func(ctx *discord.CommandContext) error {
		api, err := sessionAPI(ctx)
		if err != nil {
			return err
		}
		return listRules(ctx, api)
	}).WithPermissions(discordgo.PermissionManageGuild).GuildOnly()
}

func deleteRuleCommand() *discord.Command {
	return discord.NewCommand("delete", "Delete an AutoMod rule", func(ctx *discord.CommandContext) error {
		api, err := sessionAPI(ctx)
		if err != nil {
			return err
		}
		return deleteRule(ctx, api)
	}).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "rule-id",
			Description: "ID of the rule to delete",
			Required:    true,
		},
	).WithPermissions(discordgo.PermissionManageGuild).GuildOnly()
}

func createRule(ctx *discord.CommandContext, api rulesAPI) error {
	kind := ctx.GetStringOption("type")
	name := ctx.GetStringOption("name")
	keywords := ctx.GetStringOption("keywords")

	if err := ctx.Defer(false); err != nil {
		return err
	}

	rule, err := BuildRule(kind, name, keywords, ctx.Interaction.ChannelID)
	if errors.Is(err, ErrKeywordsRequired) {
		return ctx.FollowUp("❌ Keywords are required for keyword rules!", false)
	}
	if err != nil {
		return ctx.FollowUp("❌ Unknown AutoMod rule type.", false)
	}

	created, err := api.AutoModerationRuleCreate(ctx.GuildID(), rule, discordgo.WithContext(ctx.Context()))
	if err != nil {
		logger.Error(fmt.Sprintf("Error creando regla AutoMod en %s: %v", ctx.GuildID(), err), "CMD-AutoMod")
		return ctx.FollowUp("❌ An error occurred while creating the AutoMod rule.", false)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "✅ AutoMod Rule Created",
		Description: fmt.Sprintf("AutoMod rule **%s** has been created!", created.Name),
		Color:       0x00FF00,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Rule ID", Value: created.ID, Inline: true},
			{Name: "Type", Value: kind, Inline: true},
			{Name: "Status", Value: enabledLabel(created), Inline: true},
		},
	}
	if kind == KindKeyword {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Keywords", Value: keywords})
	}
	return ctx.FollowUpEmbed(embed, false)
}

func listRules(ctx *discord.CommandContext, api rulesAPI) error {
	if err := ctx.Defer(false); err != nil {
		return err
	}

	rules, err := api.AutoModerationRules(ctx.GuildID(), discordgo.WithContext(ctx.Context()))
	if err != nil {
		logger.Error(fmt.Sprintf("Error listando reglas AutoMod en %s: %v", ctx.GuildID(), err), "CMD-AutoMod")
		return ctx.FollowUp("❌ An error occurred while fetching AutoMod rules.", false)
	}

	embed := RuleListEmbed(rules)
	if embed == nil {
		return ctx.FollowUp("📝 There are no AutoMod rules configured.", false)
	}
	embed.Timestamp = time.Now().Format(time.RFC3339)
	return ctx.FollowUpEmbed(embed, false)
}

func deleteRule(ctx *discord.CommandContext, api rulesAPI) error {
	ruleID := ctx.GetStringOption("rule-id")

	if err := ctx.Defer(false); err != nil {
		return err
	}

	rule, err := api.AutoModerationRule(ctx.GuildID(), ruleID, discordgo.WithContext(ctx.Context()))
	if err != nil || rule == nil {
		return ctx.FollowUp("❌ AutoMod rule not found!", false)
	}

	if err := api.AutoModerationRuleDelete(ctx.GuildID(), ruleID, discordgo.WithContext(ctx.Context())); err != nil {
		logger.Error(fmt.Sprintf("Error borrando regla AutoMod %s: %v", ruleID, err), "CMD-AutoMod")
		return ctx.FollowUp("❌ An error occurred while deleting the AutoMod rule.", false)
	}

	return ctx.FollowUpEmbed(&discordgo.MessageEmbed{
		Title:       "🗑️ AutoMod Rule Deleted",
		Description: fmt.Sprintf("AutoMod rule **%s** has been deleted!", rule.Name),
		Color:       0xFF0000,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Rule ID", Value: ruleID, Inline: true},
		},
	}, false)
}
