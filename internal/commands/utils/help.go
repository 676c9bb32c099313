package utils

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createHelpCommand creates the /help command
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Shows all available commands",
		func(ctx *discord.CommandContext) error {
			var catalog []discord.CatalogEntry
			if ctx.Client != nil {
				catalog = ctx.Client.Registry.Catalog()
			}
			return ctx.ReplyEmbed(HelpEmbed(catalog))
		},
	)
}

var helpSections = []struct {
	category string
	title    string
}{
	{discord.CategoryUtility, "🔧 General Commands"},
	{discord.CategoryModeration, "🛡️ Moderation Commands"},
	{discord.CategoryAutomod, "🤖 AutoMod Commands"},
}

// HelpEmbed lists the catalog grouped by category. Empty categories are left out.
func HelpEmbed(catalog []discord.CatalogEntry) *discordgo.MessageEmbed {
	lines := make(map[string][]string)
	for _, e := range catalog {
		desc := e.Description
		if desc == "" {
			desc = "No description"
		}
		lines[e.Category] = append(lines[e.Category], fmt.Sprintf("`/%s` - %s", e.Name, desc))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📚 Help - Available Commands",
		Description: "Here are all available commands:",
		Color:       0x0099FF,
	}
	for _, section := range helpSections {
		if len(lines[section.category]) == 0 {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  section.title,
			Value: strings.Join(lines[section.category], "\n"),
		})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "ℹ️ Bot Details",
		Value: "Use `/info bot` for basic bot information or `/status` for a health overview.",
	})
	return embed
}
