package mod

import (
	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// createBanCommand creates the /ban command
func createBanCommand(engine *moderation.Engine) *discord.Command {
	return discord.NewCommand(
		"ban",
		"Ban a user from the server",
		banHandler(engine),
	).WithOptions(
		targetOption("The user to ban"),
		reasonOption("Reason for the ban", false),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "delete-days",
			Description: "Number of days of messages to delete (0-7)",
			Required:    false,
			MinValue:    minValue(0),
			MaxValue:    7,
		},
	).WithPermissions(discordgo.PermissionBanMembers).GuildOnly()
}

func banHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		return runAction(ctx, engine, moderation.Request{
			Action:            models.ActionBan,
			Target:            ctx.GetUserOption("target"),
			Reason:            ctx.GetStringOption("reason"),
			DeleteMessageDays: int(ctx.GetIntOptionOr("delete-days", 0)),
		})
	}
}
