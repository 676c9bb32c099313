package mod

import (
	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// createKickCommand creates the /kick command
func createKickCommand(engine *moderation.Engine) *discord.Command {
	return discord.NewCommand(
		"kick",
		"Kick a user from the server",
		kickHandler(engine),
	).WithOptions(
		targetOption("The user to kick"),
		reasonOption("Reason for the kick", false),
	).WithPermissions(discordgo.PermissionKickMembers).GuildOnly()
}

func kickHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		return runAction(ctx, engine, moderation.Request{
			Action: models.ActionKick,
			Target: ctx.GetUserOption("target"),
			Reason: ctx.GetStringOption("reason"),
		})
	}
}
