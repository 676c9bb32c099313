package mod

import (
	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// createWarnCommand creates the /warn command
func createWarnCommand(engine *moderation.Engine) *discord.Command {
	return discord.NewCommand(
		"warn",
		"Give a user a warning",
		warnHandler(engine),
	).WithOptions(
		targetOption("The user to warn"),
		reasonOption("Reason for the warning", true),
	).WithPermissions(discordgo.PermissionModerateMembers).GuildOnly()
}

func warnHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		return runAction(ctx, engine, moderation.Request{
			Action: models.ActionWarn,
			Target: ctx.GetUserOption("target"),
			Reason: ctx.GetStringOption("reason"),
		})
	}
}
