package mod

import (
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// MaxTimeoutMinutes is the platform limit of 28 days
const MaxTimeoutMinutes = 40320

// createTimeoutCommand creates the /timeout command
func createTimeoutCommand(engine *moderation.Engine) *discord.Command {
	return discord.NewCommand(
		"timeout",
		"Give a user a timeout",
		timeoutHandler(engine),
	).WithOptions(
		targetOption("The user to timeout"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duration",
			Description: "Duration of the timeout in minutes",
			Required:    true,
			MinValue:    minValue(1),
			MaxValue:    MaxTimeoutMinutes,
		},
		reasonOption("Reason for the timeout", false),
	).WithPermissions(discordgo.PermissionModerateMembers).GuildOnly()
}

func timeoutHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		minutes := ctx.GetIntOptionOr("duration", 1)
		if minutes < 1 {
			minutes = 1
		}
		if minutes > MaxTimeoutMinutes {
			minutes = MaxTimeoutMinutes
		}

		return runAction(ctx, engine, moderation.Request{
			Action:   models.ActionTimeout,
			Target:   ctx.GetUserOption("target"),
			Reason:   ctx.GetStringOption("reason"),
			Duration: time.Duration(minutes) * time.Minute,
		})
	}
}
