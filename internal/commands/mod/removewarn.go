package mod

import (
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/internal/warnings"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// createRemoveWarnCommand creates the /removewarn command
func createRemoveWarnCommand(ledger *warnings.Ledger) *discord.Command {
	return discord.NewCommand(
		"removewarn",
		"Revoke a warning by its ID",
		removeWarnHandler(ledger),
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: "ID of the warning (see /warnings)",
			Required:    true,
		},
	).WithPermissions(discordgo.PermissionModerateMembers).GuildOnly()
}

func removeWarnHandler(ledger *warnings.Ledger) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		id := ctx.GetStringOption("id")

		if err := ctx.Defer(true); err != nil {
			return err
		}

		err := ledger.Revoke(ctx.Context(), ctx.GuildID(), id)
		switch {
		case errors.Is(err, warnings.ErrInvalidWarningID):
			return ctx.FollowUp("❌ That is not a valid warning ID.", true)
		case errors.Is(err, warnings.ErrWarningNotFound):
			return ctx.FollowUp("❌ No active warning with that ID was found in this server.", true)
		case err != nil:
			logger.Error(fmt.Sprintf("Error revocando advertencia %s: %v", id, err), "CMD-RemoveWarn")
			return ctx.FollowUp("❌ An error occurred while removing the warning.", true)
		}

		logger.Info(fmt.Sprintf("Advertencia %s revocada por %s", id, ctx.User().ID), "CMD-RemoveWarn")
		return ctx.FollowUpEmbed(&discordgo.MessageEmbed{
			Title:       "✅ Warning Removed",
			Description: fmt.Sprintf("Warning `%s` is no longer active.", id),
			Color:       0x00FF00,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Moderator", Value: moderation.Tag(ctx.User()), Inline: true},
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}, true)
	}
}
