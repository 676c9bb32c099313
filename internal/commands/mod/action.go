package mod

import (
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func targetOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "target",
		Description: description,
		Required:    true,
	}
}

func reasonOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: description,
		Required:    required,
	}
}

func minValue(v float64) *float64 {
	return &v
}

// guildName reads the guild name from the state cache
func guildName(ctx *discord.CommandContext) string {
	if ctx.Client == nil || ctx.Client.Session == nil || ctx.Client.Session.State == nil {
		return ""
	}
	g, err := ctx.Client.Session.State.Guild(ctx.GuildID())
	if err != nil {
		return ""
	}
	return g.Name
}

// followUpPrivately drops the public deferred response and answers ephemerally
func followUpPrivately(ctx *discord.CommandContext, content string) error {
	if ctx.Deferred() {
		if err := ctx.DeleteReply(); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo borrar la respuesta diferida: %v", err), "CMD-Mod")
		}
	}
	return ctx.FollowUp(content, true)
}

// runAction defers, runs the request through the engine and reports the outcome.
// Rejections and failures are answered privately; successes go to the channel.
func runAction(ctx *discord.CommandContext, engine *moderation.Engine, req moderation.Request) error {
	req.GuildID = ctx.GuildID()
	req.GuildName = guildName(ctx)
	req.Moderator = ctx.User()

	if err := ctx.Defer(false); err != nil {
		return err
	}

	res, err := engine.Execute(ctx.Context(), req)
	if err != nil {
		var rejection *moderation.Rejection
		if errors.As(err, &rejection) {
			return followUpPrivately(ctx, rejection.Message)
		}

		targetID := "?"
		if req.Target != nil {
			targetID = req.Target.ID
		}
		logger.Error(fmt.Sprintf("Error ejecutando %s sobre %s: %v", req.Action, targetID, err), "CMD-Mod")
		return followUpPrivately(ctx, moderation.FailureMessage(req.Action))
	}

	if err := ctx.FollowUpEmbed(moderation.ConfirmationEmbed(res, time.Now()), false); err != nil {
		return err
	}
	if advisory := moderation.AdvisoryEmbed(res); advisory != nil {
		return ctx.FollowUpEmbed(advisory, false)
	}
	return nil
}
