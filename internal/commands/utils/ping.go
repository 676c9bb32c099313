package utils

import (
	"fmt"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createPingCommand creates the /ping command
func createPingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Shows bot latency and API latency",
		pingHandler,
	)
}

// pingHandler measures the round trip of the first reply
func pingHandler(ctx *discord.CommandContext) error {
	start := time.Now()
	if err := ctx.Reply("Pinging..."); err != nil {
		return err
	}
	roundTrip := time.Since(start)

	var heartbeat time.Duration
	if ctx.Client != nil {
		heartbeat = ctx.Client.Ping()
	}

	empty := ""
	_, err := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, &discordgo.WebhookEdit{
		Content: &empty,
		Embeds:  &[]*discordgo.MessageEmbed{pingEmbed(roundTrip, heartbeat)},
	})
	return err
}

func pingEmbed(roundTrip, heartbeat time.Duration) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🏓 Pong!",
		Color: 0x00FF00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bot Latency", Value: fmt.Sprintf("%dms", roundTrip.Milliseconds()), Inline: true},
			{Name: "API Latency", Value: fmt.Sprintf("%dms", heartbeat.Milliseconds()), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
