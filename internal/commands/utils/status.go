package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createStatusCommand creates the /status command
func createStatusCommand(db StatusReporter) *discord.Command {
	return discord.NewCommand(
		"status",
		"Shows a quick status overview of the bot",
		func(ctx *discord.CommandContext) error {
			return ctx.ReplyEmbed(statusEmbed(ctx.Client, db))
		},
	)
}

// StatusSnapshot is what /status reports
type StatusSnapshot struct {
	Ping     time.Duration
	Uptime   time.Duration
	Database string
	Guilds   int
	Users    int
	Commands int
	BotName  string
}

func snapshot(client *discord.ExtendedClient, db StatusReporter) StatusSnapshot {
	s := StatusSnapshot{Database: "🟡 In-memory", BotName: "Bot"}
	if db != nil {
		s.Database, _ = db.GetStatus()
	}
	if client != nil {
		s.Ping = client.Ping()
		s.Uptime = client.Uptime()
		s.Guilds = client.GuildCount()
		s.Users = client.UserCount()
		s.Commands = client.Registry.Size()
		if u := client.BotUser(); u != nil {
			s.BotName = u.Username
		}
	}
	return s
}

// pingColor goes from green to yellow above 200ms and red above 500ms
func pingColor(ping time.Duration) int {
	switch ms := ping.Milliseconds(); {
	case ms > 500:
		return 0xFF0000
	case ms > 200:
		return 0xFFFF00
	}
	return 0x00FF00
}

// StatusEmbed renders a snapshot
func StatusEmbed(s StatusSnapshot) *discordgo.MessageEmbed {
	ping := "Calculating..."
	if s.Ping > 0 {
		ping = fmt.Sprintf("%dms", s.Ping.Milliseconds())
	}

	return &discordgo.MessageEmbed{
		Title: "⚡ Bot Status",
		Color: pingColor(s.Ping),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏓 Connection", Value: "**Ping:** " + ping, Inline: true},
			{Name: "⏱️ Uptime", Value: "**Online:** " + discord.FormatUptime(s.Uptime), Inline: true},
			{Name: "🗄️ Database", Value: "**Status:** " + s.Database, Inline: true},
			{
				Name: "📊 Statistics",
				Value: strings.Join([]string{
					fmt.Sprintf("**Servers:** %d", s.Guilds),
					fmt.Sprintf("**Users:** %d", s.Users),
					fmt.Sprintf("**Commands:** %d", s.Commands),
				}, "\n"),
			},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: s.BotName + " • Ready and operational"},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func statusEmbed(client *discord.ExtendedClient, db StatusReporter) *discordgo.MessageEmbed {
	return StatusEmbed(snapshot(client, db))
}
