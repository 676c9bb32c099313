package utils

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/config"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// createStatsCommand creates the /stats command
func createStatsCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"stats",
		"Shows moderation totals and runtime statistics",
		statsHandler(deps),
	).WithCooldown(10)
}

func statsHandler(deps Deps) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		if err := ctx.Defer(false); err != nil {
			return err
		}

		totals, err := moderation.CollectTotals(ctx.Context(), deps.Logs, deps.Warnings)
		if err != nil {
			logger.Error(fmt.Sprintf("Error obteniendo estadísticas: %v", err), "CMD-Stats")
			return ctx.FollowUp("❌ An error occurred while fetching statistics.", true)
		}

		var runtimeInfo RuntimeInfo
		if ctx.Client != nil {
			runtimeInfo = collectRuntime(ctx.Client)
		}
		return ctx.FollowUpEmbed(StatsEmbed(totals, runtimeInfo), false)
	}
}

// RuntimeInfo is the process side of /stats
type RuntimeInfo struct {
	Version    string
	GoVersion  string
	AllocMB    float64
	Goroutines int
	CPUs       int
	Uptime     time.Duration
	Guilds     int
	Members    int
}

func collectRuntime(client *discord.ExtendedClient) RuntimeInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeInfo{
		Version:    config.Version,
		GoVersion:  strings.TrimPrefix(runtime.Version(), "go"),
		AllocMB:    float64(m.Alloc) / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		Uptime:     client.Uptime(),
		Guilds:     client.GuildCount(),
		Members:    client.UserCount(),
	}
}

// StatsEmbed renders the moderation totals, followed by runtime fields when known
func StatsEmbed(t moderation.Totals, r RuntimeInfo) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📊 Bot Statistics",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "⚠️ Active Warnings", Value: fmt.Sprint(t.Warnings), Inline: true},
			{Name: "🔨 Bans", Value: fmt.Sprint(t.Bans), Inline: true},
			{Name: "👢 Kicks", Value: fmt.Sprint(t.Kicks), Inline: true},
			{Name: "⏰ Timeouts", Value: fmt.Sprint(t.Timeouts), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if r.Version == "" {
		return embed
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "🤖 Bot Version", Value: r.Version, Inline: true},
		&discordgo.MessageEmbedField{Name: "🐹 Go Version", Value: r.GoVersion, Inline: true},
		&discordgo.MessageEmbedField{Name: "📚 DiscordGo Version", Value: discordgo.VERSION, Inline: true},
		&discordgo.MessageEmbedField{Name: "🖥 RAM", Value: fmt.Sprintf("%.2f MB", r.AllocMB), Inline: true},
		&discordgo.MessageEmbedField{Name: "⚙️ CPU", Value: fmt.Sprintf("%d Goroutines / %d CPUs", r.Goroutines, r.CPUs), Inline: true},
		&discordgo.MessageEmbedField{Name: "⏱ Uptime", Value: discord.FormatUptime(r.Uptime), Inline: true},
		&discordgo.MessageEmbedField{Name: "🏠 Guilds", Value: fmt.Sprint(r.Guilds), Inline: true},
		&discordgo.MessageEmbedField{Name: "👥 Members", Value: fmt.Sprint(r.Members), Inline: true},
	)
	return embed
}
