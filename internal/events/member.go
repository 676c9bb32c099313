package events

import (
	"fmt"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// WelcomeEmbed greets a new member
func WelcomeEmbed(u *discordgo.User, g *discordgo.Guild, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "👋 Welcome!",
		Description: fmt.Sprintf("Welcome to **%s**, <@%s>! You are member **#%d**.", g.Name, u.ID, g.MemberCount),
		Color:       0x00FF00,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: u.AvatarURL("128"),
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: g.Name,
		},
		Timestamp: now.Format(time.RFC3339),
	}
}

// onGuildMemberAdd is called when a new member joins the server
func onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	logger.Info(fmt.Sprintf("👋 Nuevo miembro: %s en servidor %s", m.User.Username, m.GuildID), "Member")

	guild, err := cachedGuild(s, m.GuildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error obteniendo servidor: %v", err), "Member")
		return
	}

	channelID := welcomeChannel(guild)
	if channelID == "" {
		logger.Debug("Sin canal de bienvenida en "+guild.Name, "Member")
		return
	}

	if _, err := s.ChannelMessageSendEmbed(channelID, WelcomeEmbed(m.User, guild, time.Now())); err != nil {
		logger.Error(fmt.Sprintf("Error enviando mensaje de bienvenida: %v", err), "Member")
	}
}

// onGuildMemberRemove is called when a member leaves the server
func onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	logger.Info(fmt.Sprintf("👋 Adiós: %s salió del servidor %s", m.User.Username, m.GuildID), "Member")
}
