package events

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

var (
	welcomeChannelNames = []string{"general", "welcome", "algemeen"}
	logChannelNames     = []string{"mod-log", "automod", "logs"}
)

// findTextChannel returns the first text channel whose name contains one of
// the keywords, checking keywords in order
func findTextChannel(g *discordgo.Guild, keywords []string) string {
	for _, kw := range keywords {
		for _, ch := range g.Channels {
			if ch.Type == discordgo.ChannelTypeGuildText && strings.Contains(strings.ToLower(ch.Name), kw) {
				return ch.ID
			}
		}
	}
	return ""
}

// welcomeChannel picks where greetings go, falling back to the system channel
func welcomeChannel(g *discordgo.Guild) string {
	if id := findTextChannel(g, welcomeChannelNames); id != "" {
		return id
	}
	return g.SystemChannelID
}

// logChannel picks where automod alerts go. Empty when the guild has none.
func logChannel(g *discordgo.Guild) string {
	return findTextChannel(g, logChannelNames)
}

// cachedGuild prefers the state cache, which carries channels
func cachedGuild(s *discordgo.Session, guildID string) (*discordgo.Guild, error) {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g, nil
		}
	}
	g, err := s.Guild(guildID)
	if err != nil {
		return nil, err
	}
	if len(g.Channels) == 0 {
		if g.Channels, err = s.GuildChannels(guildID); err != nil {
			return nil, err
		}
	}
	return g, nil
}
