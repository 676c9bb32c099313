package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// BulkDeleteMaxAge is the oldest message Discord accepts in a bulk delete
const BulkDeleteMaxAge = 14 * 24 * time.Hour

// messageAPI is the part of *discordgo.Session used by /clear
type messageAPI interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// createClearCommand creates the /clear command
func createClearCommand() *discord.Command {
	return discord.NewCommand(
		"clear",
		"Delete a number of messages from the channel",
		clearHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "Number of messages to delete (1-100)",
			Required:    true,
			MinValue:    minValue(1),
			MaxValue:    100,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "target",
			Description: "Only delete messages from this user",
			Required:    false,
		},
	).WithPermissions(discordgo.PermissionManageMessages).GuildOnly()
}

func clearHandler(ctx *discord.CommandContext) error {
	if ctx.Client == nil || ctx.Client.Session == nil {
		return fmt.Errorf("clear: no session")
	}

	amount := int(ctx.GetIntOptionOr("amount", 1))
	target := ctx.GetUserOption("target")

	if err := ctx.Defer(true); err != nil {
		return err
	}

	channelID := ctx.Interaction.ChannelID
	authorID := ""
	if target != nil {
		authorID = target.ID
	}

	deleted, err := clearMessages(ctx.Client.Session, channelID, amount, authorID, time.Now())
	if err != nil {
		logger.Error(fmt.Sprintf("Error borrando mensajes en %s: %v", channelID, err), "CMD-Clear")
		return ctx.FollowUp("❌ An error occurred while deleting messages.", true)
	}
	if deleted == 0 {
		return ctx.FollowUp("❌ No messages found to delete.", true)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🧹 Messages Deleted",
		Description: fmt.Sprintf("**%d** messages have been deleted", deleted),
		Color:       0x00FF00,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: "<#" + channelID + ">", Inline: true},
			{Name: "Moderator", Value: moderation.Tag(ctx.User()), Inline: true},
		},
	}
	if target != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "From User", Value: moderation.Tag(target), Inline: true})
	}
	return ctx.FollowUpEmbed(embed, true)
}

// partitionByAge splits message ids into those young enough for a bulk delete and the rest
func partitionByAge(messages []*discordgo.Message, authorID string, now time.Time) (recent, old []string) {
	cutoff := now.Add(-BulkDeleteMaxAge)
	for _, m := range messages {
		if authorID != "" && (m.Author == nil || m.Author.ID != authorID) {
			continue
		}
		if m.Timestamp.After(cutoff) {
			recent = append(recent, m.ID)
		} else {
			old = append(old, m.ID)
		}
	}
	return recent, old
}

// clearMessages deletes up to amount of the latest messages and returns how many went.
// Old messages are deleted one by one; a failure there is skipped.
func clearMessages(api messageAPI, channelID string, amount int, authorID string, now time.Time) (int, error) {
	messages, err := api.ChannelMessages(channelID, amount, "", "", "")
	if err != nil {
		return 0, fmt.Errorf("fetch messages: %w", err)
	}

	recent, old := partitionByAge(messages, authorID, now)
	deleted := 0

	switch len(recent) {
	case 0:
	case 1:
		if err := api.ChannelMessageDelete(channelID, recent[0]); err != nil {
			return 0, err
		}
		deleted++
	default:
		if err := api.ChannelMessagesBulkDelete(channelID, recent); err != nil {
			return 0, fmt.Errorf("bulk delete: %w", err)
		}
		deleted += len(recent)
	}

	for _, id := range old {
		if err := api.ChannelMessageDelete(channelID, id); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo borrar el mensaje antiguo %s: %v", id, err), "CMD-Clear")
			continue
		}
		deleted++
	}
	return deleted, nil
}
