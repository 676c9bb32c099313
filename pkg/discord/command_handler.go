// Package discord provides the command handler for registering and syncing commands.
package discord

import (
	"fmt"
	"sync"

	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// commandAPI is the part of *discordgo.Session used to sync application commands
type commandAPI interface {
	ApplicationCommandBulkOverwrite(
		appID string,
		guildID string,
		commands []*discordgo.ApplicationCommand,
		options ...discordgo.RequestOption,
	) ([]*discordgo.ApplicationCommand, error)

	ApplicationCommands(
		appID string,
		guildID string,
		options ...discordgo.RequestOption,
	) ([]*discordgo.ApplicationCommand, error)
}

// CommandHandler manages command registration and sync with Discord
type CommandHandler struct {
	client           *ExtendedClient
	api              commandAPI
	mu               sync.Mutex
	slashCommands    []*discordgo.ApplicationCommand
	slashCommandsDev []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient, api commandAPI) *CommandHandler {
	return &CommandHandler{
		client:           client,
		api:              api,
		slashCommands:    make([]*discordgo.ApplicationCommand, 0),
		slashCommandsDev: make([]*discordgo.ApplicationCommand, 0),
	}
}

func (ch *CommandHandler) add(appCmd *discordgo.ApplicationCommand, dev bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	list := &ch.slashCommands
	if dev {
		list = &ch.slashCommandsDev
	}
	for i, existing := range *list {
		if existing.Name == appCmd.Name {
			(*list)[i] = appCmd
			return
		}
	}
	*list = append(*list, appCmd)
}

// RegisterCommand adds a top-level command to the registry and the sync list
func (ch *CommandHandler) RegisterCommand(cmd *Command) error {
	if err := ch.client.Registry.Register(cmd.Name, cmd); err != nil {
		return err
	}
	ch.add(cmd.ToApplicationCommand(), cmd.IsDev)
	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
	return nil
}

// BuildCommandGroup registers subcommands under "name.sub" routes and adds the
// group to the sync list. The group requires the union of its subcommands' permissions.
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) (*discordgo.ApplicationCommand, error) {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))
	var perms int64
	guildOnly, dev := false, false

	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		if err := ch.client.Registry.Register(fullName, cmd); err != nil {
			return nil, fmt.Errorf("group %s: %w", name, err)
		}
		options = append(options, cmd.ToSubcommand())
		perms |= cmd.Permissions
		guildOnly = guildOnly || cmd.RequireGuild
		dev = dev || cmd.IsDev
		logger.Debug("Subcomando registrado: "+fullName, "CommandHandler")
	}

	appCmd := &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
	if perms != 0 {
		appCmd.DefaultMemberPermissions = &perms
	}
	if guildOnly {
		dm := false
		appCmd.DMPermission = &dm
	}

	ch.add(appCmd, dev)
	return appCmd, nil
}

// GlobalCommands returns the commands synced globally
func (ch *CommandHandler) GlobalCommands() []*discordgo.ApplicationCommand {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return append([]*discordgo.ApplicationCommand(nil), ch.slashCommands...)
}

// DevCommands returns the commands synced to the dev guild
func (ch *CommandHandler) DevCommands() []*discordgo.ApplicationCommand {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return append([]*discordgo.ApplicationCommand(nil), ch.slashCommandsDev...)
}

func (ch *CommandHandler) appID() (string, error) {
	if ch.client.ClientID != "" {
		return ch.client.ClientID, nil
	}
	if u := ch.client.BotUser(); u != nil {
		return u.ID, nil
	}
	return "", fmt.Errorf("application id unknown: set DISCORD_CLIENT_ID")
}

// SyncCommands overwrites the global commands and, with a dev guild, the dev commands
func (ch *CommandHandler) SyncCommands() error {
	logger.Info("🔄 Registrando comandos globales...", "CommandHandler")
	if err := ch.SyncTo("", ch.GlobalCommands()); err != nil {
		return err
	}
	logger.Success("✅ Comandos globales registrados.", "CommandHandler")

	dev := ch.DevCommands()
	if ch.client.DevGuildID != "" && len(dev) > 0 {
		logger.Info("🔄 Registrando comandos de desarrollo en el servidor "+ch.client.DevGuildID+"...", "CommandHandler")
		if err := ch.SyncTo(ch.client.DevGuildID, dev); err != nil {
			return err
		}
		logger.Success("✅ Comandos de desarrollo registrados.", "CommandHandler")
	}
	return nil
}

// SyncTo overwrites the commands of one scope; an empty guildID means global
func (ch *CommandHandler) SyncTo(guildID string, commands []*discordgo.ApplicationCommand) error {
	appID, err := ch.appID()
	if err != nil {
		return err
	}
	if commands == nil {
		commands = []*discordgo.ApplicationCommand{}
	}
	created, err := ch.api.ApplicationCommandBulkOverwrite(appID, guildID, commands)
	if err != nil {
		return fmt.Errorf("bulk overwrite (guild %q): %w", guildID, err)
	}
	logger.Debug(fmt.Sprintf("%d comandos sincronizados", len(created)), "CommandHandler")
	return nil
}

// ListCommands returns the commands Discord has for a scope
func (ch *CommandHandler) ListCommands(guildID string) ([]*discordgo.ApplicationCommand, error) {
	appID, err := ch.appID()
	if err != nil {
		return nil, err
	}
	return ch.api.ApplicationCommands(appID, guildID)
}

// UnregisterCommands removes every command of a scope from Discord
func (ch *CommandHandler) UnregisterCommands(guildID string) error {
	if err := ch.SyncTo(guildID, nil); err != nil {
		return err
	}
	logger.Success("Comandos eliminados.", "CommandHandler")
	return nil
}
