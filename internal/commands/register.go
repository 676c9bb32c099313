// Package commands wires every command category into the client.
// Commands are organized in subdirectories by category (mod, automod, utils).
package commands

import (
	"fmt"

	"github.com/PancyStudios/TribeBotGo/internal/commands/automod"
	"github.com/PancyStudios/TribeBotGo/internal/commands/mod"
	"github.com/PancyStudios/TribeBotGo/internal/commands/utils"
	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
)

// Deps carries what the command categories need
type Deps struct {
	Engine *moderation.Engine
	Utils  utils.Deps
}

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps Deps) error {
	if err := mod.RegisterModCommands(client, deps.Engine); err != nil {
		return fmt.Errorf("moderation commands: %w", err)
	}
	if err := automod.RegisterAutomodCommands(client); err != nil {
		return fmt.Errorf("automod commands: %w", err)
	}
	if err := utils.RegisterUtilsCommands(client, deps.Utils); err != nil {
		return fmt.Errorf("utility commands: %w", err)
	}

	logger.Info(fmt.Sprintf("Comandos registrados: %d", client.Registry.Size()), "Commands")
	return nil
}
