// Package utils holds the informational commands: ping, status, help, info and stats.
package utils

import (
	"github.com/PancyStudios/TribeBotGo/pkg/database"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
)

// StatusReporter describes the persistence backend for /status
type StatusReporter interface {
	GetStatus() (string, bool)
}

// Deps are the stores the utility commands read from
type Deps struct {
	Logs     database.Repository[models.ModerationLogEntry]
	Warnings database.Repository[models.Warning]
	Database StatusReporter
}

// RegisterUtilsCommands registers the utility commands as top-level slash commands
func RegisterUtilsCommands(client *discord.ExtendedClient, deps Deps) error {
	cmds := []*discord.Command{
		createPingCommand(),
		createStatusCommand(deps.Database),
		createHelpCommand(),
		createInfoCommand(),
		createStatsCommand(deps),
	}

	for _, cmd := range cmds {
		if err := client.CommandHandler.RegisterCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}
