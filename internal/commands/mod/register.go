package mod

import (
	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
)

// RegisterModCommands registers the moderation commands as top-level slash commands
func RegisterModCommands(client *discord.ExtendedClient, engine *moderation.Engine) error {
	ledger := engine.Ledger()

	cmds := []*discord.Command{
		createBanCommand(engine),
		createKickCommand(engine),
		createTimeoutCommand(engine),
		createWarnCommand(engine),
		createWarningsCommand(ledger),
		createRemoveWarnCommand(ledger),
		createClearCommand(),
	}

	for _, cmd := range cmds {
		if err := client.CommandHandler.RegisterCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}
