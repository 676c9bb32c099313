package main

import (
	"fmt"
	"io"

	"github.com/PancyStudios/TribeBotGo/pkg/config"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the commands Discord has registered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("📋 Listando comandos registrados...", logPrefix)
		cmds, err := client.CommandHandler.ListCommands(guildID)
		if err != nil {
			return fmt.Errorf("listing commands: %w", err)
		}
		printCommands(cmd.OutOrStdout(), scopeName(guildID), cmds)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the registered commands with the current definitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("🔄 Sincronizando comandos...", logPrefix)
		ch := client.CommandHandler
		var err error
		if guildID == "" {
			err = ch.SyncCommands()
		} else {
			err = ch.SyncTo(guildID, append(ch.GlobalCommands(), ch.DevCommands()...))
		}
		if err != nil {
			return fmt.Errorf("syncing commands: %w", err)
		}
		logger.Success("✅ Comandos sincronizados correctamente", logPrefix)
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every registered command of the scope",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("🧹 Eliminando comandos de "+scopeName(guildID)+"...", logPrefix)
		if err := client.CommandHandler.UnregisterCommands(guildID); err != nil {
			return fmt.Errorf("removing commands: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "version=%s built: %s", config.Version, config.BuildTime)
	},
}

func scopeName(guild string) string {
	if guild == "" {
		return "global"
	}
	return "guild " + guild
}

func printCommands(w io.Writer, scope string, cmds []*discordgo.ApplicationCommand) {
	if len(cmds) == 0 {
		fmt.Fprintf(w, "No commands registered (%s)\n", scope)
		return
	}
	fmt.Fprintf(w, "%d commands (%s)\n", len(cmds), scope)
	for i, c := range cmds {
		fmt.Fprintf(w, "  %d. /%s - %s (ID: %s)\n", i+1, c.Name, c.Description, c.ID)
	}
}
