package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PancyStudios/TribeBotGo/internal/commands"
	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/internal/warnings"
	"github.com/PancyStudios/TribeBotGo/pkg/config"
	"github.com/PancyStudios/TribeBotGo/pkg/database"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/spf13/cobra"
)

const logPrefix = "SyncCommands"

var (
	guildID string
	client  *discord.ExtendedClient
)

var rootCmd = &cobra.Command{
	Use:   "sync-commands",
	Short: "Manage the slash commands registered with Discord",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook, cfg.LogLevel)
		logger.System("Iniciando utilidad de sincronización de comandos...", logPrefix)

		c, err := discord.NewClient(cfg.DiscordToken, cfg.ClientID, cfg.DevGuildID)
		if err != nil {
			return fmt.Errorf("creating discord client: %w", err)
		}
		if err := registerCommands(c); err != nil {
			return err
		}
		if err := c.Session.Open(); err != nil {
			return fmt.Errorf("connecting to discord: %w", err)
		}
		logger.Success("Conectado a Discord", logPrefix)
		client = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if client != nil {
			_ = client.Stop()
		}
		logger.Get().Close()
	},
	SilenceUsage: true,
}

// registerCommands registers the bot's command tree. The engine is never run
// here, so it is backed by in-memory stores.
func registerCommands(c *discord.ExtendedClient) error {
	logs := database.NewMemoryStore[models.ModerationLogEntry]()
	warns := database.NewMemoryStore[models.Warning]()
	engine := moderation.NewEngine(moderation.NewDiscordPlatform(c.Session), logs, warnings.NewLedger(warns), moderation.Options{})
	return commands.RegisterAll(c, commands.Deps{Engine: engine})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&guildID, "guild", "", "target a guild instead of the global scope")
	rootCmd.AddCommand(listCmd, syncCmd, cleanCmd, versionCmd)
}

// Execute runs the root command until it finishes or a signal arrives
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
