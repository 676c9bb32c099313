// Package main is the entry point for the TribeBot Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/commands"
	"github.com/PancyStudios/TribeBotGo/internal/commands/utils"
	"github.com/PancyStudios/TribeBotGo/internal/events"
	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/internal/warnings"
	"github.com/PancyStudios/TribeBotGo/pkg/config"
	"github.com/PancyStudios/TribeBotGo/pkg/database"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/errors"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/PancyStudios/TribeBotGo/pkg/mqtt"
	"github.com/PancyStudios/TribeBotGo/pkg/web"
)

// stores are the repositories behind the ledger and the moderation log
type stores struct {
	db       *database.Database
	warnings database.Repository[models.Warning]
	logs     database.Repository[models.ModerationLogEntry]
}

// status reports the backend for /status and /api/status; nil in memory mode
func (s stores) status() utils.StatusReporter {
	if s.db == nil {
		return nil
	}
	return s.db
}

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("MONGODB_URI vacío: usando almacenamiento en memoria", "Main")
		return stores{
			warnings: database.NewMemoryStore[models.Warning](),
			logs:     database.NewMemoryStore[models.ModerationLogEntry](),
		}, nil
	}

	db, err := database.Init(ctx, cfg.MongoDBURI, cfg.DBName, cfg.MongoMaxRetries)
	if err != nil {
		return stores{}, err
	}
	return stores{
		db:       db,
		warnings: database.NewCollection[models.Warning](db, models.WarningsCollection),
		logs:     database.NewCollection[models.ModerationLogEntry](db, models.ModerationLogsCollection),
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook, cfg.LogLevel)
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando TribeBot Go %s (%s)...", config.Version, cfg.Environment), "Main")

	var discordClient *discord.ExtendedClient
	errHandler := errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})
	defer errHandler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error conectando a la base de datos: %v", err), "Main")
		os.Exit(1)
	}
	if st.db != nil {
		defer func() {
			if err := st.db.Disconnect(); err != nil {
				logger.Error(fmt.Sprintf("Error cerrando la base de datos: %v", err), "Main")
			}
		}()
	}

	ledger := warnings.NewLedger(st.warnings)

	var publisher moderation.Publisher
	var mqttClient *mqtt.MqttCommunicator
	if cfg.MQTTEnabled() {
		clientID := "tribebot"
		if !cfg.IsProd() {
			clientID = "tribebot_canary"
		}
		mqttClient = mqtt.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, clientID)
		defer mqttClient.Destroy()
		publisher = mqtt.NewModerationPublisher(mqttClient)
	}

	discordClient, err = discord.Init(cfg.DiscordToken, cfg.ClientID, cfg.DevGuildID)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creando el cliente de Discord: %v", err), "Main")
		os.Exit(1)
	}

	engine := moderation.NewEngine(moderation.NewDiscordPlatform(discordClient.Session), st.logs, ledger, moderation.Options{
		SerializeWarns: cfg.SerializeWarns,
		Publisher:      publisher,
	})

	err = commands.RegisterAll(discordClient, commands.Deps{
		Engine: engine,
		Utils: utils.Deps{
			Logs:     st.logs,
			Warnings: st.warnings,
			Database: st.status(),
		},
	})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error registrando comandos: %v", err), "Main")
		os.Exit(1)
	}
	events.RegisterAll(discordClient)

	if mqttClient != nil {
		mqtt.RegisterHandlers(mqttClient, mqtt.Handlers{
			Stats: func(ctx context.Context) (interface{}, error) {
				return moderation.CollectTotals(ctx, st.logs, st.warnings)
			},
			Commands: func() interface{} {
				return discordClient.Registry.Catalog()
			},
		})
	}

	webServer := web.Init(web.Options{
		RateLimit:   cfg.APIRateLimit,
		CORSOrigins: cfg.CORSOrigins,
		WebhookURL:  cfg.LogsWebhook,
	})
	web.SetupAPIRoutes(webServer, web.Deps{
		Bot:      discordClient,
		Commands: discordClient.Registry,
		Database: st.status(),
		Warnings: st.warnings,
		Logs:     st.logs,
	})
	webServer.StartAsync(cfg.APIPort)

	if err := discordClient.Start(ctx); err != nil {
		logger.Critical(fmt.Sprintf("Error iniciando el cliente de Discord: %v", err), "Main")
		os.Exit(1)
	}

	logger.Success("TribeBot Go iniciado correctamente!", "Main")

	<-ctx.Done()

	logger.System("Apagando TribeBot Go...", "Main")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(fmt.Sprintf("Error deteniendo el servidor web: %v", err), "Main")
	}
	if err := discordClient.Stop(); err != nil {
		logger.Error(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
	}
}
