// Package events provides the gateway event handlers of the bot.
// Events are organized by category (ready, guild, member, automod, shard).
package events

import (
	"fmt"

	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
)

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	eh := client.EventHandler
	eh.OnReady(onReady)
	eh.OnGuildCreate(onGuildCreate)
	eh.OnGuildDelete(onGuildDelete)
	eh.OnGuildMemberAdd(onGuildMemberAdd)
	eh.OnGuildMemberRemove(onGuildMemberRemove)
	eh.OnAutoModerationAction(onAutoModerationAction)
	eh.OnDisconnect(onShardDisconnect)
	eh.OnResumed(onShardResumed)

	logger.Success(fmt.Sprintf("✅ %d eventos registrados correctamente", eh.Count()), "Events")
}
