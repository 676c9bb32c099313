package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/errors"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Fixed dispatcher replies
const (
	GuildOnlyMessage    = "This command can only be used in a server!"
	NoPermissionMessage = "You do not have permission to use this command!"
	CommandErrorTitle   = "❌ Command Error"
	CommandErrorMessage = "There was an error while executing this command!"
)

// CooldownMessage is the ephemeral reply for a user still cooling down
func CooldownMessage(name string, until time.Time) string {
	return fmt.Sprintf("Please wait, you are on a cooldown for `%s`. You can use it again <t:%d:R>.", name, until.Unix())
}

// ErrorEmbed is the generic failure reply
func ErrorEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       CommandErrorTitle,
		Description: CommandErrorMessage,
		Color:       0xFF0000,
	}
}

// Dispatcher gates and runs commands
type Dispatcher struct {
	registry  *Registry
	cooldowns *CooldownTracker
}

// NewDispatcher creates a dispatcher over the given registry and tracker
func NewDispatcher(registry *Registry, cooldowns *CooldownTracker) *Dispatcher {
	return &Dispatcher{registry: registry, cooldowns: cooldowns}
}

// Dispatch runs the gates in order: lookup, guild, permissions, cooldown,
// then the handler. Nothing escapes: handler errors and panics become the
// generic error reply.
func (d *Dispatcher) Dispatch(ctx *CommandContext) {
	route := ctx.Route
	cmd, ok := d.registry.Get(route)
	if !ok {
		logger.Warn("Comando no encontrado: "+route, "Dispatcher")
		return
	}

	if cmd.RequireGuild && ctx.GuildID() == "" {
		d.reject(ctx, route, GuildOnlyMessage)
		return
	}

	if cmd.Permissions != 0 && ctx.MemberPermissions()&cmd.Permissions != cmd.Permissions {
		d.reject(ctx, route, NoPermissionMessage)
		return
	}

	userID := ""
	if u := ctx.User(); u != nil {
		userID = u.ID
	}
	window := time.Duration(cmd.CooldownSeconds) * time.Second
	if allowed, until := d.cooldowns.Acquire(route, userID, window); !allowed {
		d.reject(ctx, route, CooldownMessage(strings.ReplaceAll(route, ".", " "), until))
		return
	}

	err := errors.Recover(func() error { return cmd.Run(ctx) })
	if err == nil {
		return
	}

	logger.Error(fmt.Sprintf("Error ejecutando comando %s: %v", route, err), "Dispatcher")
	if h := errors.Get(); h != nil {
		h.CommandFailed(route, err)
	}
	if sendErr := ctx.Send("", ErrorEmbed(), true); sendErr != nil {
		logger.Error(fmt.Sprintf("No se pudo enviar el error de %s: %v", route, sendErr), "Dispatcher")
	}
}

func (d *Dispatcher) reject(ctx *CommandContext, route, message string) {
	if err := ctx.ReplyEphemeral(message); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo responder a %s: %v", route, err), "Dispatcher")
	}
}
