// Package discord provides the event handler for managing Discord events.
package discord

import (
	"sync"

	"github.com/PancyStudios/TribeBotGo/pkg/errors"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// EventHandler manages event registration
type EventHandler struct {
	client *ExtendedClient
	events []func()
	mu     sync.Mutex
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{
		client: client,
		events: make([]func(), 0),
	}
}

// RegisterEvent adds an event handler to the Discord session. discordgo
// matches handlers by their exact func type, so named handler types must be
// converted before they get here. The On* helpers also recover panics.
func (eh *EventHandler) RegisterEvent(name string, handler interface{}) {
	remove := eh.client.Session.AddHandler(handler)
	eh.mu.Lock()
	eh.events = append(eh.events, remove)
	eh.mu.Unlock()
	logger.Debug("Evento '"+name+"' registrado", "EventHandler")
}

// Count returns the number of registered handlers
func (eh *EventHandler) Count() int {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	return len(eh.events)
}

// RemoveAll detaches every registered handler
func (eh *EventHandler) RemoveAll() {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	for _, remove := range eh.events {
		remove()
	}
	eh.events = eh.events[:0]
}

// ReadyHandler is called when the bot is ready
type ReadyHandler func(s *discordgo.Session, r *discordgo.Ready)

// GuildCreateHandler is called when the bot joins a guild
type GuildCreateHandler func(s *discordgo.Session, g *discordgo.GuildCreate)

// GuildDeleteHandler is called when the bot leaves a guild
type GuildDeleteHandler func(s *discordgo.Session, g *discordgo.GuildDelete)

// GuildMemberAddHandler is called when a member joins a guild
type GuildMemberAddHandler func(s *discordgo.Session, m *discordgo.GuildMemberAdd)

// GuildMemberRemoveHandler is called when a member leaves a guild
type GuildMemberRemoveHandler func(s *discordgo.Session, m *discordgo.GuildMemberRemove)

// AutoModerationActionHandler is called when an automod rule fires
type AutoModerationActionHandler func(s *discordgo.Session, e *discordgo.AutoModerationActionExecution)

// DisconnectHandler is called when the gateway connection drops
type DisconnectHandler func(s *discordgo.Session, d *discordgo.Disconnect)

// ResumedHandler is called when the gateway session resumes
type ResumedHandler func(s *discordgo.Session, r *discordgo.Resumed)

// OnReady registers a ready event handler
func (eh *EventHandler) OnReady(handler ReadyHandler) {
	eh.RegisterEvent("Ready", func(s *discordgo.Session, e *discordgo.Ready) {
		defer errors.RecoverMiddleware("Ready")()
		handler(s, e)
	})
}

// OnGuildCreate registers a guild create event handler
func (eh *EventHandler) OnGuildCreate(handler GuildCreateHandler) {
	eh.RegisterEvent("GuildCreate", func(s *discordgo.Session, e *discordgo.GuildCreate) {
		defer errors.RecoverMiddleware("GuildCreate")()
		handler(s, e)
	})
}

// OnGuildDelete registers a guild delete event handler
func (eh *EventHandler) OnGuildDelete(handler GuildDeleteHandler) {
	eh.RegisterEvent("GuildDelete", func(s *discordgo.Session, e *discordgo.GuildDelete) {
		defer errors.RecoverMiddleware("GuildDelete")()
		handler(s, e)
	})
}

// OnGuildMemberAdd registers a guild member add event handler
func (eh *EventHandler) OnGuildMemberAdd(handler GuildMemberAddHandler) {
	eh.RegisterEvent("GuildMemberAdd", func(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
		defer errors.RecoverMiddleware("GuildMemberAdd")()
		handler(s, e)
	})
}

// OnGuildMemberRemove registers a guild member remove event handler
func (eh *EventHandler) OnGuildMemberRemove(handler GuildMemberRemoveHandler) {
	eh.RegisterEvent("GuildMemberRemove", func(s *discordgo.Session, e *discordgo.GuildMemberRemove) {
		defer errors.RecoverMiddleware("GuildMemberRemove")()
		handler(s, e)
	})
}

// OnAutoModerationAction registers an automod action execution handler
func (eh *EventHandler) OnAutoModerationAction(handler AutoModerationActionHandler) {
	eh.RegisterEvent("AutoModerationActionExecution", func(s *discordgo.Session, e *discordgo.AutoModerationActionExecution) {
		defer errors.RecoverMiddleware("AutoModerationActionExecution")()
		handler(s, e)
	})
}

// OnDisconnect registers a gateway disconnect handler
func (eh *EventHandler) OnDisconnect(handler DisconnectHandler) {
	eh.RegisterEvent("Disconnect", func(s *discordgo.Session, e *discordgo.Disconnect) {
		defer errors.RecoverMiddleware("Disconnect")()
		handler(s, e)
	})
}

// OnResumed registers a gateway resume handler
func (eh *EventHandler) OnResumed(handler ResumedHandler) {
	eh.RegisterEvent("Resumed", func(s *discordgo.Session, e *discordgo.Resumed) {
		defer errors.RecoverMiddleware("Resumed")()
		handler(s, e)
	})
}
