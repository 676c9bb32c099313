// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with command registration, gating and dispatch.
package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// discordgo.Logger is a function, not an interface
func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg, "DiscordGo")
		case discordgo.LogWarning:
			logger.Warn(msg, "DiscordGo")
		default:
			logger.Debug(msg, "DiscordGo")
		}
	}
}

// ExtendedClient wraps discordgo.Session with additional functionality
type ExtendedClient struct {
	Session        *discordgo.Session
	Registry       *Registry
	Cooldowns      *CooldownTracker
	Dispatcher     *Dispatcher
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	StartTime      time.Time
	ClientID       string
	DevGuildID     string
	mu             sync.RWMutex
	isReady        bool
	baseCtx        context.Context
}

var (
	client *ExtendedClient
	once   sync.Once
)

// Init initializes the global Discord client
func Init(token, clientID, devGuildID string) (*ExtendedClient, error) {
	var err error
	once.Do(func() {
		client, err = NewClient(token, clientID, devGuildID)
	})
	return client, err
}

// NewClient creates a new ExtendedClient
func NewClient(token, clientID, devGuildID string) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentAutoModerationExecution

	session.ShardCount = 1
	session.SyncEvents = false
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	cooldowns := NewCooldownTracker()
	registry := NewRegistry(cooldowns)

	c := &ExtendedClient{
		Session:    session,
		Registry:   registry,
		Cooldowns:  cooldowns,
		Dispatcher: NewDispatcher(registry, cooldowns),
		ClientID:   clientID,
		DevGuildID: devGuildID,
		baseCtx:    context.Background(),
	}

	c.CommandHandler = NewCommandHandler(c, session)
	c.EventHandler = NewEventHandler(c)

	return c, nil
}

// Start opens the gateway. Commands are synced once the session is ready.
func (c *ExtendedClient) Start(ctx context.Context) error {
	c.baseCtx = ctx

	c.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		c.mu.Lock()
		c.isReady = true
		c.mu.Unlock()

		logger.Success("Bot conectado como: "+r.User.Username, "Client")

		if err := c.CommandHandler.SyncCommands(); err != nil {
			logger.Error("Error sincronizando comandos: "+err.Error(), "Client")
		}
	})

	c.Session.AddHandler(c.handleInteraction)

	c.StartTime = time.Now()

	return c.Session.Open()
}

// handleInteraction routes slash command interactions to the dispatcher
func (c *ExtendedClient) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	c.Dispatcher.Dispatch(NewCommandContext(c.baseCtx, s, i, c))
}

// Stop stops the bot and closes the session
func (c *ExtendedClient) Stop() error {
	c.mu.Lock()
	c.isReady = false
	c.mu.Unlock()

	c.EventHandler.RemoveAll()
	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// IsReady returns true if the bot is ready
func (c *ExtendedClient) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// Uptime returns the time since Start
func (c *ExtendedClient) Uptime() time.Duration {
	if c.StartTime.IsZero() {
		return 0
	}
	return time.Since(c.StartTime)
}

// Guilds returns copies of the cached guilds taken under the state lock.
// Member, role and channel slices are copied so callers can range over
// them while the gateway keeps updating the state.
func (c *ExtendedClient) Guilds() []*discordgo.Guild {
	if c.Session == nil || c.Session.State == nil {
		return nil
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	out := make([]*discordgo.Guild, 0, len(c.Session.State.Guilds))
	for _, g := range c.Session.State.Guilds {
		out = append(out, snapshotGuild(g))
	}
	return out
}

// snapshotGuild copies g; the caller holds the state read lock.
// Members and roles are copied by value since the state updates them in place.
func snapshotGuild(g *discordgo.Guild) *discordgo.Guild {
	cp := *g
	cp.Members = make([]*discordgo.Member, len(g.Members))
	for i, m := range g.Members {
		mc := *m
		cp.Members[i] = &mc
	}
	cp.Roles = make([]*discordgo.Role, len(g.Roles))
	for i, r := range g.Roles {
		rc := *r
		cp.Roles[i] = &rc
	}
	cp.Channels = append([]*discordgo.Channel(nil), g.Channels...)
	return &cp
}

// GuildCount returns the number of guilds the bot is in
func (c *ExtendedClient) GuildCount() int {
	return len(c.Guilds())
}

// UserCount sums the member counts of every cached guild
func (c *ExtendedClient) UserCount() int {
	total := 0
	for _, g := range c.Guilds() {
		total += g.MemberCount
	}
	return total
}

// BotUser returns the connected bot user, nil before Ready
func (c *ExtendedClient) BotUser() *discordgo.User {
	if c.Session == nil || c.Session.State == nil {
		return nil
	}
	return c.Session.State.User
}

// Ping returns the gateway heartbeat latency
func (c *ExtendedClient) Ping() time.Duration {
	if c.Session == nil {
		return 0
	}
	return c.Session.HeartbeatLatency()
}

// FormatUptime renders a duration as "Xd Yh Zm"
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}
