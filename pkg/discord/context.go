package discord

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ErrAlreadyReplied is returned when a second initial response is attempted
var ErrAlreadyReplied = errors.New("interaction already acknowledged")

// CommandContext provides context for command execution
type CommandContext struct {
	Session     Session
	Interaction *discordgo.InteractionCreate
	Client      *ExtendedClient
	Route       string

	ctx      context.Context
	mu       sync.Mutex
	replied  bool
	deferred bool
}

// NewCommandContext wraps an interaction. Route is derived from the interaction data.
func NewCommandContext(ctx context.Context, s Session, i *discordgo.InteractionCreate, c *ExtendedClient) *CommandContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &CommandContext{
		Session:     s,
		Interaction: i,
		Client:      c,
		Route:       RouteOf(i),
		ctx:         ctx,
	}
}

// Context returns the invocation context
func (ctx *CommandContext) Context() context.Context {
	return ctx.ctx
}

// RouteOf builds the registry key of an interaction: "name", "name.sub" or "name.group.sub"
func RouteOf(i *discordgo.InteractionCreate) string {
	if i == nil || (i.Type != discordgo.InteractionApplicationCommand && i.Type != discordgo.InteractionApplicationCommandAutocomplete) {
		return ""
	}

	data := i.ApplicationCommandData()
	route := data.Name
	if len(data.Options) > 0 {
		opt := data.Options[0]
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			if len(opt.Options) > 0 {
				route = data.Name + "." + opt.Name + "." + opt.Options[0].Name
			}
		case discordgo.ApplicationCommandOptionSubCommand:
			route = data.Name + "." + opt.Name
		}
	}
	return route
}

// Replied reports whether an initial response was sent
func (ctx *CommandContext) Replied() bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.replied
}

// Deferred reports whether the response was deferred
func (ctx *CommandContext) Deferred() bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.deferred
}

func (ctx *CommandContext) respond(resp *discordgo.InteractionResponse, deferring bool) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.replied || ctx.deferred {
		return ErrAlreadyReplied
	}
	if err := ctx.Session.InteractionRespond(ctx.Interaction.Interaction, resp); err != nil {
		return err
	}
	if deferring {
		ctx.deferred = true
	} else {
		ctx.replied = true
	}
	return nil
}

func messageResponse(data *discordgo.InteractionResponseData) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

// Reply sends a reply to the interaction
func (ctx *CommandContext) Reply(content string) error {
	return ctx.respond(messageResponse(&discordgo.InteractionResponseData{Content: content}), false)
}

// ReplyEmbed sends an embed reply to the interaction
func (ctx *CommandContext) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.respond(messageResponse(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}), false)
}

// ReplyEphemeral sends an ephemeral reply visible only to the user
func (ctx *CommandContext) ReplyEphemeral(content string) error {
	return ctx.respond(messageResponse(&discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}), false)
}

// ReplyEphemeralEmbed sends an ephemeral embed reply visible only to the user
func (ctx *CommandContext) ReplyEphemeralEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.respond(messageResponse(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	}), false)
}

// Defer acknowledges the interaction; content is delivered later with FollowUp
func (ctx *CommandContext) Defer(ephemeral bool) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return ctx.respond(resp, true)
}

// FollowUp sends a follow-up message
func (ctx *CommandContext) FollowUp(content string, ephemeral bool) error {
	return ctx.followUp(&discordgo.WebhookParams{Content: content}, ephemeral)
}

// FollowUpEmbed sends a follow-up embed
func (ctx *CommandContext) FollowUpEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error {
	return ctx.followUp(&discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}, ephemeral)
}

func (ctx *CommandContext) followUp(params *discordgo.WebhookParams, ephemeral bool) error {
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	_, err := ctx.Session.FollowupMessageCreate(ctx.Interaction.Interaction, true, params)
	return err
}

// Send replies when nothing was sent yet and follows up otherwise
func (ctx *CommandContext) Send(content string, embed *discordgo.MessageEmbed, ephemeral bool) error {
	ctx.mu.Lock()
	acknowledged := ctx.replied || ctx.deferred
	ctx.mu.Unlock()

	var embeds []*discordgo.MessageEmbed
	if embed != nil {
		embeds = []*discordgo.MessageEmbed{embed}
	}

	if acknowledged {
		return ctx.followUp(&discordgo.WebhookParams{Content: content, Embeds: embeds}, ephemeral)
	}

	data := &discordgo.InteractionResponseData{Content: content, Embeds: embeds}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return ctx.respond(messageResponse(data), false)
}

// DeleteReply removes the original response. A follow-up sent afterwards is a
// new message, so its ephemeral flag is honored.
func (ctx *CommandContext) DeleteReply() error {
	return ctx.Session.InteractionResponseDelete(ctx.Interaction.Interaction)
}

// GetOption retrieves an option value by name
func (ctx *CommandContext) GetOption(name string) *discordgo.ApplicationCommandInteractionDataOption {
	options := ctx.Interaction.ApplicationCommandData().Options
	return findOption(options, name)
}

// findOption recursively finds an option by name
func findOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
		if len(opt.Options) > 0 {
			if found := findOption(opt.Options, name); found != nil {
				return found
			}
		}
	}
	return nil
}

// GetStringOption retrieves a string option value
func (ctx *CommandContext) GetStringOption(name string) string {
	opt := ctx.GetOption(name)
	if opt == nil {
		return ""
	}
	return opt.StringValue()
}

// GetIntOption retrieves an integer option value
func (ctx *CommandContext) GetIntOption(name string) int64 {
	opt := ctx.GetOption(name)
	if opt == nil {
		return 0
	}
	return opt.IntValue()
}

// GetIntOptionOr returns fallback when the option was not given
func (ctx *CommandContext) GetIntOptionOr(name string, fallback int64) int64 {
	opt := ctx.GetOption(name)
	if opt == nil {
		return fallback
	}
	return opt.IntValue()
}

// GetUserOption resolves a user option from the interaction payload
func (ctx *CommandContext) GetUserOption(name string) *discordgo.User {
	opt := ctx.GetOption(name)
	if opt == nil {
		return nil
	}
	id, _ := opt.Value.(string)
	if id == "" {
		return nil
	}
	if resolved := ctx.Interaction.ApplicationCommandData().Resolved; resolved != nil {
		if u, ok := resolved.Users[id]; ok {
			return u
		}
	}
	return &discordgo.User{ID: id}
}

// GuildID returns the guild of the interaction, empty in DMs
func (ctx *CommandContext) GuildID() string {
	return ctx.Interaction.GuildID
}

// User returns the user who triggered the interaction
func (ctx *CommandContext) User() *discordgo.User {
	if ctx.Interaction.Member != nil && ctx.Interaction.Member.User != nil {
		return ctx.Interaction.Member.User
	}
	return ctx.Interaction.User
}

// Member returns the guild member who triggered the interaction
func (ctx *CommandContext) Member() *discordgo.Member {
	return ctx.Interaction.Member
}

// MemberPermissions returns the computed permissions of the invoker, zero outside guilds
func (ctx *CommandContext) MemberPermissions() int64 {
	if ctx.Interaction.Member == nil {
		return 0
	}
	return ctx.Interaction.Member.Permissions
}
