// Package discord provides command types and structures.
package discord

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// DefaultCooldownSeconds is applied by NewCommand
const DefaultCooldownSeconds = 3

const maxDescriptionLength = 100

var commandNamePattern = regexp.MustCompile(`^[-_a-z0-9]{1,32}$`)

// Command represents a Discord slash command
type Command struct {
	Name            string
	Description     string
	Options         []*discordgo.ApplicationCommandOption
	Permissions     int64 // every bit must be held by the invoking member
	RequireGuild    bool
	CooldownSeconds int
	IsDev           bool
	Run             CommandRunFunc
}

// CommandRunFunc is the function type for command execution
type CommandRunFunc func(ctx *CommandContext) error

// NewCommand creates a new Command with the default cooldown
func NewCommand(name, description string, run CommandRunFunc) *Command {
	return &Command{
		Name:            name,
		Description:     description,
		CooldownSeconds: DefaultCooldownSeconds,
		Run:             run,
	}
}

// WithOptions sets the command options
func (c *Command) WithOptions(opts ...*discordgo.ApplicationCommandOption) *Command {
	c.Options = opts
	return c
}

// WithPermissions sets the permissions required from the invoking member
func (c *Command) WithPermissions(perms int64) *Command {
	c.Permissions = perms
	return c
}

// GuildOnly restricts the command to guilds
func (c *Command) GuildOnly() *Command {
	c.RequireGuild = true
	return c
}

// WithCooldown sets the per-user cooldown. Zero disables it.
func (c *Command) WithCooldown(seconds int) *Command {
	c.CooldownSeconds = seconds
	return c
}

// AsDev marks the command as a dev-only command
func (c *Command) AsDev() *Command {
	c.IsDev = true
	return c
}

// Validate rejects descriptors Discord would refuse or the dispatcher cannot run
func (c *Command) Validate() error {
	if c == nil {
		return fmt.Errorf("command is nil")
	}
	if !commandNamePattern.MatchString(c.Name) {
		return fmt.Errorf("command %q: name must be 1-32 characters of [-_a-z0-9]", c.Name)
	}
	desc := strings.TrimSpace(c.Description)
	if desc == "" {
		return fmt.Errorf("command %q: description is required", c.Name)
	}
	if len([]rune(desc)) > maxDescriptionLength {
		return fmt.Errorf("command %q: description exceeds %d characters", c.Name, maxDescriptionLength)
	}
	if c.Run == nil {
		return fmt.Errorf("command %q: handler is nil", c.Name)
	}
	if c.CooldownSeconds < 0 {
		return fmt.Errorf("command %q: cooldown must not be negative", c.Name)
	}
	return nil
}

// ToApplicationCommand converts the command to a Discord application command
func (c *Command) ToApplicationCommand() *discordgo.ApplicationCommand {
	appCmd := &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Options:     c.Options,
	}
	if c.Permissions != 0 {
		perms := c.Permissions
		appCmd.DefaultMemberPermissions = &perms
	}
	if c.RequireGuild {
		dm := false
		appCmd.DMPermission = &dm
	}
	return appCmd
}

// ToSubcommand converts the command to a subcommand option
func (c *Command) ToSubcommand() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        c.Name,
		Description: c.Description,
		Options:     c.Options,
	}
}
