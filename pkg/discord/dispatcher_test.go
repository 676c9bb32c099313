package discord

import (
	"errors"
	"fmt"
	"testing"
	"sync/atomic"
	"time"

	boterrors "github.com/PancyStudios/TribeBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatchFixture struct {
	clock      *fakeClock
	cooldowns  *CooldownTracker
	registry   *Registry
	dispatcher *Dispatcher
	runs       int
}

func newDispatchFixture(t *testing.T, cmd *Command) *dispatchFixture {
	t.Helper()
	f := &dispatchFixture{clock: newFakeClock()}
	f.cooldowns = NewCooldownTrackerWithClock(f.clock.Now)
	f.registry = NewRegistry(f.cooldowns)
	f.dispatcher = NewDispatcher(f.registry, f.cooldowns)

	if cmd != nil {
		inner := cmd.Run
		cmd.Run = func(ctx *CommandContext) error {
			f.runs++
			return inner(ctx)
		}
		require.NoError(t, f.registry.Register(cmd.Name, cmd))
	}
	return f
}

func okHandler(ctx *CommandContext) error {
	return ctx.Reply("ok")
}

func TestDispatchUnknownCommandIsSilent(t *testing.T) {
	f := newDispatchFixture(t, nil)
	s := &fakeSession{}

	f.dispatcher.Dispatch(newTestContext(s, newInteraction("ghost", "g", "u", 0)))

	assert.Empty(t, s.responses)
	assert.Empty(t, s.followups)
}

func TestDispatchGuildOnlyCheckedBeforePermissions(t *testing.T) {
	cmd := NewCommand("ban", "Ban a member", okHandler).
		GuildOnly().
		WithPermissions(discordgo.PermissionBanMembers)
	f := newDispatchFixture(t, cmd)
	s := &fakeSession{}

	f.dispatcher.Dispatch(newTestContext(s, newInteraction("ban", "", "u", 0)))

	require.Len(t, s.responses, 1)
	assert.Equal(t, GuildOnlyMessage, s.lastContent())
	assert.Equal(t, discordgo.MessageFlagsEphemeral, s.responses[0].Data.Flags)
	assert.Zero(t, f.runs)
	assert.Zero(t, f.cooldowns.Len(), "guild gate must not start a cooldown")
}

func TestDispatchMissingPermission(t *testing.T) {
	cmd := NewCommand("kick", "Kick a member", okHandler).
		WithPermissions(discordgo.PermissionKickMembers | discordgo.PermissionModerateMembers)
	f := newDispatchFixture(t, cmd)
	s := &fakeSession{}

	f.dispatcher.Dispatch(newTestContext(s, newInteraction("kick", "g", "u", discordgo.PermissionKickMembers)))

	assert.Equal(t, NoPermissionMessage, s.lastContent())
	assert.Zero(t, f.runs)
	assert.Zero(t, f.cooldowns.Len(), "permission gate must not start a cooldown")

	s2 := &fakeSession{}
	f.dispatcher.Dispatch(newTestContext(s2, newInteraction("kick", "g", "u",
		discordgo.PermissionKickMembers|discordgo.PermissionModerateMembers)))
	assert.Equal(t, "ok", s2.lastContent())
	assert.Equal(t, 1, f.runs)
}

func TestDispatchCooldownWindow(t *testing.T) {
	f := newDispatchFixture(t, NewCommand("ping", "Latency", okHandler))

	invoke := func() *fakeSession {
		s := &fakeSession{}
		f.dispatcher.Dispatch(newTestContext(s, newInteraction("ping", "g", "u", 0)))
		return s
	}

	first := invoke()
	assert.Equal(t, "ok", first.lastContent())

	f.clock.Advance(2 * time.Second)
	second := invoke()
	until := f.clock.Now().Add(time.Second)
	assert.Equal(t, CooldownMessage("ping", until), second.lastContent())
	assert.Contains(t, second.lastContent(), fmt.Sprintf("<t:%d:R>", until.Unix()))
	assert.Equal(t, 1, f.runs)

	// the rejected call did not move the window
	f.clock.Advance(time.Second)
	third := invoke()
	assert.Equal(t, "ok", third.lastContent())
	assert.Equal(t, 2, f.runs)
}

func TestDispatchCooldownIsPerUser(t *testing.T) {
	f := newDispatchFixture(t, NewCommand("ping", "Latency", okHandler))

	f.dispatcher.Dispatch(newTestContext(&fakeSession{}, newInteraction("ping", "g", "a", 0)))
	f.dispatcher.Dispatch(newTestContext(&fakeSession{}, newInteraction("ping", "g", "b", 0)))

	assert.Equal(t, 2, f.runs)
}

func TestDispatchZeroCooldown(t *testing.T) {
	f := newDispatchFixture(t, NewCommand("ping", "Latency", okHandler).WithCooldown(0))

	for i := 0; i < 3; i++ {
		f.dispatcher.Dispatch(newTestContext(&fakeSession{}, newInteraction("ping", "g", "u", 0)))
	}
	assert.Equal(t, 3, f.runs)
}

func TestDispatchErrorReplyPath(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name         string
		run          CommandRunFunc
		wantReplies  int
		wantFollowUp int
	}{
		{
			name:        "nothing sent uses reply",
			run:         func(ctx *CommandContext) error { return boom },
			wantReplies: 1,
		},
		{
			name: "deferred uses follow-up",
			run: func(ctx *CommandContext) error {
				if err := ctx.Defer(false); err != nil {
					return err
				}
				return boom
			},
			wantReplies:  1,
			wantFollowUp: 1,
		},
		{
			name: "replied uses follow-up",
			run: func(ctx *CommandContext) error {
				if err := ctx.Reply("partial"); err != nil {
					return err
				}
				return boom
			},
			wantReplies:  1,
			wantFollowUp: 1,
		},
		{
			name:        "panic is recovered",
			run:         func(ctx *CommandContext) error { panic("kaboom") },
			wantReplies: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatchFixture(t, NewCommand("explode", "Fails", tt.run))
			s := &fakeSession{}

			assert.NotPanics(t, func() {
				f.dispatcher.Dispatch(newTestContext(s, newInteraction("explode", "g", "u", 0)))
			})

			require.Len(t, s.responses, tt.wantReplies)
			require.Len(t, s.followups, tt.wantFollowUp)

			var embeds []*discordgo.MessageEmbed
			if tt.wantFollowUp > 0 {
				embeds = s.followups[0].Embeds
				assert.Equal(t, discordgo.MessageFlagsEphemeral, s.followups[0].Flags)
			} else {
				embeds = s.responses[0].Data.Embeds
				assert.Equal(t, discordgo.MessageFlagsEphemeral, s.responses[0].Data.Flags)
			}
			require.Len(t, embeds, 1)
			assert.Equal(t, CommandErrorTitle, embeds[0].Title)
			assert.Equal(t, CommandErrorMessage, embeds[0].Description)
		})
	}
}

func TestDispatchSubcommandRoute(t *testing.T) {
	f := newDispatchFixture(t, nil)
	require.NoError(t, f.registry.Register("automod.list", NewCommand("list", "List rules", okHandler)))

	s := &fakeSession{}
	i := newInteraction("automod", "g", "u", 0, &discordgo.ApplicationCommandInteractionDataOption{
		Name: "list",
		Type: discordgo.ApplicationCommandOptionSubCommand,
	})
	f.dispatcher.Dispatch(newTestContext(s, i))

	assert.Equal(t, "ok", s.lastContent())
}

func TestDispatchFailingHandlersNeverShutDown(t *testing.T) {
	var fired int32
	h := boterrors.Init("", func() { atomic.StoreInt32(&fired, 1) })

	f := newDispatchFixture(t, NewCommand("flaky", "Fails upstream", func(ctx *CommandContext) error {
		return errors.New("transient discord 503")
	}).WithCooldown(0))

	for i := 0; i < 32; i++ {
		s := &fakeSession{}
		f.dispatcher.Dispatch(newTestContext(s, newInteraction("flaky", "g", fmt.Sprintf("user-%d", i), 0)))
		require.Len(t, s.responses, 1)
		assert.Equal(t, CommandErrorTitle, s.responses[0].Data.Embeds[0].Title)
	}

	assert.Equal(t, 32, f.runs)
	assert.Zero(t, h.Count())
	assert.Zero(t, atomic.LoadInt32(&fired))
}

func TestDispatchSubcommandCooldownNamesFullRoute(t *testing.T) {
	f := newDispatchFixture(t, nil)
	require.NoError(t, f.registry.Register("automod.create", NewCommand("create", "Create a rule", okHandler)))

	invoke := func() *fakeSession {
		s := &fakeSession{}
		i := newInteraction("automod", "g", "u", 0, &discordgo.ApplicationCommandInteractionDataOption{
			Name: "create",
			Type: discordgo.ApplicationCommandOptionSubCommand,
		})
		f.dispatcher.Dispatch(newTestContext(s, i))
		return s
	}

	assert.Equal(t, "ok", invoke().lastContent())
	second := invoke()
	assert.Contains(t, second.lastContent(), "`automod create`")
	assert.NotContains(t, second.lastContent(), "`create`")
}
