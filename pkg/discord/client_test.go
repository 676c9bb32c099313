package discord

import (
	"fmt"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStateClient(t *testing.T, guilds ...*discordgo.Guild) *ExtendedClient {
	t.Helper()
	state := discordgo.NewState()
	for _, g := range guilds {
		require.NoError(t, state.GuildAdd(g))
	}
	return &ExtendedClient{Session: &discordgo.Session{State: state}}
}

func newStateMember(guildID, userID string) *discordgo.Member {
	return &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: userID, Username: userID}}
}

func TestGuildsSnapshotIsDetached(t *testing.T) {
	c := newStateClient(t, &discordgo.Guild{
		ID:          "g",
		Name:        "Tribe",
		MemberCount: 1,
		Members:     []*discordgo.Member{newStateMember("g", "a")},
		Roles:       []*discordgo.Role{{ID: "r", Name: "Mod"}},
	})

	snap := c.Guilds()
	require.Len(t, snap, 1)

	require.NoError(t, c.Session.State.MemberAdd(newStateMember("g", "b")))
	require.NoError(t, c.Session.State.RoleAdd("g", &discordgo.Role{ID: "r2", Name: "Helper"}))

	updated := newStateMember("g", "a")
	updated.Nick = "renamed"
	require.NoError(t, c.Session.State.MemberAdd(updated))

	assert.Len(t, snap[0].Members, 1)
	assert.Empty(t, snap[0].Members[0].Nick)
	assert.Len(t, snap[0].Roles, 1)
	assert.Len(t, c.Guilds()[0].Members, 2)
}

func TestGuildsConcurrentWithStateUpdates(t *testing.T) {
	c := newStateClient(t, &discordgo.Guild{ID: "g", Name: "Tribe"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, c.Session.State.MemberAdd(newStateMember("g", fmt.Sprintf("u%d", i))))
		}(i)
		go func() {
			defer wg.Done()
			for _, g := range c.Guilds() {
				for _, m := range g.Members {
					_ = m.User.ID
				}
				_ = len(g.Roles)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, c.Guilds()[0].Members, 20)
}

func TestGuildsNilSession(t *testing.T) {
	c := &ExtendedClient{}
	assert.Nil(t, c.Guilds())
	assert.Zero(t, c.UserCount())
}
