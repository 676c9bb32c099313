package moderation

import (
	"testing"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func testGuildWithRoles() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      "g",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "g", Position: 0, Permissions: discordgo.PermissionSendMessages},
			{ID: "mods", Position: 5, Permissions: discordgo.PermissionKickMembers | discordgo.PermissionBanMembers | discordgo.PermissionModerateMembers},
			{ID: "bot-role", Position: 8, Permissions: discordgo.PermissionKickMembers | discordgo.PermissionModerateMembers},
			{ID: "admins", Position: 10, Permissions: discordgo.PermissionAdministrator},
		},
	}
}

func member(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id}, Roles: roles}
}

func TestCanModerate(t *testing.T) {
	g := testGuildWithRoles()
	bot := member("bot", "bot-role")

	tests := []struct {
		name   string
		bot    *discordgo.Member
		target *discordgo.Member
		action models.Action
		want   bool
	}{
		{"kick plain member", bot, member("u"), models.ActionKick, true},
		{"kick lower role", bot, member("u", "mods"), models.ActionKick, true},
		{"kick higher role", bot, member("u", "admins"), models.ActionKick, false},
		{"ban without permission", bot, member("u"), models.ActionBan, false},
		{"owner is untouchable", bot, member("owner"), models.ActionKick, false},
		{"timeout admin", member("bot", "admins"), member("u", "admins"), models.ActionTimeout, false},
		{"admin bot bans", member("bot", "admins"), member("u", "mods"), models.ActionBan, true},
		{"equal role", member("bot", "mods"), member("u", "mods"), models.ActionKick, false},
		{"nil target", bot, nil, models.ActionKick, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanModerate(g, tt.bot, tt.target, tt.action); got != tt.want {
				t.Errorf("CanModerate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemberPermissions(t *testing.T) {
	g := testGuildWithRoles()

	assert.Equal(t, int64(discordgo.PermissionSendMessages), MemberPermissions(g, member("u")))
	assert.Equal(t, allPermissions, MemberPermissions(g, member("owner")))
	assert.Equal(t, allPermissions, MemberPermissions(g, member("u", "admins")))
}

func TestTag(t *testing.T) {
	assert.Equal(t, "alice", Tag(&discordgo.User{Username: "alice", Discriminator: "0"}))
	assert.Equal(t, "bob#1234", Tag(&discordgo.User{Username: "bob", Discriminator: "1234"}))
	assert.Equal(t, "Unknown User", Tag(nil))
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	k := NewKeyedMutex()
	unlock := k.Lock("a")

	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		k.Lock("a")()
	}()

	otherDone := make(chan struct{})
	go func() {
		defer close(otherDone)
		k.Lock("b")()
	}()
	<-otherDone

	select {
	case <-acquired:
		t.Fatal("second Lock on the same key did not block")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-acquired
	assert.Zero(t, k.Len())
}
