package web

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/database"
	"github.com/PancyStudios/TribeBotGo/pkg/discord"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 50
	maxMemberPage   = 1000
	queryTimeout    = 10 * time.Second
)

// BotSource is the part of the Discord client the API reads from
type BotSource interface {
	IsReady() bool
	Ping() time.Duration
	Uptime() time.Duration
	// Guilds returns snapshots safe to read without the state lock
	Guilds() []*discordgo.Guild
	UserCount() int
	BotUser() *discordgo.User
}

// CatalogSource lists registered commands
type CatalogSource interface {
	Catalog() []discord.CatalogEntry
}

// StatusReporter describes the persistence backend
type StatusReporter interface {
	GetStatus() (string, bool)
}

// Deps are the data sources behind the API
type Deps struct {
	Bot      BotSource
	Commands CatalogSource
	Database StatusReporter
	Warnings database.Repository[models.Warning]
	Logs     database.Repository[models.ModerationLogEntry]
}

type api struct {
	deps Deps
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, deps Deps) {
	h := &api{deps: deps}

	s.GET("/health", h.health)
	s.GET("/docs", s.docs)

	group := s.Group("/api")
	{
		group.GET("/status", h.status)
		group.GET("/commands", h.commands)
		group.GET("/guilds", h.guilds)
		group.GET("/guilds/:id", h.guild)
		group.GET("/guilds/:id/members", h.members)
		group.GET("/guilds/:id/members/:userId", h.member)
		group.GET("/warnings", h.warnings)
		group.GET("/warnings/:userId", h.userWarnings)
		group.GET("/modlogs", h.modLogs)
		group.GET("/stats", h.stats)
	}
}

func (h *api) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "TribeBot Go is running",
	})
}

func (h *api) status(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	dbStatus, dbOnline := "🟡 In-memory", true
	if h.deps.Database != nil {
		dbStatus, dbOnline = h.deps.Database.GetStatus()
	}

	ready := h.deps.Bot.IsReady()
	state := "offline"
	if ready {
		state = "online"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"bot": gin.H{
			"ready":      ready,
			"guildCount": len(h.deps.Bot.Guilds()),
			"userCount":  h.deps.Bot.UserCount(),
			"ping":       h.deps.Bot.Ping().Milliseconds(),
		},
		"database": gin.H{
			"connected": dbOnline,
			"status":    dbStatus,
		},
		"system": gin.H{
			"uptime": int64(h.deps.Bot.Uptime().Seconds()),
			"memory": gin.H{
				"used":  mem.HeapAlloc,
				"total": mem.HeapSys,
			},
		},
	})
}

func (h *api) commands(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Commands.Catalog())
}

func (h *api) findGuild(id string) *discordgo.Guild {
	for _, g := range h.deps.Bot.Guilds() {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func findMember(g *discordgo.Guild, userID string) *discordgo.Member {
	for _, m := range g.Members {
		if m.User != nil && m.User.ID == userID {
			return m
		}
	}
	return nil
}

var permissionLabels = []struct {
	bit  int64
	name string
}{
	{discordgo.PermissionAdministrator, "ADMINISTRATOR"},
	{discordgo.PermissionManageGuild, "MANAGE_GUILD"},
	{discordgo.PermissionBanMembers, "BAN_MEMBERS"},
	{discordgo.PermissionKickMembers, "KICK_MEMBERS"},
	{discordgo.PermissionModerateMembers, "MODERATE_MEMBERS"},
	{discordgo.PermissionManageMessages, "MANAGE_MESSAGES"},
	{discordgo.PermissionManageRoles, "MANAGE_ROLES"},
}

// permissionNames lists the moderation relevant permissions in perms
func permissionNames(perms int64) []string {
	names := []string{}
	for _, p := range permissionLabels {
		if perms&p.bit == p.bit {
			names = append(names, p.name)
		}
	}
	return names
}

func (h *api) guilds(c *gin.Context) {
	botID := ""
	if u := h.deps.Bot.BotUser(); u != nil {
		botID = u.ID
	}

	out := make([]gin.H, 0)
	for _, g := range h.deps.Bot.Guilds() {
		perms := []string{}
		if me := findMember(g, botID); me != nil {
			perms = permissionNames(moderation.MemberPermissions(g, me))
		}
		out = append(out, gin.H{
			"id":          g.ID,
			"name":        g.Name,
			"memberCount": g.MemberCount,
			"owner":       botID != "" && g.OwnerID == botID,
			"permissions": perms,
		})
	}
	c.JSON(http.StatusOK, out)
}

func snowflakeTime(id string) string {
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (h *api) guild(c *gin.Context) {
	g := h.findGuild(c.Param("id"))
	if g == nil {
		abortWithError(c, http.StatusNotFound, "Guild not found")
		return
	}

	owner := gin.H{"id": g.OwnerID, "username": "Unknown", "avatar": nil}
	if m := findMember(g, g.OwnerID); m != nil {
		owner["username"] = m.User.Username
		owner["avatar"] = m.User.Avatar
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          g.ID,
		"name":        g.Name,
		"description": g.Description,
		"memberCount": g.MemberCount,
		"owner":       owner,
		"channels":    len(g.Channels),
		"roles":       len(g.Roles),
		"createdAt":   snowflakeTime(g.ID),
	})
}

func roleColor(r *discordgo.Role) string {
	return fmt.Sprintf("#%06x", r.Color)
}

func memberRoles(g *discordgo.Guild, m *discordgo.Member, withPermissions bool) []gin.H {
	out := []gin.H{}
	for _, r := range g.Roles {
		for _, id := range m.Roles {
			if r.ID != id {
				continue
			}
			role := gin.H{"id": r.ID, "name": r.Name, "color": roleColor(r)}
			if withPermissions {
				role["permissions"] = permissionNames(r.Permissions)
			}
			out = append(out, role)
		}
	}
	return out
}

func memberJSON(g *discordgo.Guild, m *discordgo.Member) gin.H {
	out := gin.H{
		"id":          m.User.ID,
		"username":    m.User.Username,
		"displayName": m.DisplayName(),
		"avatar":      m.User.Avatar,
		"joinedAt":    nil,
		"roles":       memberRoles(g, m, false),
	}
	if !m.JoinedAt.IsZero() {
		out["joinedAt"] = m.JoinedAt.UTC().Format(time.RFC3339)
	}
	return out
}

// intQuery parses a non-negative query value, using fallback when absent or malformed
func intQuery(c *gin.Context, key string, fallback int64) int64 {
	n, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (h *api) members(c *gin.Context) {
	g := h.findGuild(c.Param("id"))
	if g == nil {
		abortWithError(c, http.StatusNotFound, "Guild not found")
		return
	}

	limit := intQuery(c, "limit", defaultPageSize)
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxMemberPage {
		limit = maxMemberPage
	}

	members := g.Members
	if after := c.Query("after"); after != "" {
		for i, m := range members {
			if m.User != nil && m.User.ID == after {
				members = members[i+1:]
				break
			}
		}
	}

	out := make([]gin.H, 0, limit)
	for _, m := range members {
		if int64(len(out)) == limit {
			break
		}
		if m.User == nil {
			continue
		}
		out = append(out, memberJSON(g, m))
	}
	c.JSON(http.StatusOK, out)
}

func (h *api) member(c *gin.Context) {
	g := h.findGuild(c.Param("id"))
	if g == nil {
		abortWithError(c, http.StatusNotFound, "Guild not found")
		return
	}
	m := findMember(g, c.Param("userId"))
	if m == nil {
		abortWithError(c, http.StatusNotFound, "Member not found")
		return
	}

	out := memberJSON(g, m)
	out["roles"] = memberRoles(g, m, true)
	out["permissions"] = permissionNames(moderation.MemberPermissions(g, m))
	out["premiumSince"] = nil
	if m.PremiumSince != nil {
		out["premiumSince"] = m.PremiumSince.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, out)
}

func (h *api) internalError(c *gin.Context, what string, err error) {
	logger.Error(fmt.Sprintf("Error consultando %s: %v", what, err), "WebServer")
	abortWithError(c, http.StatusInternalServerError, "Internal server error")
}

func pageOptions(c *gin.Context) database.FindOptions {
	limit := intQuery(c, "limit", defaultPageSize)
	if limit == 0 {
		limit = defaultPageSize
	}
	return database.NewestFirst(limit, intQuery(c, "skip", 0))
}

// addFilter copies a non-empty query value into the filter
func addFilter(c *gin.Context, filter database.Filter, query, field string) {
	if v := c.Query(query); v != "" {
		filter[field] = v
	}
}

func queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), queryTimeout)
}

func (h *api) warnings(c *gin.Context) {
	filter := database.Filter{}
	addFilter(c, filter, "guild", "guildId")
	addFilter(c, filter, "user", "userId")

	ctx, cancel := queryContext(c)
	defer cancel()

	warns, err := h.deps.Warnings.Find(ctx, filter, pageOptions(c))
	if err != nil {
		h.internalError(c, "advertencias", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(warns))
}

func (h *api) userWarnings(c *gin.Context) {
	filter := database.Filter{"userId": c.Param("userId")}
	addFilter(c, filter, "guild", "guildId")

	ctx, cancel := queryContext(c)
	defer cancel()

	warns, err := h.deps.Warnings.Find(ctx, filter, database.NewestFirst(0, 0))
	if err != nil {
		h.internalError(c, "advertencias", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(warns))
}

func (h *api) modLogs(c *gin.Context) {
	filter := database.Filter{}
	addFilter(c, filter, "guild", "guildId")
	addFilter(c, filter, "action", "action")
	addFilter(c, filter, "moderator", "moderatorId")

	ctx, cancel := queryContext(c)
	defer cancel()

	logs, err := h.deps.Logs.Find(ctx, filter, pageOptions(c))
	if err != nil {
		h.internalError(c, "registros de moderación", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(logs))
}

func (h *api) stats(c *gin.Context) {
	ctx, cancel := queryContext(c)
	defer cancel()

	totals, err := moderation.CollectTotals(ctx, h.deps.Logs, h.deps.Warnings)
	if err != nil {
		h.internalError(c, "estadísticas", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalWarnings": totals.Warnings,
		"totalBans":     totals.Bans,
		"totalKicks":    totals.Kicks,
		"totalTimeouts": totals.Timeouts,
		"guilds":        len(h.deps.Bot.Guilds()),
		"users":         h.deps.Bot.UserCount(),
		"uptime":        discord.FormatUptime(h.deps.Bot.Uptime()),
	})
}

// nonNil keeps empty results encoded as [] instead of null
func nonNil[T any](docs []*T) []*T {
	if docs == nil {
		return []*T{}
	}
	return docs
}
