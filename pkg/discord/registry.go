package discord

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/PancyStudios/TribeBotGo/pkg/logger"
)

// Command categories reported by the catalog
const (
	CategoryModeration = "moderation"
	CategoryAutomod    = "automod"
	CategoryUtility    = "utility"
)

var moderationKeywords = []string{"ban", "kick", "mute", "timeout", "warn", "clear"}

// Classify derives the catalog category from a command name
func Classify(name string) string {
	lower := strings.ToLower(name)
	for _, kw := range moderationKeywords {
		if strings.Contains(lower, kw) {
			return CategoryModeration
		}
	}
	if strings.Contains(lower, "automod") {
		return CategoryAutomod
	}
	return CategoryUtility
}

// CatalogEntry is the public view of a registered command
type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Registry holds registered commands keyed by route ("name" or "group.sub")
type Registry struct {
	commands  map[string]*Command
	cooldowns *CooldownTracker
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry. Unregister clears cooldowns in the
// given tracker, which may be nil.
func NewRegistry(cooldowns *CooldownTracker) *Registry {
	return &Registry{
		commands:  make(map[string]*Command),
		cooldowns: cooldowns,
	}
}

// Register validates and stores a command. An existing route is replaced.
func (r *Registry) Register(route string, cmd *Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	for _, part := range strings.Split(route, ".") {
		if !commandNamePattern.MatchString(part) {
			return fmt.Errorf("invalid route %q", route)
		}
	}

	r.mu.Lock()
	_, exists := r.commands[route]
	r.commands[route] = cmd
	r.mu.Unlock()

	if exists {
		logger.Warn("Comando sobrescrito: "+route, "Registry")
	}
	return nil
}

// Get retrieves a command by route
func (r *Registry) Get(route string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[route]
	return cmd, ok
}

// Unregister removes a command and its cooldowns
func (r *Registry) Unregister(route string) bool {
	r.mu.Lock()
	_, ok := r.commands[route]
	delete(r.commands, route)
	r.mu.Unlock()

	if ok && r.cooldowns != nil {
		r.cooldowns.Clear(route)
	}
	return ok
}

// Size returns the number of commands
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Routes returns every route, sorted
func (r *Registry) Routes() []string {
	r.mu.RLock()
	routes := make([]string, 0, len(r.commands))
	for route := range r.commands {
		routes = append(routes, route)
	}
	r.mu.RUnlock()

	sort.Strings(routes)
	return routes
}

// Catalog lists every command sorted by name. Subcommand routes are shown
// as "group sub".
func (r *Registry) Catalog() []CatalogEntry {
	r.mu.RLock()
	entries := make([]CatalogEntry, 0, len(r.commands))
	for route, cmd := range r.commands {
		name := strings.ReplaceAll(route, ".", " ")
		entries = append(entries, CatalogEntry{
			Name:        name,
			Description: cmd.Description,
			Category:    Classify(name),
		})
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
