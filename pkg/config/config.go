// Package config provides configuration management for the bot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken string
	ClientID     string
	DevGuildID   string

	// MongoDB
	MongoDBURI      string
	DBName          string
	MongoMaxRetries int

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// API
	APIPort      string
	APIRateLimit int
	CORSOrigins  []string

	// Environment
	Environment string
	LogLevel    string

	// Webhooks
	ErrorWebhook string
	LogsWebhook  string

	// Moderation
	SerializeWarns bool
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "dev")
	defaultLevel := "debug"
	if env == "prod" {
		defaultLevel = "info"
	}

	cfg = &Config{
		DiscordToken: getEnv("DISCORD_TOKEN", ""),
		ClientID:     getEnv("DISCORD_CLIENT_ID", ""),
		DevGuildID:   getEnv("DEV_GUILD_ID", ""),

		MongoDBURI:      getEnv("MONGODB_URI", ""),
		DBName:          getEnv("DB_NAME", "thetribe"),
		MongoMaxRetries: getEnvInt("MONGO_MAX_RETRIES", 5),

		MQTTHost:     getEnv("MQTT_HOST", ""),
		MQTTPort:     getEnv("MQTT_PORT", "1883"),
		MQTTUser:     getEnv("MQTT_USER", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),

		APIPort:      getEnv("API_PORT", "15016"),
		APIRateLimit: getEnvInt("API_RATE_LIMIT", 100),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),

		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", defaultLevel),

		ErrorWebhook: getEnv("ERROR_WEBHOOK", ""),
		LogsWebhook:  getEnv("LOGS_WEBHOOK", ""),

		SerializeWarns: getEnvBool("WARN_SERIALIZE", true),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer variable, falling back on missing or malformed values
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// splitList splits a comma separated value, dropping empty items
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// UsesMemoryStore reports whether persistence runs without MongoDB
func (c *Config) UsesMemoryStore() bool {
	return c.MongoDBURI == ""
}

// MQTTEnabled reports whether a broker has been configured
func (c *Config) MQTTEnabled() bool {
	return c.MQTTHost != ""
}
