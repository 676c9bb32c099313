package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("API_PORT", "3001")
	t.Setenv("ENVIRONMENT", "test")
	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.DiscordToken != "test-token" {
		t.Errorf("DiscordToken = %v, want %v", config.DiscordToken, "test-token")
	}

	if config.APIPort != "3001" {
		t.Errorf("APIPort = %v, want %v", config.APIPort, "3001")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid", "42", 42},
		{"malformed", "abc", 7},
		{"empty", "", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			if got := getEnvInt("TEST_INT", 7); got != tt.want {
				t.Errorf("getEnvInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsProd(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	resetForTesting()
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}
	assert.Equal(t, "info", config.LogLevel)

	t.Setenv("ENVIRONMENT", "dev")
	resetForTesting()
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}
	assert.Equal(t, "debug", config.LogLevel)
}

func TestLoadIsCached(t *testing.T) {
	resetForTesting()

	config, err := Load()
	require.NoError(t, err)
	require.NotNil(t, config)

	t.Setenv("DB_NAME", "changed")
	config2, _ := Load()
	assert.Same(t, config, config2)
	assert.NotEqual(t, "changed", config2.DBName)
}

func TestDefaultValues(t *testing.T) {
	for _, key := range []string{
		"DISCORD_TOKEN", "MONGODB_URI", "DB_NAME", "MQTT_HOST", "MQTT_PORT",
		"API_PORT", "API_RATE_LIMIT", "CORS_ORIGINS", "ENVIRONMENT", "WARN_SERIALIZE",
		"MONGO_MAX_RETRIES",
	} {
		t.Setenv(key, "")
	}

	resetForTesting()
	config, _ := Load()

	assert.True(t, config.UsesMemoryStore())
	assert.False(t, config.MQTTEnabled())
	assert.Equal(t, "thetribe", config.DBName)
	assert.Equal(t, "1883", config.MQTTPort)
	assert.Equal(t, "15016", config.APIPort)
	assert.Equal(t, 100, config.APIRateLimit)
	assert.Equal(t, 5, config.MongoMaxRetries)
	assert.Equal(t, []string{"*"}, config.CORSOrigins)
	assert.Equal(t, "dev", config.Environment)
	assert.True(t, config.SerializeWarns)
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, got)
}
