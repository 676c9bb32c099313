package logger

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	l := NewLogger("", "")
	if l == nil {
		t.Fatal("Expected logger to be created, got nil")
	}
	defer l.Close()

	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.Info("Test info message", "TEST")
	l.Warn("Test warning message", "TEST")
	l.Debug("Test debug message", "TEST")
	l.System("Test system message", "TEST")
	l.Success("Test success message", "TEST")

	out := buf.String()
	assert.Contains(t, out, "[TEST]: Test info message")
	assert.Contains(t, out, "SUCCESS")
	assert.Equal(t, 5, strings.Count(out, "\n"))
}

func TestSetLevelFiltersDebug(t *testing.T) {
	l := NewLogger("", "")
	defer l.Close()

	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.SetLevel("info")

	l.Debug("hidden", "TEST")
	l.Info("visible", "TEST")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestLineFormatter(t *testing.T) {
	f := &lineFormatter{colors: false}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Message: "hola",
		Data:    logrus.Fields{fieldLevel: LevelWarn, fieldPrefix: "DB"},
	}

	line, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2024-01-02 03:04:05] [WARN] [DB]: hola\n", string(line))
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelSuccess, "SUCCESS"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{LevelSystem, "SYSTEM"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelDiscordColor(t *testing.T) {
	tests := []struct {
		level LogLevel
		color int
	}{
		{LevelCritical, 0xFF0000},
		{LevelError, 0xFF0000},
		{LevelWarn, 0xFFFF00},
		{LevelSuccess, 0x00FF00},
		{LevelInfo, 0x0000FF},
		{LevelDebug, 0x800080},
		{LevelSystem, 0x808080},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.DiscordColor(); got != tt.color {
				t.Errorf("LogLevel.DiscordColor() = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestErrorFileOnlyReceivesErrors(t *testing.T) {
	logsDir := filepath.Join(".", "logs")
	os.RemoveAll(logsDir)
	defer os.RemoveAll(logsDir)

	l := NewLogger("", "")
	l.SetOutput(&bytes.Buffer{})

	l.Info("solo combinado", "TEST")
	l.Error("fallo grave", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(logsDir, "combined.log"))
	require.NoError(t, err)
	errorsLog, err := os.ReadFile(filepath.Join(logsDir, "error.log"))
	require.NoError(t, err)

	assert.Contains(t, string(combined), "solo combinado")
	assert.Contains(t, string(combined), "fallo grave")
	assert.NotContains(t, string(errorsLog), "solo combinado")
	assert.Contains(t, string(errorsLog), "fallo grave")
}

func TestGlobalLoggerInit(t *testing.T) {
	logger = nil
	once = sync.Once{}

	early := Get()
	l := Init("https://errors.example", "", "warn")
	defer l.Close()

	assert.Same(t, early, l)
	assert.Same(t, l, Get())
	assert.Equal(t, "https://errors.example", l.webhookFor(LevelCritical))
	assert.Equal(t, "", l.webhookFor(LevelInfo))
	assert.Equal(t, logrus.WarnLevel, l.logrus.GetLevel())
}

func TestWebhookDelivery(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies = map[string][]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies[r.URL.Path] = append(bodies[r.URL.Path], string(b))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	l := NewLogger(srv.URL+"/errors", srv.URL+"/logs")
	l.SetOutput(&bytes.Buffer{})

	l.Error("fallo", "DB")
	l.Info("listo", "Main")
	l.Close()

	l.Error("after close", "DB")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies["/errors"], 1)
	require.Len(t, bodies["/logs"], 1)
	assert.Contains(t, bodies["/errors"][0], "[ERROR] DB")
	assert.Contains(t, bodies["/logs"][0], "listo")
}

func TestWebhookPayload(t *testing.T) {
	p := webhookPayload(webhookEntry{
		level:   LevelWarn,
		message: "lento",
		prefix:  "MQTT",
		at:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	embed := p["embeds"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "[WARN] MQTT", embed["title"])
	assert.Equal(t, "```lento```", embed["description"])
	assert.Equal(t, 0xFFFF00, embed["color"])
	assert.Equal(t, "2024-01-02T03:04:05Z", embed["timestamp"])
}

func TestUnknownLevel(t *testing.T) {
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
	assert.Equal(t, 0xFFFFFF, LogLevel(-1).DiscordColor())
}
