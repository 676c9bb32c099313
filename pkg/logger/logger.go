// Package logger provides the bot's logging: colored console lines, log files
// under ./logs and Discord webhook delivery, all driven through logrus.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarn
	LevelSuccess
	LevelInfo
	LevelDebug
	LevelSystem
)

type levelStyle struct {
	name    string
	ansi    string
	discord int
	logrus  logrus.Level
}

var levelStyles = [...]levelStyle{
	LevelCritical: {"CRITICAL", "\033[1;31m", 0xFF0000, logrus.ErrorLevel},
	LevelError:    {"ERROR", "\033[31m", 0xFF0000, logrus.ErrorLevel},
	LevelWarn:     {"WARN", "\033[33m", 0xFFFF00, logrus.WarnLevel},
	LevelSuccess:  {"SUCCESS", "\033[32m", 0x00FF00, logrus.InfoLevel},
	LevelInfo:     {"INFO", "\033[36m", 0x0000FF, logrus.InfoLevel},
	LevelDebug:    {"DEBUG", "\033[35m", 0x800080, logrus.DebugLevel},
	LevelSystem:   {"SYSTEM", "\033[34m", 0x808080, logrus.InfoLevel},
}

func (l LogLevel) style() levelStyle {
	if l < 0 || int(l) >= len(levelStyles) {
		return levelStyle{"UNKNOWN", colorReset, 0xFFFFFF, logrus.InfoLevel}
	}
	return levelStyles[l]
}

// String returns the string representation of the log level
func (l LogLevel) String() string { return l.style().name }

// Color returns the ANSI color code for the log level
func (l LogLevel) Color() string { return l.style().ansi }

// DiscordColor returns the Discord embed color for the log level
func (l LogLevel) DiscordColor() int { return l.style().discord }

const (
	colorReset   = "\033[0m"
	timeLayout   = "2006-01-02 15:04:05"
	fieldLevel   = "severity"
	fieldPrefix  = "prefix"
	webhookQueue = 100
)

// lineFormatter renders "[time] [LEVEL] [prefix]: message"
type lineFormatter struct {
	colors bool
}

// Format implements logrus.Formatter
func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level, ok := e.Data[fieldLevel].(LogLevel)
	if !ok {
		level = LevelInfo
	}
	prefix, _ := e.Data[fieldPrefix].(string)

	name := level.String()
	if f.colors {
		name = level.Color() + name + colorReset
	}

	return []byte(fmt.Sprintf("[%s] [%s] [%s]: %s\n", e.Time.Format(timeLayout), name, prefix, e.Message)), nil
}

// fileHook copies entries of the given levels into a file
type fileHook struct {
	writer io.Writer
	levels []logrus.Level
}

var plainFormatter = &lineFormatter{}

func (h *fileHook) Levels() []logrus.Level { return h.levels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	line, err := plainFormatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}

// webhookEntry is one log line waiting for delivery
type webhookEntry struct {
	url     string
	level   LogLevel
	message string
	prefix  string
	at      time.Time
}

// webhookHook queues entries for the Discord webhooks
type webhookHook struct {
	l *Logger
}

func (h *webhookHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *webhookHook) Fire(e *logrus.Entry) error {
	level, _ := e.Data[fieldLevel].(LogLevel)
	prefix, _ := e.Data[fieldPrefix].(string)
	h.l.enqueue(level, e.Message, prefix, e.Time)
	return nil
}

// Logger is the main logging structure
type Logger struct {
	logrus     *logrus.Logger
	httpClient *http.Client
	logFile    *os.File
	errorFile  *os.File

	mu              sync.RWMutex
	errorWebhookURL string
	logsWebhookURL  string
	queue           chan webhookEntry
	closed          bool
	done            chan struct{}
}

var (
	logger *Logger
	once   sync.Once
)

// Init configures the global logger with its webhooks and level
func Init(errorWebhook, logsWebhook, level string) *Logger {
	l := Get()
	l.SetWebhooks(errorWebhook, logsWebhook)
	l.SetLevel(level)
	return l
}

// Get returns the global logger, creating a console and file logger on first use
func Get() *Logger {
	once.Do(func() {
		logger = NewLogger("", "")
	})
	return logger
}

// NewLogger creates a logger writing to stdout and ./logs
func NewLogger(errorWebhook, logsWebhook string) *Logger {
	l := &Logger{
		logrus:          logrus.New(),
		httpClient:      &http.Client{Timeout: 5 * time.Second},
		errorWebhookURL: errorWebhook,
		logsWebhookURL:  logsWebhook,
		queue:           make(chan webhookEntry, webhookQueue),
		done:            make(chan struct{}),
	}

	l.logrus.SetFormatter(&lineFormatter{colors: true})
	l.logrus.SetOutput(os.Stdout)
	l.logrus.SetLevel(logrus.DebugLevel)

	logsDir := filepath.Join(".", "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Printf("Error creating logs directory: %v\n", err)
	}

	l.logFile = openLogFile(filepath.Join(logsDir, "combined.log"))
	if l.logFile != nil {
		l.logrus.AddHook(&fileHook{writer: l.logFile, levels: logrus.AllLevels})
	}
	l.errorFile = openLogFile(filepath.Join(logsDir, "error.log"))
	if l.errorFile != nil {
		l.logrus.AddHook(&fileHook{
			writer: l.errorFile,
			levels: []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel},
		})
	}

	l.logrus.AddHook(&webhookHook{l: l})
	go l.deliver()

	return l
}

func openLogFile(path string) *os.File {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", path, err)
		return nil
	}
	return f
}

// SetLevel sets the minimum level written by the logger ("debug", "info", "warn", "error")
func (l *Logger) SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.DebugLevel
	}
	l.logrus.SetLevel(parsed)
}

// SetOutput replaces the console writer
func (l *Logger) SetOutput(w io.Writer) {
	l.logrus.SetOutput(w)
}

// SetWebhooks sets where errors and the remaining levels are sent; empty disables
func (l *Logger) SetWebhooks(errorWebhook, logsWebhook string) {
	l.mu.Lock()
	l.errorWebhookURL = errorWebhook
	l.logsWebhookURL = logsWebhook
	l.mu.Unlock()
}

// webhookFor picks the webhook of a level: errors and criticals go to the
// error webhook, everything else to the logs webhook
func (l *Logger) webhookFor(level LogLevel) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if level <= LevelError {
		return l.errorWebhookURL
	}
	return l.logsWebhookURL
}

func (l *Logger) log(level LogLevel, message string, prefix string) {
	l.logrus.WithFields(logrus.Fields{
		fieldLevel:  level,
		fieldPrefix: prefix,
	}).Log(level.style().logrus, message)
}

// enqueue hands an entry to the delivery goroutine, dropping it when the
// queue is full or the logger is closed
func (l *Logger) enqueue(level LogLevel, message, prefix string, at time.Time) {
	url := l.webhookFor(level)
	if url == "" {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- webhookEntry{url: url, level: level, message: message, prefix: prefix, at: at}:
	default:
	}
}

func (l *Logger) deliver() {
	defer close(l.done)
	for e := range l.queue {
		l.post(e)
	}
}

func webhookPayload(e webhookEntry) map[string]interface{} {
	return map[string]interface{}{
		"embeds": []interface{}{
			map[string]interface{}{
				"title":       fmt.Sprintf("[%s] %s", e.level.String(), e.prefix),
				"description": fmt.Sprintf("```%s```", e.message),
				"color":       e.level.DiscordColor(),
				"timestamp":   e.at.Format(time.RFC3339),
				"footer": map[string]string{
					"text": "🛡️ TribeBot Go",
				},
			},
		},
	}
}

func (l *Logger) post(e webhookEntry) {
	jsonData, err := json.Marshal(webhookPayload(e))
	if err != nil {
		return
	}
	resp, err := l.httpClient.Post(e.url, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return
	}
	resp.Body.Close()
}

// Close flushes queued webhook entries and closes the log files
func (l *Logger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done

	if l.logFile != nil {
		l.logFile.Close()
	}
	if l.errorFile != nil {
		l.errorFile.Close()
	}
}

// Critical logs a critical message
func (l *Logger) Critical(message string, prefix string) { l.log(LevelCritical, message, prefix) }

// Error logs an error message
func (l *Logger) Error(message string, prefix string) { l.log(LevelError, message, prefix) }

// Warn logs a warning message
func (l *Logger) Warn(message string, prefix string) { l.log(LevelWarn, message, prefix) }

// Success logs a success message
func (l *Logger) Success(message string, prefix string) { l.log(LevelSuccess, message, prefix) }

// Info logs an info message
func (l *Logger) Info(message string, prefix string) { l.log(LevelInfo, message, prefix) }

// Debug logs a debug message
func (l *Logger) Debug(message string, prefix string) { l.log(LevelDebug, message, prefix) }

// System logs a system message
func (l *Logger) System(message string, prefix string) { l.log(LevelSystem, message, prefix) }

// Critical logs a critical message using the global logger
func Critical(message string, prefix string) { Get().Critical(message, prefix) }

// Error logs an error message using the global logger
func Error(message string, prefix string) { Get().Error(message, prefix) }

// Warn logs a warning message using the global logger
func Warn(message string, prefix string) { Get().Warn(message, prefix) }

// Success logs a success message using the global logger
func Success(message string, prefix string) { Get().Success(message, prefix) }

// Info logs an info message using the global logger
func Info(message string, prefix string) { Get().Info(message, prefix) }

// Debug logs a debug message using the global logger
func Debug(message string, prefix string) { Get().Debug(message, prefix) }

// System logs a system message using the global logger
func System(message string, prefix string) { Get().System(message, prefix) }
