// Package errors guards the process against runaway failures. Command panics
// are recovered and counted; too many inside one window shuts the bot down.
package errors

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/goccy/go-json"
)

const (
	defaultMaxErrors = 15
	defaultWindow    = 5 * time.Second
	maxStackLen      = 1500
)

// ErrorHandler counts failures in a sliding window and reports them
type ErrorHandler struct {
	webhookURL   string
	maxErrors    int
	window       time.Duration
	shutdownFunc func()
	exitFunc     func(code int)
	now          func() time.Time
	httpClient   *http.Client

	mu       sync.Mutex
	failures []time.Time
	stopped  bool
	tripOnce sync.Once
}

// ReportErrorOptions contains options for reporting an error
type ReportErrorOptions struct {
	Error   string
	Message string
	Stack   string
}

// PanicError wraps a value recovered from a panicking handler
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

var (
	handler *ErrorHandler
	once    sync.Once
)

// Init initializes the global error handler
func Init(webhookURL string, shutdownFunc func()) *ErrorHandler {
	once.Do(func() {
		handler = NewErrorHandler(webhookURL, shutdownFunc)
	})
	return handler
}

// Get returns the global error handler instance
func Get() *ErrorHandler {
	return handler
}

// NewErrorHandler creates a handler that trips after more than 15 failures
// within 5 seconds
func NewErrorHandler(webhookURL string, shutdownFunc func()) *ErrorHandler {
	return &ErrorHandler{
		webhookURL:   webhookURL,
		maxErrors:    defaultMaxErrors,
		window:       defaultWindow,
		shutdownFunc: shutdownFunc,
		exitFunc:     os.Exit,
		now:          time.Now,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Stop disarms the handler; later failures are still counted but never
// shut the process down
func (h *ErrorHandler) Stop() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
}

// Record counts one failure and reports whether the limit was exceeded
func (h *ErrorHandler) Record() bool {
	now := h.now()

	h.mu.Lock()
	h.failures = append(h.prune(now), now)
	count := len(h.failures)
	tripped := count > h.maxErrors && !h.stopped
	h.mu.Unlock()

	logger.Debug(fmt.Sprintf("Errores en la ventana: %d", count), "AntiCrash")
	if tripped {
		h.tripOnce.Do(h.shutdown)
	}
	return tripped
}

// Count returns the failures inside the current window
func (h *ErrorHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = h.prune(h.now())
	return len(h.failures)
}

// prune drops failures older than the window. Callers hold mu.
func (h *ErrorHandler) prune(now time.Time) []time.Time {
	cutoff := now.Add(-h.window)
	i := 0
	for i < len(h.failures) && !h.failures[i].After(cutoff) {
		i++
	}
	return h.failures[i:]
}

func (h *ErrorHandler) shutdown() {
	start := h.now()
	logger.Warn("Se detectó un número demasiado alto de errores", "CRITICAL")
	logger.Warn("Apagando...", "CRITICAL")

	h.Report(ReportErrorOptions{
		Error:   "Critical Error",
		Message: "Número inusual de errores. Apagando...",
	})

	if h.shutdownFunc != nil {
		h.shutdownFunc()
	}

	logger.Warn(fmt.Sprintf("Finalizando proceso... Tiempo total: %v", h.now().Sub(start)), "CRITICAL")
	h.exitFunc(1)
}

// CommandFailed reports a panicking command to the webhook with its stack.
// Command failures never count toward the crash limit.
func (h *ErrorHandler) CommandFailed(route string, err error) {
	pe, ok := err.(*PanicError)
	if !ok {
		return
	}
	h.Report(ReportErrorOptions{
		Error:   "Panic /" + route,
		Message: pe.Error(),
		Stack:   string(pe.Stack),
	})
}

// reportPayload builds the webhook embed for a report
func reportPayload(data ReportErrorOptions, now time.Time) map[string]interface{} {
	description := data.Message
	if data.Stack != "" {
		stack := data.Stack
		if len(stack) > maxStackLen {
			stack = stack[:maxStackLen] + "..."
		}
		description += "\n```\n" + stack + "\n```"
	}

	return map[string]interface{}{
		"embeds": []interface{}{
			map[string]interface{}{
				"author": map[string]string{
					"name": fmt.Sprintf("Error %s", data.Error),
				},
				"description": description,
				"color":       0xFF0000,
				"footer": map[string]string{
					"text": "TribeBot Go",
				},
				"timestamp": now.Format(time.RFC3339),
			},
		},
	}
}

// Report sends an error report to the Discord webhook
func (h *ErrorHandler) Report(data ReportErrorOptions) {
	if h.webhookURL == "" {
		return
	}

	jsonData, err := json.Marshal(reportPayload(data, h.now()))
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo serializar el reporte: %v", err), "AntiCrash")
		return
	}

	resp, err := h.httpClient.Post(h.webhookURL, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo enviar el reporte: %v", err), "AntiCrash")
		return
	}
	defer resp.Body.Close()

	logger.Warn(fmt.Sprintf("Reporte enviado al webhook, estado: %d", resp.StatusCode), "AntiCrash")
}

// HandlePanic reports a panic that escaped a gateway or broker callback and
// counts it toward the crash limit
func (h *ErrorHandler) HandlePanic(source string, recovered interface{}, stack []byte) {
	logger.Error(fmt.Sprintf("Panic sin manejar en %s: %v", source, recovered), "AntiCrash")
	h.Report(ReportErrorOptions{
		Error:   "Panic " + source,
		Message: fmt.Sprintf("%v", recovered),
		Stack:   string(stack),
	})
	h.Record()
}

// RecoverMiddleware returns a recovery function for deferred calls in
// callbacks that run on their own goroutine
func RecoverMiddleware(source string) func() {
	return func() {
		if r := recover(); r != nil {
			if handler != nil {
				handler.HandlePanic(source, r, debug.Stack())
			} else {
				logger.Error(fmt.Sprintf("Panic recuperado (sin handler) en %s: %v", source, r), "AntiCrash")
			}
		}
	}
}

// Recover runs fn and turns a panic into a *PanicError
func Recover(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
