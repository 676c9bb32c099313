// Package web provides the read-only HTTP API of the bot.
// It uses Gin framework for high-performance web handling.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// Options configures the middleware chain
type Options struct {
	// RateLimit is the number of requests per minute allowed for each IP, 0 disables it
	RateLimit   int
	CORSOrigins []string
	// WebhookURL receives an embed for failed and rate limited requests
	WebhookURL string
}

// Server represents the web server
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	webhookURL string
	limiter    *ipLimiter
}

var (
	server *Server
)

// Init initializes the global web server
func Init(opts Options) *Server {
	server = NewServer(opts)
	return server
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(gin.Recovery())

	s := &Server{
		engine:     engine,
		webhookURL: opts.WebhookURL,
	}

	s.engine.Use(s.logsMiddleware())
	s.engine.Use(cors.New(corsConfig(opts.CORSOrigins)))
	if opts.RateLimit > 0 {
		s.limiter = newIPLimiter(opts.RateLimit, time.Now)
		s.engine.Use(s.rateLimitMiddleware())
	}

	s.setupErrorHandlers()

	return s
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// logsMiddleware logs every request once it has been served
func (s *Server) logsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		msg := fmt.Sprintf("%s %s -> %d (%s) | %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Millisecond), c.ClientIP())

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("[LOG] "+msg, "WebServer")
			go s.sendLogToWebhook(c.Request.Method, c.Request.URL.Path, c.ClientIP(), status)
		case status == http.StatusTooManyRequests:
			logger.Warn("[LOG] Solicitud limitada: "+msg, "WebServer")
			go s.sendLogToWebhook(c.Request.Method, c.Request.URL.Path, c.ClientIP(), status)
		default:
			logger.Debug("[LOG] "+msg, "WebServer")
		}
	}
}

// sendLogToWebhook posts a request summary to the Discord webhook
func (s *Server) sendLogToWebhook(method, path, ip string, status int) {
	if s.webhookURL == "" {
		return
	}

	color := 0xFF0000
	if status == http.StatusTooManyRequests {
		color = 0xFFA500
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{
			map[string]interface{}{
				"title":       fmt.Sprintf("💫 | %s %s -> %d", method, path, status),
				"description": fmt.Sprintf("> **Ruta:** `%s`\n> **IP:** `%s`", path, ip),
				"color":       color,
				"timestamp":   time.Now().Format(time.RFC3339),
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
}

// rateLimitMiddleware rejects clients over their per-minute budget
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			abortWithError(c, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}
		c.Next()
	}
}

// abortWithError writes the API error shape
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{
		"error":   true,
		"message": message,
		"code":    code,
	})
}

// setupErrorHandlers sets up error handling routes
func (s *Server) setupErrorHandlers() {
	s.engine.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Endpoint not found")
	})

	s.engine.NoMethod(func(c *gin.Context) {
		abortWithError(c, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// Start listens on port until Shutdown is called
func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info(fmt.Sprintf("🚀 Servidor escuchando en http://localhost:%s", port), "WebServer")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(port string) {
	go func() {
		if err := s.Start(port); err != nil {
			logger.Error(fmt.Sprintf("Error iniciando el servidor web: %v", err), "WebServer")
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Group creates a new router group
func (s *Server) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return s.engine.Group(path, handlers...)
}

// GET registers a GET route
func (s *Server) GET(path string, handlers ...gin.HandlerFunc) {
	s.engine.GET(path, handlers...)
}
