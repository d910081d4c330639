package server

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"currency-observer/src/interfaces"
	"currency-observer/src/logger"
	"currency-observer/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server owns the HTTP surface and the websocket sessions. It implements
// interfaces.IDelivery for the dispatcher and drives the subscription
// registry from connection lifecycle events.
type Server struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	Registry interfaces.ISubscriptionRegistry
	Status   interfaces.ICycleStatus
	engine   *gin.Engine

	// WebSocket sessions keyed by session id
	sessions   map[string]*Client
	sessionsMu sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewServer(
	cfg *models.MConfig,
	log *logger.Logger,
	reg interfaces.ISubscriptionRegistry,
	status interfaces.ICycleStatus,
) *Server {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		Config:   cfg,
		Logger:   log,
		Registry: reg,
		Status:   status,
		engine:   gin.Default(),
		sessions: make(map[string]*Client),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.loadTemplates()
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Template Loading
// -----------------------------------------------------------------------------

func (s *Server) loadTemplates() {
	// LoadHTMLGlob panics on an empty glob, so check first. Without
	// templates the index route degrades to a plain-text hint.
	matches, err := filepath.Glob("web/templates/*.html")
	if err != nil || len(matches) == 0 {
		s.Logger.Warning("No HTML templates found, index page disabled")
		return
	}
	s.engine.LoadHTMLGlob("web/templates/*.html")
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Index page
	s.engine.GET("/", s.getIndex)

	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/currencies", s.getCurrencies)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *Server) getIndex(c *gin.Context) {
	if s.engine.HTMLRender == nil {
		c.String(200, "%s is running; connect a websocket client to /ws", s.Config.Name)
		return
	}

	c.HTML(200, "index.html", gin.H{
		"name": s.Config.Name,
	})
}

// -----------------------------------------------------------------------------

func (s *Server) getHealth(c *gin.Context) {
	s.sessionsMu.RLock()
	connections := len(s.sessions)
	s.sessionsMu.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": s.Status.LastCycleAt(),
	})
}

// -----------------------------------------------------------------------------

func (s *Server) getCurrencies(c *gin.Context) {
	c.JSON(200, gin.H{
		"currencies": s.Status.Currencies(),
	})
}
