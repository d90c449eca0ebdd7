package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gopower/internal"
	"gopower/internal/config"
	"gopower/internal/errors"
)

// Server exposes the power and sample size calculators over HTTP
type Server struct {
	router *gin.Engine
	cfg    *config.Config
	logger *internal.Logger
}

// NewServer creates a new web server instance with routes registered
func NewServer(cfg *config.Config, logger *internal.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router: gin.New(),
		cfg:    cfg,
		logger: logger.With("http"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(func(c *gin.Context) {
		c.Next()
		s.logger.Debug("%s %s -> %d", c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status())
	})
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/report", s.handleReport)

	api := s.router.Group("/api")
	api.GET("/power", s.handlePower)
	api.GET("/sample-size", s.handleSampleSize)
	api.GET("/curve", s.handleCurve)
	api.GET("/mde", s.handleMDE)
	api.GET("/plot", s.handlePlot)
	api.POST("/simulate", s.handleSimulate)
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("listening on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps input problems to 400 and everything else to 500
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.IsInvalidInput(err) || errors.IsNumericDegeneracy(err) {
		status = http.StatusBadRequest
	} else {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
