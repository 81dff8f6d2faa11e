// Package api provides the REST API server for notemaker
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/notemaker/pkg/config"
	"github.com/james-see/notemaker/pkg/converter"
	"github.com/james-see/notemaker/pkg/engine"
	"github.com/james-see/notemaker/pkg/theory"
)

// @title Notemaker API
// @version 1.0
// @description API for generating chord progressions, melodies, text and scale stacks as MIDI notes
// @host localhost:8080
// @BasePath /api/v1

// Server serves the generators over HTTP
type Server struct {
	store  *engine.Store
	conv   *converter.Converter
	cfg    *config.Config
	logger *slog.Logger
}

// NewServer wires a server around a session store
func NewServer(store *engine.Store, cfg *config.Config, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.Load()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  store,
		conv:   converter.New(),
		cfg:    cfg,
		logger: logger,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/scales", listScales)
		v1.GET("/roots", listRoots)
		v1.GET("/formats", s.listFormats)
		v1.POST("/quantize/midi", s.handleQuantizeMIDI)

		v1.POST("/sessions", s.createSession)
		v1.GET("/sessions", s.listSessions)
		v1.DELETE("/sessions/:id", s.deleteSession)

		sess := v1.Group("/sessions/:id")
		{
			sess.POST("/chords", s.generateChords)
			sess.POST("/chords/repaint", s.repaintChords)
			sess.POST("/melody", s.generateMelody)
			sess.POST("/melody/alternative", s.alternativeMelody)
			sess.POST("/quantize", s.quantizeNotes)
			sess.POST("/grid", s.observeGrid)
			sess.POST("/grid/quantize", s.quantizeGrid)
			sess.POST("/text", s.renderText)
			sess.POST("/stack", s.scaleStack)
			sess.POST("/tempo", s.setTempo)
			sess.POST("/capture/events", s.pushEvents)
			sess.GET("/capture/notes", s.captureNotes)
			sess.DELETE("/capture", s.clearCapture)
			sess.GET("/export/:part", s.exportPart)
		}
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer starts the API server on the specified port
func StartServer(port int, store *engine.Store, cfg *config.Config, logger *slog.Logger) error {
	return NewServer(store, cfg, logger).Router().Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// writeError maps domain errors onto HTTP status codes
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, theory.ErrInvalidScale), errors.Is(err, theory.ErrInvalidParameter):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrNotGenerated):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "notemaker",
	})
}

// listScales godoc
// @Summary List built-in scales
// @Description Returns every named scale with its interval steps
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]theory.Scale
// @Router /scales [get]
func listScales(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scales": theory.Scales()})
}

// listRoots godoc
// @Summary List root notes
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /roots [get]
func listRoots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roots": theory.RootNames})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the export formats and the conversions between them
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /formats [get]
func (s *Server) listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []converter.Format{converter.FormatMIDI, converter.FormatJSON},
		"conversions": s.conv.GetSupportedConversions(),
		"genres":      converter.Genres,
	})
}
