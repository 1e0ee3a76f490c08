package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/logger"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// maxBodyBytes caps request bodies.
const maxBodyBytes = 2 << 20

// Server is the docgap HTTP API.
type Server struct {
	ports    *Ports
	settings domain.ServerSettings
	engine   *gin.Engine
}

// NewServer validates the ports and builds the router.
func NewServer(ports *Ports, settings domain.ServerSettings) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if settings.Addr == "" {
		settings.Addr = domain.DefaultAppSettings().Server.Addr
	}

	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{ports: ports, settings: settings}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), limitBody(maxBodyBytes))
	if len(s.settings.CORSOrigins) > 0 {
		r.Use(corsMiddleware(s.settings.CORSOrigins))
	}

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.POST("/analysis", s.handleAnalysis)
	api.POST("/detect-gaps", s.handleDetectGaps)
	api.POST("/compare", s.handleCompare)
	api.POST("/suggest", s.handleSuggest)
	api.POST("/generate-article", s.handleGenerateArticle)
	api.POST("/translate", s.handleTranslate)
	api.POST("/export", s.handleExport)

	api.GET("/articles", s.handleListArticles)
	api.GET("/articles/search", s.handleSearchArticles)
	api.GET("/articles/:id", s.handleGetArticle)

	return r
}

// corsMiddleware allows the configured origins.
func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			config.AllowAllOrigins = true
			return cors.New(config)
		}
	}
	config.AllowOrigins = origins
	return cors.New(config)
}

// requestLogger logs one line per request in verbose mode.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("[api] %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.settings.Addr
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.settings.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("[api] shutdown: %v", err)
		}
	}()

	logger.Info("[api] serving on http://%s", s.settings.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
