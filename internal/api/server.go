// Package api exposes reconciliation over HTTP: both files are uploaded in one
// multipart request and the classified ledger comes back as a spreadsheet or
// as JSON.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bank-reconciliation-service/internal/reconciler"
	"bank-reconciliation-service/pkg/logger"
)

// Reconciler runs one reconciliation
type Reconciler interface {
	ProcessReconciliation(ctx context.Context, request *reconciler.ReconciliationRequest) (*reconciler.ReconciliationResult, error)
}

// Config holds HTTP server settings
type Config struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	AllowOrigins    []string      `json:"allow_origins" yaml:"allow_origins" mapstructure:"allow_origins"`
	MaxUploadBytes  int64         `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// DefaultConfig returns the settings used by `reconciler serve`
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		AllowOrigins:    []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"},
		MaxUploadBytes:  32 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate checks if the server configuration is valid
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// Server serves the reconciliation API
type Server struct {
	reconciler Reconciler
	config     *Config
	logger     logger.Logger
	router     *gin.Engine
}

// NewServer builds the router. A nil config uses DefaultConfig.
func NewServer(rec Reconciler, config *Config, log logger.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	s := &Server{
		reconciler: rec,
		config:     config,
		logger:     log.WithComponent("api"),
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = s.config.MaxUploadBytes
	router.Use(gin.Recovery())
	router.Use(s.requestLogger("/api/health"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", runIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.POST("/reconcile", s.reconcile)
	}

	return router
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.config.Addr).Info("Starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down API server")
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs each request through the application logger
func (s *Server) requestLogger(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if skip[c.Request.URL.Path] {
			return
		}

		entry := s.logger.WithFields(logger.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("Request failed")
			return
		}
		entry.Info("Request handled")
	}
}
