// Package server exposes the compliance engine over HTTP. The JSON
// bodies mirror the engine's data structures field-for-field so
// dashboard consumers stay compatible.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clauselens/clauselens/internal/analytics"
	"github.com/clauselens/clauselens/internal/compliance/service"
	"github.com/clauselens/clauselens/internal/config"
	"github.com/clauselens/clauselens/internal/storage"
	"github.com/clauselens/clauselens/internal/suggest"
)

// Server wires the engine components behind a gin router.
type Server struct {
	logger     *zap.Logger
	cfg        config.ServerConfig
	compliance *service.Service
	analytics  *analytics.Engine
	suggester  *suggest.Engine
	store      *storage.MemoryStore
	http       *http.Server
}

// NewServer builds the HTTP surface over the given engines and store.
func NewServer(cfg config.ServerConfig, logger *zap.Logger, complianceSvc *service.Service, analyticsEngine *analytics.Engine, suggester *suggest.Engine, store *storage.MemoryStore) *Server {
	return &Server{
		logger:     logger,
		cfg:        cfg,
		compliance: complianceSvc,
		analytics:  analyticsEngine,
		suggester:  suggester,
		store:      store,
	}
}

// Router builds the gin engine with logging, recovery and CORS.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(ginzap.Ginzap(s.logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(s.logger, true))
	router.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/contracts/analyze", s.handleAnalyze)
		v1.PUT("/rules", s.handleUpdateRules)
		v1.GET("/rules/:framework", s.handleListRules)
		v1.GET("/analytics/risk", s.handleRiskAnalytics)
		v1.POST("/suggestions", s.handleSuggestions)
		v1.POST("/templates/match", s.handleTemplateMatch)
	}

	return router
}

// Start runs the HTTP server until the context is canceled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
