// Package server exposes the evaluation pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"visascope/internal/common/config"
	"visascope/internal/common/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps the gin engine and the underlying http.Server so the caller
// controls startup and graceful shutdown.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	logger logger.Logger
}

func New(cfg *config.Config, handlers *Handlers, log logger.Logger) *Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	engine.Use(corsMiddleware(cfg.HTTP.AllowedOrigins))

	engine.GET("/healthz", handlers.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	{
		api.POST("/evaluations", handlers.SubmitEvaluation)
		api.GET("/evaluations/:id", handlers.GetEvaluation)
		api.GET("/evaluations/:id/report", handlers.GetEvaluationReport)
		api.GET("/visa-types", handlers.ListVisaTypes)

		admin := api.Group("/admin")
		{
			admin.GET("/evaluations", handlers.SearchEvaluations)
		}
	}

	readTimeout := time.Duration(cfg.HTTP.ReadTimeout) * time.Millisecond
	writeTimeout := time.Duration(cfg.HTTP.WriteTimeout) * time.Millisecond
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:      engine,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		logger: log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run blocks until the listener fails.
func (s *Server) Run() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.http.Addr,
	})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	})
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	l := log.WithFields(map[string]interface{}{"component": "http"})
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("request handled", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}
