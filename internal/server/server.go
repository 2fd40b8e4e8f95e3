package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hotelbooking/internal/config"
	"hotelbooking/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouteRegistrar is implemented by the module handlers.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Check is one dependency probed by /readyz.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	server *http.Server
	checks []Check
	logger zerolog.Logger
}

func New(cfg *config.Config, modules []RouteRegistrar, checks []Check, logger zerolog.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		engine: gin.New(),
		checks: checks,
		logger: logger.With().Str("component", "server").Logger(),
	}

	s.engine.Use(middleware.RequestID(), middleware.Recovery(logger), middleware.AccessLog(logger))
	if cfg.Monitoring.PrometheusEnabled {
		s.engine.Use(middleware.Metrics())
		s.engine.GET(cfg.Monitoring.Path, gin.WrapH(promhttp.Handler()))
	}

	s.engine.GET("/healthz", s.health)
	s.engine.GET("/readyz", s.ready)

	api := s.engine.Group("/api")
	for _, m := range modules {
		m.RegisterRoutes(api)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           middleware.CORS(cfg.HTTP.CORSOrigins)(s.engine),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Addr() string {
	return s.server.Addr
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"app":     s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(s.checks))
	status := http.StatusOK
	for _, check := range s.checks {
		if err := check.Probe(ctx); err != nil {
			s.logger.Warn().Err(err).Str("check", check.Name).Msg("readiness check failed")
			results[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}
