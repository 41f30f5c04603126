// Package server is the composition root: it builds the one
// orchestrator instance per running application and mounts the API
// surfaces around it.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/glyphide/termcore/internal/api/http"
	"github.com/glyphide/termcore/internal/api/middleware"
	apiws "github.com/glyphide/termcore/internal/api/ws"
	"github.com/glyphide/termcore/internal/infrastructure/config"
	"github.com/glyphide/termcore/internal/infrastructure/logging"
	"github.com/glyphide/termcore/internal/infrastructure/monitoring"
	"github.com/glyphide/termcore/internal/orchestrator"
	"github.com/glyphide/termcore/internal/shared/events"
	"github.com/glyphide/termcore/internal/supervisor"
	"github.com/glyphide/termcore/internal/transport"
	"github.com/glyphide/termcore/internal/transport/localhost"
)

// Server wraps the HTTP server and the orchestrator it exposes.
type Server struct {
	router  *gin.Engine
	core    *orchestrator.Orchestrator
	httpSrv *http.Server
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// New creates a server instance. The orchestrator is constructed here,
// exactly once, and handed to every surface that needs it.
func New(cfg *config.Config) (*Server, error) {
	logger := logging.FromOptions(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("initializing terminal core",
		zap.String("port", cfg.Server.Port),
		zap.String("host_mode", cfg.Host.Mode),
	)

	metrics := monitoring.NewMetrics()

	var dialer transport.Dialer
	switch cfg.Host.Mode {
	case "local":
		dialer = localhost.New(logger.Logger)
		logger.Info("using in-process PTY host")
	case "remote":
		dialer = transport.NewWSDialer(cfg.Host.URL, logger.Logger)
		logger.Info("using remote process host", zap.String("url", cfg.Host.URL))
	default:
		return nil, fmt.Errorf("unknown host mode: %s", cfg.Host.Mode)
	}

	core := orchestrator.New(orchestrator.Options{
		Dialer:     dialer,
		HistoryCap: cfg.Terminal.HistoryCap,
		Reconnect: supervisor.Settings{
			MaxReconnectAttempts: cfg.Reconnect.MaxAttempts,
			BackoffBase:          cfg.Reconnect.BackoffBase,
			BackoffMax:           cfg.Reconnect.BackoffMax,
			QueueDepth:           cfg.Reconnect.QueueDepth,
		},
		Logger:  logger.Logger,
		Metrics: metrics,
	})

	core.Subscribe(func(e events.Event) {
		metrics.RecordEvent(string(e.Kind()))
	})

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger.Logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	wsHandler := apiws.NewHandler(core, logger.Logger, metrics)
	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	apihttp.NewHandlers(core).Register(api)

	return &Server{
		router:  router,
		core:    core,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Orchestrator exposes the core for embedding callers.
func (s *Server) Orchestrator() *orchestrator.Orchestrator {
	return s.core
}

// Run initializes the orchestrator and serves until Shutdown.
func (s *Server) Run(ctx context.Context) error {
	if err := s.core.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize orchestrator: %w", err)
	}

	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	uptimeCtx, stopUptime := context.WithCancel(ctx)
	defer stopUptime()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-uptimeCtx.Done():
				return
			case <-ticker.C:
				s.metrics.UpdateUptime()
			}
		}
	}()

	s.logger.Info("terminal core listening", zap.String("addr", addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown disposes the orchestrator and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.core.Dispose()

	if s.httpSrv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
