// Coordination hub: matches agents to tasks, tracks progress, detects
// coordination conflicts, and streams a live event feed to observers.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"coordination-hub/internal/config"
	"coordination-hub/internal/coordination"
	"coordination-hub/internal/observability"
	"coordination-hub/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := observability.NewLogger(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("starting coordination hub",
		zap.String("environment", cfg.Environment),
		zap.Int("port", cfg.Server.Port))

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	hub := coordination.NewEventHub(cfg.Coordination.EventRingSize)
	registry := coordination.NewRegistry(hub)
	coordinator := coordination.NewCoordinator(registry, hub)
	conflicts := coordination.NewConflictDetector(registry, coordinator, hub)

	srv := transport.NewServer(registry, coordinator, conflicts, hub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go srv.Run(ctx)
	go runLivenessSweep(ctx, registry, logger, cfg.Coordination.LivenessSweepInterval, cfg.Coordination.StalenessThreshold)
	go runMetricsRefresh(ctx, registry, coordinator, metrics)
	go observability.RunMetricsListener(ctx, hub, metrics)

	router := setupRouter(cfg, logger)
	srv.RegisterRoutes(router)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func setupRouter(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	})

	return router
}

// runLivenessSweep marks agents offline once their last_seen exceeds the
// staleness threshold, the only time-driven mutation in the core.
func runLivenessSweep(ctx context.Context, registry *coordination.Registry, logger *zap.Logger, interval, staleness time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stale := registry.SweepStale(staleness)
			if len(stale) > 0 {
				logger.Info("liveness sweep marked agents offline", zap.Strings("agents", stale))
			}
		}
	}
}

// runMetricsRefresh periodically recomputes the agents-by-status and
// tasks-by-status gauges from current state, since neither the registry
// nor the coordinator push metric updates on every mutation.
func runMetricsRefresh(ctx context.Context, registry *coordination.Registry, coordinator *coordination.Coordinator, metrics *observability.Metrics) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	refresh := func() {
		byStatus := map[coordination.AgentStatus]float64{}
		for _, a := range registry.All() {
			byStatus[a.Status]++
		}
		metrics.AgentsByStatus.Reset()
		for status, count := range byStatus {
			metrics.AgentsByStatus.WithLabelValues(string(status)).Set(count)
		}

		byTaskStatus := map[coordination.TaskStatus]float64{}
		for _, t := range coordinator.All() {
			byTaskStatus[t.Status]++
		}
		metrics.TasksByStatus.Reset()
		for status, count := range byTaskStatus {
			metrics.TasksByStatus.WithLabelValues(string(status)).Set(count)
		}
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
