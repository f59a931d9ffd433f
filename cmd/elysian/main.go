package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/KusumaMurthy109/Elysian/internal/adapters/http/api"
	"github.com/KusumaMurthy109/Elysian/internal/adapters/mq/queue"
	"github.com/KusumaMurthy109/Elysian/internal/adapters/mq/worker"
	"github.com/KusumaMurthy109/Elysian/internal/adapters/repository"
	"github.com/KusumaMurthy109/Elysian/internal/adapters/session"
	"github.com/KusumaMurthy109/Elysian/internal/adapters/unsplash"
	service "github.com/KusumaMurthy109/Elysian/internal/app"
	"github.com/KusumaMurthy109/Elysian/internal/config"
	"github.com/KusumaMurthy109/Elysian/internal/domain/recommend"
	"github.com/KusumaMurthy109/Elysian/pkg/logger"
	"github.com/KusumaMurthy109/Elysian/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

// dependencies bundles the engine, the commit pipeline, and the store into
// the interface set the HTTP handlers consume.
type dependencies struct {
	*service.Service
	*queue.InMemoryQueue
	*repository.BadgerStore
}

func main() {
	// The custom registry carries only domain metrics; drop the default
	// collectors so /healthz stays focused.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	storeOpts := []repository.Option{repository.WithLogger(log)}
	if cfg.DataDir == "" {
		log.Warn(ctx, "no data_dir configured; ratings will not survive restarts")
		storeOpts = append(storeOpts, repository.WithInMemory())
	}
	store, err := repository.NewBadgerStore(cfg.DataDir, storeOpts...)
	if err != nil {
		os.Stderr.WriteString("failed to open rating store: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "closing rating store failed", logger.Error(err))
		}
	}()

	sessions := session.NewStore()
	engine := service.New(store, sessions,
		service.WithLogger(log),
		service.WithSessionTimeout(time.Duration(cfg.SessionTimeoutSeconds)*time.Second),
		service.WithKFactor(cfg.KFactor),
	)

	commitQueue := queue.NewInMemoryQueue(queue.WithCapacity(cfg.CommitQueueSize))
	commitPool := worker.NewPool(cfg.CommitWorkers, commitQueue, store)
	commitPool.Start(ctx)
	defer commitPool.Stop()
	defer func() {
		if err := commitQueue.Close(); err != nil {
			log.Warn(ctx, "closing commit queue failed", logger.Error(err))
		}
	}()

	var recommender api.Recommender
	if cfg.CityCatalog != "" {
		catalog, err := recommend.LoadCatalog(cfg.CityCatalog)
		if err != nil {
			os.Stderr.WriteString("failed to load city catalog: " + err.Error() + "\n")
			return
		}
		recommender = service.NewRecommender(store, catalog, service.WithRecommenderLogger(log))
		log.Info(ctx, "recommendations enabled",
			logger.String("catalog", cfg.CityCatalog),
			logger.Int("cities", catalog.Len()))
	}

	var images api.ImageSource
	if cfg.UnsplashAccessKey != "" {
		imageOpts := []unsplash.Option{}
		if cfg.UnsplashBaseURL != "" {
			imageOpts = append(imageOpts, unsplash.WithBaseURL(cfg.UnsplashBaseURL))
		}
		images = unsplash.NewClient(cfg.UnsplashAccessKey, imageOpts...)
		log.Info(ctx, "city image lookups enabled")
	}

	go startServiceMetricsUpdater(ctx, engine, commitQueue)

	deps := &dependencies{
		Service:       engine,
		InMemoryQueue: commitQueue,
		BadgerStore:   store,
	}

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(deps, engine, recommender, images)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.RequestIDMiddleware(mux),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startServiceMetricsUpdater refreshes gauges that only change on request
// activity, so idle periods still report current values.
func startServiceMetricsUpdater(ctx context.Context, engine *service.Service, commitQueue *queue.InMemoryQueue) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateActiveSessions(engine.ActiveSessions())
			metrics.UpdateCommitQueueSize(commitQueue.Len(ctx))
		}
	}
}
