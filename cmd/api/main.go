package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/banking-coach/internal/api/handlers"
	"github.com/dvloznov/banking-coach/internal/api/middleware"
	"github.com/dvloznov/banking-coach/internal/bootstrap"
	"github.com/dvloznov/banking-coach/internal/config"
	"github.com/dvloznov/banking-coach/internal/jobs/inmemory"
	"github.com/dvloznov/banking-coach/internal/logger"
	"github.com/dvloznov/banking-coach/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Parse command-line flags
	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	flag.Parse()

	log := logger.FromConfig(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	svc, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer svc.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.WorkerCount, jobStore)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	router := pipeline.NewRouter(svc.JobDeps())
	log.Info().Int("workers", cfg.WorkerCount).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, router.Dispatch); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	go pruneJobs(workerCtx, jobStore, jobRetention)

	// Initialize handlers
	var adviceRecorder handlers.AdviceRecorder
	if svc.Metrics != nil {
		adviceRecorder = svc.Metrics
	}
	h := handlers.Handlers{
		Auth:    handlers.NewAuthHandler(svc.Auth, log),
		Banking: handlers.NewBankingHandler(svc.Core, svc.Builder, log),
		Coach:   handlers.NewCoachHandler(svc.Builder, svc.Advisor, svc.Core, svc.App, adviceRecorder, log),
		Goals:   handlers.NewGoalsHandler(svc.App, svc.App, log),
		Jobs:    handlers.NewJobsHandler(jobStore, jobQueue, svc.Exporter != nil, log),
		Clients: handlers.NewClientsHandler(svc.Clients, log),
		Models:  handlers.NewModelsHandler(svc.Models, log),
	}

	mux := handlers.NewMux(h, middleware.Auth(svc.Tokens))

	var handler http.Handler = mux
	if svc.Metrics != nil {
		mux.Handle("GET /metrics", svc.Metrics.Handler())
		handler = middleware.Metrics(svc.Metrics)(mux)
	}

	// Apply middleware
	handler = middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(handler),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Str("env", cfg.AppEnv).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	// Close job queue
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}

// jobRetention is how long finished jobs stay visible to their owners.
const jobRetention = 24 * time.Hour

// pruneJobs drops expired finished jobs every hour until ctx is done.
func pruneJobs(ctx context.Context, store *inmemory.Store, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.Prune(now.Add(-retention)); n > 0 {
				log := logger.FromContext(ctx)
				log.Debug().Int("jobs", n).Msg("Pruned finished jobs")
			}
		}
	}
}
