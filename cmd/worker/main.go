package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-coach/internal/appdata"
	"github.com/dvloznov/banking-coach/internal/bootstrap"
	"github.com/dvloznov/banking-coach/internal/config"
	"github.com/dvloznov/banking-coach/internal/jobs"
	"github.com/dvloznov/banking-coach/internal/jobs/inmemory"
	"github.com/dvloznov/banking-coach/internal/logger"
	"github.com/dvloznov/banking-coach/internal/pipeline"
)

// The worker periodically refreshes the archetype of every registered user
// and, when Notion is configured, mirrors their goals.
func main() {
	interval := flag.Duration("interval", 24*time.Hour, "Time between batch runs")
	once := flag.Bool("once", false, "Run a single batch and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.FromConfig(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	svc, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer svc.Close()

	// Initialize job store and queue
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(1000, cfg.WorkerCount, jobStore)

	log.Info().Dur("interval", *interval).Msg("Starting worker service")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	if err := jobQueue.Start(ctx, pipeline.NewRouter(svc.JobDeps()).Dispatch); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	batch := func() {
		n, err := enqueueBatch(ctx, svc.App, jobQueue, svc.Goals != nil)
		if err != nil {
			log.Error().Err(err).Msg("Batch enqueue failed")
			return
		}
		log.Info().Int("jobs", n).Msg("Batch enqueued")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	batch()
	if !*once {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
	loop:
		for {
			select {
			case <-ticker.C:
				batch()
			case <-quit:
				break loop
			}
		}
	}

	log.Info().Msg("Shutting down worker service...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer shutdownCancel()

	if *once {
		waitForJobs(shutdownCtx, jobStore, log)
	}

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}

// enqueueBatch publishes one archetype refresh per user, plus a goal sync
// when syncGoals is set.
func enqueueBatch(ctx context.Context, users appdata.UserStore, pub jobs.Publisher, syncGoals bool) (int, error) {
	list, err := users.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range list {
		if err := pub.Publish(ctx, &jobs.Job{Type: jobs.JobTypeRefreshArchetype, UserID: u.ID}); err != nil {
			return n, err
		}
		n++
		if syncGoals {
			if err := pub.Publish(ctx, &jobs.Job{Type: jobs.JobTypeSyncGoals, UserID: u.ID}); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// waitForJobs polls the store until no job is pending, running or waiting
// for a retry.
func waitForJobs(ctx context.Context, store jobs.JobStore, log zerolog.Logger) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		open := 0
		for _, status := range []jobs.JobStatus{jobs.JobStatusPending, jobs.JobStatusRunning, jobs.JobStatusRetrying} {
			list, err := store.ListJobs(ctx, jobs.JobFilter{Status: status})
			if err != nil {
				log.Error().Err(err).Msg("Failed to list jobs")
				return
			}
			open += len(list)
		}
		if open == 0 {
			return
		}
		select {
		case <-ctx.Done():
			log.Warn().Int("open_jobs", open).Msg("Gave up waiting for jobs")
			return
		case <-ticker.C:
		}
	}
}
