// Package bootstrap builds the services shared by the API, the worker and
// the CLI from a loaded configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-coach/internal/appdata"
	appinmem "github.com/dvloznov/banking-coach/internal/appdata/inmemory"
	"github.com/dvloznov/banking-coach/internal/appdata/postgres"
	"github.com/dvloznov/banking-coach/internal/auth"
	"github.com/dvloznov/banking-coach/internal/client360"
	"github.com/dvloznov/banking-coach/internal/coach"
	"github.com/dvloznov/banking-coach/internal/config"
	"github.com/dvloznov/banking-coach/internal/corebanking"
	"github.com/dvloznov/banking-coach/internal/gcsexport"
	infraBQ "github.com/dvloznov/banking-coach/internal/infra/bigquery"
	"github.com/dvloznov/banking-coach/internal/infra/memory"
	"github.com/dvloznov/banking-coach/internal/insights"
	"github.com/dvloznov/banking-coach/internal/metrics"
	"github.com/dvloznov/banking-coach/internal/modelregistry"
	"github.com/dvloznov/banking-coach/internal/notionsync"
	"github.com/dvloznov/banking-coach/internal/pipeline"
)

// Services holds every long-lived collaborator. Metrics, Exporter, Models and
// Goals are nil when their feature is disabled.
type Services struct {
	Config   config.Config
	Log      zerolog.Logger
	Metrics  *metrics.Collector
	Records  corebanking.RecordSource
	Resolver *insights.Resolver
	Core     corebanking.Gateway
	App      appdata.Repository
	Tokens   *auth.TokenManager
	Auth     *auth.Service
	Builder  *coach.Builder
	Advisor  *coach.Advisor
	Clients  *client360.Service
	Exporter *gcsexport.Exporter
	Models   *modelregistry.Registry
	Goals    *notionsync.Syncer

	closers []func() error
}

// New connects every backend selected by cfg. Call Close when done.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Services, error) {
	s := &Services{Config: cfg, Log: log}
	if err := s.init(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Services) init(ctx context.Context) error {
	cfg, log := s.Config, s.Log

	if cfg.MetricsEnabled {
		s.Metrics = metrics.NewCollector()
	}

	if err := s.openRecords(ctx); err != nil {
		return err
	}
	if err := s.openAppStore(ctx); err != nil {
		return err
	}

	categories, err := s.Records.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: loading categories: %w", err)
	}
	if len(categories) == 0 {
		log.Warn().Msg("No categories in the record source, using defaults")
		categories = insights.DefaultCategories()
	}
	s.Resolver = insights.NewResolver(categories)

	opts := corebanking.Options{
		UseMock:  cfg.UseMockMainframe,
		BaseURL:  cfg.MainframeURL,
		Timeout:  cfg.MainframeTimeout,
		Source:   s.Records,
		Resolver: s.Resolver,
	}
	if s.Metrics != nil {
		opts.Recorder = s.Metrics
	}
	s.Core = corebanking.NewGateway(opts, log)

	s.Tokens = auth.NewTokenManager(cfg.SecretKey, cfg.TokenTTL, s.App)
	s.Auth = auth.NewService(s.App, s.Core, s.Tokens, log)
	s.Builder = coach.NewBuilder(s.Core, s.App)
	s.Clients = client360.NewService(s.Records, s.Resolver.Categorizer(), s.App, log)

	if cfg.GeminiAPIKey != "" {
		gen, err := coach.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		s.Advisor = coach.NewAdvisor(gen, log)
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, the coach answers with fallbacks")
		s.Advisor = coach.NewAdvisor(nil, log)
	}

	if cfg.GCSBucket != "" {
		store, err := gcsexport.NewGCSStore(ctx)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, store.Close)
		s.Exporter = gcsexport.NewExporter(store, cfg.GCSBucket)
		s.Models = modelregistry.New(s.App, s.Exporter, log)
	} else {
		log.Warn().Msg("GCS_BUCKET not set, statement exports and model uploads are disabled")
	}

	if cfg.NotionEnabled() {
		s.Goals = notionsync.NewSyncer(s.App, notionsync.NewNotionClient(cfg.NotionToken), cfg.NotionGoalsDB)
	}

	return nil
}

func (s *Services) openRecords(ctx context.Context) error {
	switch s.Config.CoreSource {
	case config.SourceBigQuery:
		repo, err := infraBQ.NewCoreRepository(ctx, s.Config.BQProject, s.Config.BQDataset)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, repo.Close)
		s.Records = repo
		s.Log.Info().Str("project", s.Config.BQProject).Str("dataset", s.Config.BQDataset).Msg("Reading core tables from BigQuery")
	default:
		s.Records = memory.NewSeeded(time.Now())
		s.Log.Info().Msg("Reading core tables from the seeded in-memory bank")
	}
	return nil
}

func (s *Services) openAppStore(ctx context.Context) error {
	if s.Config.DatabaseURL == "" {
		s.App = appinmem.NewStore()
		s.Log.Warn().Msg("DATABASE_URL not set, app data is kept in memory")
		return nil
	}
	store, err := postgres.Open(s.Config.DatabaseURL, s.Log)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, store.Close)
	s.App = store
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	return nil
}

// JobDeps returns the collaborators of the job handlers.
func (s *Services) JobDeps() pipeline.Deps {
	d := pipeline.Deps{
		Statements: s.Records,
		Core:       s.Core,
		Archetypes: s.App,
		Resolver:   s.Resolver,
	}
	if s.Exporter != nil {
		d.Exporter = s.Exporter
	}
	if s.Goals != nil {
		d.Goals = s.Goals
	}
	if s.Metrics != nil {
		d.Recorder = s.Metrics
	}
	return d
}

// Close releases every backend in reverse order of opening.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
