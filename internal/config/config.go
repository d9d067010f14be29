// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Record sources for the core-banking data.
const (
	SourceMemory   = "memory"
	SourceBigQuery = "bigquery"
)

// Config holds every runtime setting of the API and its commands.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string
	AppEnv    string

	SecretKey string
	TokenTTL  time.Duration

	// DatabaseURL selects the Postgres app store; empty keeps app data in memory.
	DatabaseURL string

	UseMockMainframe bool
	MainframeURL     string
	MainframeTimeout time.Duration
	CoreSource       string
	BQProject        string
	BQDataset        string

	GeminiAPIKey string
	GeminiModel  string

	GCSBucket     string
	NotionToken   string
	NotionGoalsDB string

	MetricsEnabled bool
	WorkerCount    int
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv.
func LoadFrom(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:          env("PORT", "8080"),
		LogLevel:      env("LOG_LEVEL", "info"),
		LogFormat:     env("LOG_FORMAT", "json"),
		AppEnv:        env("APP_ENV", "production"),
		SecretKey:     getenv("SECRET_KEY"),
		DatabaseURL:   env("DATABASE_URL", ""),
		MainframeURL:  env("MAINFRAME_CICS_URL", ""),
		CoreSource:    strings.ToLower(env("CORE_SOURCE", SourceMemory)),
		BQProject:     env("BQ_PROJECT", ""),
		BQDataset:     env("BQ_DATASET", "core_banking"),
		GeminiAPIKey:  env("GEMINI_API_KEY", ""),
		GeminiModel:   env("GEMINI_MODEL", "gemini-2.5-flash"),
		GCSBucket:     env("GCS_BUCKET", ""),
		NotionToken:   env("NOTION_TOKEN", ""),
		NotionGoalsDB: env("NOTION_GOALS_DB", ""),
	}

	var errs []error
	var err error
	if cfg.TokenTTL, err = time.ParseDuration(env("TOKEN_TTL", "1h")); err != nil {
		errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
	}
	if cfg.MainframeTimeout, err = time.ParseDuration(env("MAINFRAME_TIMEOUT", "5s")); err != nil {
		errs = append(errs, fmt.Errorf("MAINFRAME_TIMEOUT: %w", err))
	}
	if cfg.UseMockMainframe, err = strconv.ParseBool(env("USE_MOCK_MAINFRAME", "true")); err != nil {
		errs = append(errs, fmt.Errorf("USE_MOCK_MAINFRAME: %w", err))
	}
	if cfg.MetricsEnabled, err = strconv.ParseBool(env("METRICS_ENABLED", "true")); err != nil {
		errs = append(errs, fmt.Errorf("METRICS_ENABLED: %w", err))
	}
	if cfg.WorkerCount, err = strconv.Atoi(env("WORKER_COUNT", "5")); err != nil || cfg.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT: must be a positive integer, got %q", getenv("WORKER_COUNT")))
	}

	if cfg.SecretKey == "" {
		if cfg.IsDevelopment() {
			cfg.SecretKey = "dev-secret-change-me"
		} else {
			errs = append(errs, errors.New("SECRET_KEY: required outside development"))
		}
	}
	switch cfg.CoreSource {
	case SourceMemory:
	case SourceBigQuery:
		if cfg.BQProject == "" {
			errs = append(errs, errors.New("BQ_PROJECT: required when CORE_SOURCE=bigquery"))
		}
	default:
		errs = append(errs, fmt.Errorf("CORE_SOURCE: unknown source %q", cfg.CoreSource))
	}
	if !cfg.UseMockMainframe && cfg.MainframeURL == "" {
		errs = append(errs, errors.New("MAINFRAME_CICS_URL: required when USE_MOCK_MAINFRAME=false"))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// IsDevelopment reports whether APP_ENV is development.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// NotionEnabled reports whether goal mirroring is configured.
func (c Config) NotionEnabled() bool {
	return c.NotionToken != "" && c.NotionGoalsDB != ""
}
