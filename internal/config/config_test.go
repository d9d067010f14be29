package config

import (
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{"SECRET_KEY": "s3cret"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
	if cfg.MainframeTimeout != 5*time.Second {
		t.Errorf("MainframeTimeout = %v, want 5s", cfg.MainframeTimeout)
	}
	if !cfg.UseMockMainframe || cfg.CoreSource != SourceMemory {
		t.Errorf("UseMockMainframe=%v CoreSource=%q, want true and memory", cfg.UseMockMainframe, cfg.CoreSource)
	}
	if cfg.WorkerCount != 5 || !cfg.MetricsEnabled {
		t.Errorf("WorkerCount=%d MetricsEnabled=%v", cfg.WorkerCount, cfg.MetricsEnabled)
	}
	if cfg.NotionEnabled() {
		t.Error("NotionEnabled() = true without a token")
	}
}

func TestLoadFrom_SecretKey(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"missing in production", map[string]string{}, true},
		{"missing in development", map[string]string{"APP_ENV": "development"}, false},
		{"set in production", map[string]string{"SECRET_KEY": "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(envMap(tt.env))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFrom() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.SecretKey == "" {
				t.Error("SecretKey is empty")
			}
		})
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{"bad ttl", map[string]string{"TOKEN_TTL": "forever"}, "TOKEN_TTL"},
		{"bad worker count", map[string]string{"WORKER_COUNT": "0"}, "WORKER_COUNT"},
		{"unknown source", map[string]string{"CORE_SOURCE": "oracle"}, "CORE_SOURCE"},
		{"bigquery without project", map[string]string{"CORE_SOURCE": "bigquery"}, "BQ_PROJECT"},
		{"real mainframe without url", map[string]string{"USE_MOCK_MAINFRAME": "false"}, "MAINFRAME_CICS_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.env["SECRET_KEY"] = "k"
			_, err := LoadFrom(envMap(tt.env))
			if err == nil {
				t.Fatal("LoadFrom() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantMsg)
			}
		})
	}
}
