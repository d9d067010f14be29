// Package modelregistry stores versions of the client clustering model: the
// hyperparameters in the app database and the trained binaries in GCS.
package modelregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-coach/internal/appdata"
	"github.com/dvloznov/banking-coach/internal/domain"
)

// MaxModelSize bounds an uploaded model binary.
const MaxModelSize = 32 << 20

var versionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,19}$`)

// BlobStore stores model binaries and returns where they went.
type BlobStore interface {
	UploadModel(ctx context.Context, version, filename string, data []byte) (string, error)
}

// Upload is one model binary sent by a data scientist.
type Upload struct {
	Version    string
	Parameters string // JSON object, optional
	Filename   string
	Data       []byte
}

// Registry validates and records model uploads.
type Registry struct {
	store appdata.ModelStore
	blobs BlobStore
	log   zerolog.Logger
}

// New creates a registry.
func New(store appdata.ModelStore, blobs BlobStore, log zerolog.Logger) *Registry {
	return &Registry{store: store, blobs: blobs, log: log}
}

func (u Upload) validate() error {
	if u.Version == "" {
		return fmt.Errorf("%w: version is required", domain.ErrInvalidInput)
	}
	if !versionPattern.MatchString(u.Version) {
		return fmt.Errorf("%w: version must be at most 20 letters, digits, dots, dashes or underscores", domain.ErrInvalidInput)
	}
	if len(u.Data) == 0 {
		return fmt.Errorf("%w: model_file is required", domain.ErrInvalidInput)
	}
	if len(u.Data) > MaxModelSize {
		return fmt.Errorf("%w: model_file exceeds %d bytes", domain.ErrInvalidInput, MaxModelSize)
	}
	if u.Parameters != "" {
		var params map[string]any
		if err := json.Unmarshal([]byte(u.Parameters), &params); err != nil {
			return fmt.Errorf("%w: parameters must be a JSON object", domain.ErrInvalidInput)
		}
	}
	return nil
}

// Upload creates the configuration of a new version, stores the binary and
// records it. The configuration of a known version is left unchanged.
func (r *Registry) Upload(ctx context.Context, u Upload) (domain.TrainedModel, error) {
	u.Version = strings.TrimSpace(u.Version)
	u.Parameters = strings.TrimSpace(u.Parameters)
	if err := u.validate(); err != nil {
		return domain.TrainedModel{}, fmt.Errorf("Upload: %w", err)
	}
	if u.Parameters == "" {
		u.Parameters = "{}"
	}

	cfg, err := r.store.EnsureModelConfig(ctx, domain.ModelConfig{
		Version:    u.Version,
		Parameters: u.Parameters,
		IsActive:   true,
	})
	if err != nil {
		return domain.TrainedModel{}, fmt.Errorf("Upload: model config: %w", err)
	}

	uri, err := r.blobs.UploadModel(ctx, cfg.Version, u.Filename, u.Data)
	if err != nil {
		return domain.TrainedModel{}, fmt.Errorf("Upload: store binary: %w", err)
	}

	m, err := r.store.SaveTrainedModel(ctx, domain.TrainedModel{
		Version:  cfg.Version,
		Filename: u.Filename,
		URI:      uri,
		Size:     int64(len(u.Data)),
	})
	if err != nil {
		return domain.TrainedModel{}, fmt.Errorf("Upload: record model: %w", err)
	}

	r.log.Info().
		Str("version", m.Version).
		Str("uri", m.URI).
		Int64("size", m.Size).
		Msg("Model uploaded")
	return m, nil
}
