package modelregistry

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-coach/internal/appdata/inmemory"
	"github.com/dvloznov/banking-coach/internal/domain"
)

// MockBlobStore is a mock implementation of BlobStore.
type MockBlobStore struct {
	UploadModelFunc func(ctx context.Context, version, filename string, data []byte) (string, error)
	uploads         int
}

func (m *MockBlobStore) UploadModel(ctx context.Context, version, filename string, data []byte) (string, error) {
	m.uploads++
	if m.UploadModelFunc != nil {
		return m.UploadModelFunc(ctx, version, filename, data)
	}
	return "gs://bucket/models/" + version + "/" + filename, nil
}

func TestRegistry_Upload(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	blobs := &MockBlobStore{}
	r := New(store, blobs, zerolog.Nop())

	m, err := r.Upload(ctx, Upload{Version: " v1.0.0 ", Parameters: `{"n_clusters": 5}`, Filename: "kmeans.pkl", Data: []byte("binary")})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if m.ID == 0 || m.Version != "v1.0.0" || m.Size != 6 || m.URI != "gs://bucket/models/v1.0.0/kmeans.pkl" {
		t.Errorf("Upload() = %+v", m)
	}

	// A second upload of the same version keeps the first configuration.
	if _, err := r.Upload(ctx, Upload{Version: "v1.0.0", Parameters: `{"n_clusters": 8}`, Filename: "kmeans.pkl", Data: []byte("retrained")}); err != nil {
		t.Fatalf("second Upload() error = %v", err)
	}
	cfg, _ := store.EnsureModelConfig(ctx, domain.ModelConfig{Version: "v1.0.0"})
	if cfg.Parameters != `{"n_clusters": 5}` || !cfg.IsActive {
		t.Errorf("config = %+v, want the first parameters", cfg)
	}
	models, _ := store.ListTrainedModels(ctx, "v1.0.0")
	if len(models) != 2 {
		t.Errorf("ListTrainedModels() returned %d, want 2", len(models))
	}

	// Parameters default to an empty object.
	if _, err := r.Upload(ctx, Upload{Version: "v2", Filename: "m.pkl", Data: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	cfg, _ = store.EnsureModelConfig(ctx, domain.ModelConfig{Version: "v2"})
	if cfg.Parameters != "{}" {
		t.Errorf("default Parameters = %q, want {}", cfg.Parameters)
	}
}

func TestRegistry_UploadRejects(t *testing.T) {
	tests := []struct {
		name    string
		upload  Upload
		wantMsg string
	}{
		{"missing version", Upload{Data: []byte("x")}, "version is required"},
		{"bad version", Upload{Version: "v1/../../x", Data: []byte("x")}, "version must be"},
		{"long version", Upload{Version: strings.Repeat("v", 21), Data: []byte("x")}, "version must be"},
		{"missing file", Upload{Version: "v1"}, "model_file is required"},
		{"parameters not json", Upload{Version: "v1", Parameters: "n=5", Data: []byte("x")}, "parameters must be a JSON object"},
		{"parameters not an object", Upload{Version: "v1", Parameters: "[5]", Data: []byte("x")}, "parameters must be a JSON object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := &MockBlobStore{}
			_, err := New(inmemory.NewStore(), blobs, zerolog.Nop()).Upload(context.Background(), tt.upload)
			if !errors.Is(err, domain.ErrInvalidInput) || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Upload() error = %v, want invalid input %q", err, tt.wantMsg)
			}
			if blobs.uploads != 0 {
				t.Error("nothing should be stored for an invalid upload")
			}
		})
	}
}

func TestRegistry_UploadStorageError(t *testing.T) {
	store := inmemory.NewStore()
	blobs := &MockBlobStore{UploadModelFunc: func(ctx context.Context, version, filename string, data []byte) (string, error) {
		return "", errors.New("bucket unavailable")
	}}
	_, err := New(store, blobs, zerolog.Nop()).Upload(context.Background(), Upload{Version: "v1", Data: []byte("x")})
	if err == nil || errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Upload() error = %v, want a server error", err)
	}
	if models, _ := store.ListTrainedModels(context.Background(), "v1"); len(models) != 0 {
		t.Errorf("no model should be recorded, got %d", len(models))
	}
}
