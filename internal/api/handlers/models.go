package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-coach/internal/api/middleware"
	"github.com/dvloznov/banking-coach/internal/modelregistry"
)

// multipartOverhead is the room left for form fields next to the model file.
const multipartOverhead = 1 << 20

// ModelsHandler accepts trained clustering models.
type ModelsHandler struct {
	registry *modelregistry.Registry
	log      zerolog.Logger
}

// NewModelsHandler creates a models handler. registry is nil when no bucket
// is configured, and uploads then answer 503.
func NewModelsHandler(registry *modelregistry.Registry, log zerolog.Logger) *ModelsHandler {
	return &ModelsHandler{registry: registry, log: log}
}

type modelView struct {
	ID         int64     `json:"id"`
	Version    string    `json:"version"`
	Filename   string    `json:"filename"`
	URI        string    `json:"uri"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Upload handles POST /api/v1/models/upload, a multipart form with the
// model_file binary, its version and optional JSON parameters.
func (h *ModelsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := claimsFrom(w, r); !ok {
		return
	}
	if h.registry == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Model storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, modelregistry.MaxModelSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Model file is too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("model_file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "model_file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, modelregistry.MaxModelSize+1))
	if err != nil {
		writeError(w, r, fmt.Errorf("read model_file: %w", err), "Reading model upload failed")
		return
	}

	m, err := h.registry.Upload(r.Context(), modelregistry.Upload{
		Version:    r.FormValue("version"),
		Parameters: r.FormValue("parameters"),
		Filename:   header.Filename,
		Data:       data,
	})
	if err != nil {
		writeError(w, r, err, "Model upload failed")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("Model %s saved", m.Version),
		"model": modelView{
			ID:         m.ID,
			Version:    m.Version,
			Filename:   m.Filename,
			URI:        m.URI,
			Size:       m.Size,
			UploadedAt: m.UploadedAt,
		},
	})
}
