package gcsexport

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// ModelPrefix is the object prefix of uploaded model binaries.
const ModelPrefix = "models"

// ModelObjectName returns the object path of a model binary:
// models/<version>/<id>-<filename>. Directory parts of filename are dropped.
func ModelObjectName(version, filename, id string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "model.bin"
	}
	return fmt.Sprintf("%s/%s/%s-%s", ModelPrefix, version, id, name)
}

// UploadModel stores a model binary in the export bucket and returns its gs:// URI.
func (e *Exporter) UploadModel(ctx context.Context, version, filename string, data []byte) (string, error) {
	if e.bucket == "" {
		return "", fmt.Errorf("UploadModel: no bucket configured")
	}
	object := ModelObjectName(version, filename, e.newID())
	if err := e.store.Put(ctx, e.bucket, object, "application/octet-stream", data); err != nil {
		return "", fmt.Errorf("UploadModel: %w", err)
	}
	return URI(e.bucket, object), nil
}
