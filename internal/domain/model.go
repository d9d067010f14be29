package domain

import "time"

// ModelConfig is one version of the client clustering model. Parameters holds
// the hyperparameters as a JSON object.
type ModelConfig struct {
	ID         int64
	Version    string
	Parameters string
	IsActive   bool
	CreatedAt  time.Time
}

// TrainedModel is an uploaded model binary. The bytes live in object storage
// at URI.
type TrainedModel struct {
	ID         int64
	Version    string
	Filename   string
	URI        string
	Size       int64
	UploadedAt time.Time
}
