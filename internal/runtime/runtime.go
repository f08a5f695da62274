package runtime

import (
	"context"
	"math"
)

// ModelInfo describes a model offered by the runtime.
// The application treats it as read-only.
type ModelInfo struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Downloaded  bool   `json:"downloaded" yaml:"downloaded"`
	SizeBytes   int64  `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	Family      string `json:"family,omitempty" yaml:"family,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Runtime is the boundary to the model-inference service.
//
// Progress and token callbacks are invoked on the calling goroutine, in order,
// before the method returns.
type Runtime interface {
	// ListModels enumerates the models the runtime can serve
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// Download fetches a model, reporting progress in the range [0, 1]
	Download(ctx context.Context, modelID string, progress func(float64)) error

	// Load makes a downloaded model the active one.
	// A false result without an error means the runtime declined.
	Load(ctx context.Context, modelID string) (bool, error)

	// GenerateStream runs the prompt and delivers the output token by token
	GenerateStream(ctx context.Context, prompt string, token func(string)) error
}

// FrameType identifies a websocket frame in the streaming protocol
type FrameType string

const (
	FrameGenerate FrameType = "generate"
	FrameProgress FrameType = "progress"
	FrameToken    FrameType = "token"
	FrameDone     FrameType = "done"
	FrameError    FrameType = "error"
)

// Frame is the JSON envelope exchanged over the download and generate streams
type Frame struct {
	Type      FrameType `json:"type"`
	RequestID string    `json:"request_id,omitempty"`
	Progress  float64   `json:"progress,omitempty"`
	Text      string    `json:"text,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	MaxTokens int       `json:"max_tokens,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ModelsResponse is the body of GET /api/v1/models
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string `json:"status"`
	Loaded string `json:"loaded,omitempty"`
}

// LoadResponse is the body of POST /api/v1/models/{id}/load
type LoadResponse struct {
	Loaded bool   `json:"loaded"`
	Error  string `json:"error,omitempty"`
}

// HTTP and websocket endpoints served by a runtime daemon
const (
	PathHealth   = "/healthz"
	PathModels   = "/api/v1/models"
	PathGenerate = "/api/v1/generate"
)

// ClampProgress limits p to [0, 1]
func ClampProgress(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
