package video

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	// ProviderName identifies this provider in results and logs.
	ProviderName = "veo"

	// MaxDurationSeconds is the longest clip Veo will produce.
	MaxDurationSeconds = 8
)

// Common errors
var (
	ErrMissingAPIKey    = errors.New("missing Gemini API key")
	ErrNoVideoGenerated = errors.New("No video generated")
)

// GenerationRequest describes a single video generation call.
type GenerationRequest struct {
	Prompt           string `json:"prompt"`
	AspectRatio      string `json:"aspect_ratio"`     // e.g. "16:9", "9:16"
	DurationSeconds  int    `json:"duration_seconds"` // validated only; the API picks the actual length
	FirstFrameURL    string `json:"first_frame_url,omitempty"`
	OutputPath       string `json:"output_path,omitempty"`
	UseFastModel     bool   `json:"use_fast_model,omitempty"`
	PersonGeneration string `json:"person_generation,omitempty"` // e.g. "allow_adult"
}

// GenerationResult is the uniform outcome record returned to callers.
// On success FilePath points to a file whose contents equal Data.
type GenerationResult struct {
	Success     bool              `json:"success"`
	Provider    string            `json:"provider"`
	ContentType string            `json:"content_type"`
	FilePath    string            `json:"file_path,omitempty"`
	Data        []byte            `json:"-"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// Backend is the vendor surface the provider depends on: submit a generation
// and refresh an in-flight operation. The real implementation wraps
// google.golang.org/genai; tests substitute a fake.
type Backend interface {
	GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

// genaiBackend adapts a *genai.Client to the Backend interface.
type genaiBackend struct {
	client *genai.Client
}

func (b *genaiBackend) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return b.client.Models.GenerateVideos(ctx, model, prompt, image, config)
}

func (b *genaiBackend) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return b.client.Operations.GetVideosOperation(ctx, op, nil)
}

// failure builds a failure-flagged result carrying the error description.
func failure(err error) *GenerationResult {
	return &GenerationResult{
		Success:     false,
		Provider:    ProviderName,
		ContentType: "video",
		Error:       err.Error(),
	}
}

// ValidateRequest checks request fields this provider can reject up front.
// Everything else (aspect ratio tokens, policy values) is validated downstream
// by the API itself.
func ValidateRequest(req *GenerationRequest) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	if req.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if req.DurationSeconds < 1 || req.DurationSeconds > MaxDurationSeconds {
		return fmt.Errorf("duration_seconds must be between 1 and %d", MaxDurationSeconds)
	}
	return nil
}
