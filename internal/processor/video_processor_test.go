package processor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/snappy-loop/videogen/internal/models"
	"github.com/snappy-loop/videogen/internal/video"
)

func TestBuildGenerationRequest(t *testing.T) {
	frameURL := "https://example.com/frame.png"
	job := &models.VideoJob{
		ID:               uuid.New(),
		Prompt:           "a fox in the snow",
		AspectRatio:      "9:16",
		DurationSeconds:  6,
		FirstFrameURL:    &frameURL,
		UseFastModel:     true,
		PersonGeneration: "allow_adult",
	}

	req := buildGenerationRequest(job)

	if req.Prompt != job.Prompt {
		t.Errorf("prompt = %q", req.Prompt)
	}
	if req.AspectRatio != "9:16" {
		t.Errorf("aspect_ratio = %q", req.AspectRatio)
	}
	if req.DurationSeconds != 6 {
		t.Errorf("duration = %d", req.DurationSeconds)
	}
	if req.FirstFrameURL != frameURL {
		t.Errorf("first_frame_url = %q", req.FirstFrameURL)
	}
	if !req.UseFastModel {
		t.Error("use_fast_model not carried over")
	}
	if req.OutputPath != "" {
		t.Errorf("output path should be unset, got %q", req.OutputPath)
	}
}

func TestBuildGenerationRequest_NoFirstFrame(t *testing.T) {
	job := &models.VideoJob{ID: uuid.New(), Prompt: "a fox", AspectRatio: "16:9", DurationSeconds: 5}

	req := buildGenerationRequest(job)

	if req.FirstFrameURL != "" {
		t.Errorf("first_frame_url = %q, want empty", req.FirstFrameURL)
	}
}

func TestAssetMeta(t *testing.T) {
	result := &video.GenerationResult{
		FilePath: "/tmp/out/veo_20250101_000000.mp4",
		Metadata: map[string]string{
			"aspect_ratio": "16:9",
			"model":        "veo-3.0-generate-preview",
			"prompt":       "original prompt",
		},
	}

	meta := assetMeta(result, "enhanced prompt")

	if meta["prompt"] != "enhanced prompt" {
		t.Errorf("prompt = %v, want the submitted prompt", meta["prompt"])
	}
	if meta["file_path"] != result.FilePath {
		t.Errorf("file_path = %v", meta["file_path"])
	}
	if meta["aspect_ratio"] != "16:9" {
		t.Errorf("aspect_ratio = %v", meta["aspect_ratio"])
	}
	if meta["model"] != "veo-3.0-generate-preview" {
		t.Errorf("model = %v", meta["model"])
	}
}
