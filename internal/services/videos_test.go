package services

import (
	"strings"
	"testing"

	"github.com/snappy-loop/videogen/internal/models"
)

func strPtr(s string) *string { return &s }

func TestValidateCreateVideoRequest(t *testing.T) {
	tests := []struct {
		name string
		req  *models.CreateVideoRequest
		want string // empty means valid
	}{
		{
			name: "valid minimal",
			req:  &models.CreateVideoRequest{Prompt: "a cat"},
		},
		{
			name: "empty prompt",
			req:  &models.CreateVideoRequest{},
			want: "prompt is required",
		},
		{
			name: "invalid aspect ratio",
			req:  &models.CreateVideoRequest{Prompt: "a cat", AspectRatio: "4:3"},
			want: "invalid aspect_ratio",
		},
		{
			name: "portrait aspect ratio",
			req:  &models.CreateVideoRequest{Prompt: "a cat", AspectRatio: "9:16"},
		},
		{
			name: "duration too long",
			req:  &models.CreateVideoRequest{Prompt: "a cat", DurationSeconds: 30},
			want: "duration_seconds must be between 1 and 8",
		},
		{
			name: "negative duration",
			req:  &models.CreateVideoRequest{Prompt: "a cat", DurationSeconds: -1},
			want: "duration_seconds",
		},
		{
			name: "bad first frame url",
			req:  &models.CreateVideoRequest{Prompt: "a cat", FirstFrameURL: strPtr("ftp://host/img.png")},
			want: "first_frame_url",
		},
		{
			name: "good first frame url",
			req:  &models.CreateVideoRequest{Prompt: "a cat", FirstFrameURL: strPtr("https://example.com/img.png")},
		},
		{
			name: "invalid person generation",
			req:  &models.CreateVideoRequest{Prompt: "a cat", PersonGeneration: "whatever"},
			want: "invalid person_generation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateVideoRequest(tt.req)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestClampListLimit(t *testing.T) {
	tests := []struct {
		name       string
		limit, max int
		want       int
	}{
		{"zero falls back to default", 0, 100, 20},
		{"negative falls back to default", -5, 100, 20},
		{"in range passes through", 50, 100, 50},
		{"at max passes through", 100, 100, 100},
		{"over max clamps to max", 500, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampListLimit(tt.limit, tt.max); got != tt.want {
				t.Errorf("clampListLimit(%d, %d) = %d, want %d", tt.limit, tt.max, got, tt.want)
			}
		})
	}
}

func TestValidateCreateVideoRequest_Defaults(t *testing.T) {
	req := &models.CreateVideoRequest{Prompt: "a cat"}
	if err := ValidateCreateVideoRequest(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.AspectRatio != "16:9" {
		t.Errorf("aspect_ratio default = %q, want 16:9", req.AspectRatio)
	}
	if req.DurationSeconds != 5 {
		t.Errorf("duration default = %d, want 5", req.DurationSeconds)
	}
	if req.PersonGeneration != "allow_adult" {
		t.Errorf("person_generation default = %q, want allow_adult", req.PersonGeneration)
	}
}
