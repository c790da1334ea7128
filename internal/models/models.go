package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKey represents an API key for authentication
type APIKey struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	KeyHash   string    `json:"-"`
	Status    string    `json:"status"` // active, disabled
	CreatedAt time.Time `json:"created_at"`
}

// VideoJob represents a video generation job
type VideoJob struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	APIKeyID         uuid.UUID  `json:"api_key_id"`
	Status           string     `json:"status"` // queued, running, succeeded, failed
	Prompt           string     `json:"prompt"`
	AspectRatio      string     `json:"aspect_ratio"`
	DurationSeconds  int        `json:"duration_seconds"`
	FirstFrameURL    *string    `json:"first_frame_url,omitempty"`
	UseFastModel     bool       `json:"use_fast_model"`
	EnhancePrompt    bool       `json:"enhance_prompt"`
	Style            *string    `json:"style,omitempty"`
	PersonGeneration string     `json:"person_generation"`
	Model            *string    `json:"model,omitempty"` // set once the worker picks it
	ErrorMessage     *string    `json:"error_message,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

// Asset represents a generated binary stored in S3
type Asset struct {
	ID        uuid.UUID      `json:"id"`
	JobID     uuid.UUID      `json:"job_id"`
	Kind      string         `json:"kind"` // video
	MimeType  string         `json:"mime_type"`
	S3Bucket  string         `json:"s3_bucket"`
	S3Key     string         `json:"s3_key"`
	SizeBytes int64          `json:"size_bytes"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateVideoRequest is the inbound request to create a generation job
type CreateVideoRequest struct {
	Prompt           string  `json:"prompt"`
	AspectRatio      string  `json:"aspect_ratio,omitempty"`      // default 16:9
	DurationSeconds  int     `json:"duration_seconds,omitempty"`  // default 5
	FirstFrameURL    *string `json:"first_frame_url,omitempty"`
	UseFastModel     bool    `json:"use_fast_model,omitempty"`
	EnhancePrompt    bool    `json:"enhance_prompt,omitempty"`
	Style            *string `json:"style,omitempty"`
	PersonGeneration string  `json:"person_generation,omitempty"` // default allow_adult
}

// CreateVideoResponse is the response after creating a job
type CreateVideoResponse struct {
	JobID     uuid.UUID `json:"job_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// VideoStatusResponse describes job state, including the produced asset when done
type VideoStatusResponse struct {
	JobID       uuid.UUID  `json:"job_id"`
	Status      string     `json:"status"`
	Prompt      string     `json:"prompt"`
	AspectRatio string     `json:"aspect_ratio"`
	Model       *string    `json:"model,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Asset       *AssetInfo `json:"asset,omitempty"`
}

// AssetInfo is the API-facing asset description
type AssetInfo struct {
	AssetID   uuid.UUID `json:"asset_id"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	URL       string    `json:"url,omitempty"`
}
