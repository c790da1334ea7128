package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/videogen/internal/config"
	"github.com/snappy-loop/videogen/internal/database"
	"github.com/snappy-loop/videogen/internal/models"
	"github.com/snappy-loop/videogen/internal/video"
)

const (
	presignedURLTTL  = 1 * time.Hour
	defaultListLimit = 20
)

// validAspectRatios are the tokens Veo accepts.
var validAspectRatios = map[string]bool{
	"16:9": true,
	"9:16": true,
}

// validPersonGeneration are the content-policy tokens Veo accepts.
var validPersonGeneration = map[string]bool{
	"allow_adult": true,
	"allow_all":   true,
	"dont_allow":  true,
}

// JobPublisher publishes job messages for the worker
type JobPublisher interface {
	PublishJob(ctx context.Context, jobID uuid.UUID, traceID string) error
}

// AssetURLSigner produces download URLs for stored assets
type AssetURLSigner interface {
	GeneratePresignedURL(key string, expiration time.Duration) (string, error)
	PublicURL(key string) string
}

// VideoService handles video job business logic
type VideoService struct {
	jobRepo   *database.VideoJobRepository
	assetRepo *database.AssetRepository
	publisher JobPublisher
	signer    AssetURLSigner
	config    *config.Config
}

// NewVideoService creates a new VideoService
func NewVideoService(db *database.DB, publisher JobPublisher, signer AssetURLSigner, cfg *config.Config) *VideoService {
	return &VideoService{
		jobRepo:   database.NewVideoJobRepository(db),
		assetRepo: database.NewAssetRepository(db),
		publisher: publisher,
		signer:    signer,
		config:    cfg,
	}
}

// ValidateCreateVideoRequest validates and normalizes a create request in place.
func ValidateCreateVideoRequest(req *models.CreateVideoRequest) error {
	if req.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}

	if req.AspectRatio == "" {
		req.AspectRatio = "16:9"
	}
	if !validAspectRatios[req.AspectRatio] {
		return fmt.Errorf("invalid aspect_ratio: %s", req.AspectRatio)
	}

	if req.DurationSeconds == 0 {
		req.DurationSeconds = 5
	}
	if req.DurationSeconds < 1 || req.DurationSeconds > video.MaxDurationSeconds {
		return fmt.Errorf("duration_seconds must be between 1 and %d", video.MaxDurationSeconds)
	}

	if req.FirstFrameURL != nil {
		u, err := url.Parse(*req.FirstFrameURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("first_frame_url must be an http(s) URL")
		}
	}

	if req.PersonGeneration == "" {
		req.PersonGeneration = "allow_adult"
	}
	if !validPersonGeneration[req.PersonGeneration] {
		return fmt.Errorf("invalid person_generation: %s", req.PersonGeneration)
	}

	return nil
}

// CreateVideo creates a new video generation job and hands it to the worker
func (s *VideoService) CreateVideo(ctx context.Context, req *models.CreateVideoRequest, userID, apiKeyID uuid.UUID) (*models.CreateVideoResponse, error) {
	if err := ValidateCreateVideoRequest(req); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	job := &models.VideoJob{
		ID:               uuid.New(),
		UserID:           userID,
		APIKeyID:         apiKeyID,
		Status:           "queued",
		Prompt:           req.Prompt,
		AspectRatio:      req.AspectRatio,
		DurationSeconds:  req.DurationSeconds,
		FirstFrameURL:    req.FirstFrameURL,
		UseFastModel:     req.UseFastModel,
		EnhancePrompt:    req.EnhancePrompt,
		Style:            req.Style,
		PersonGeneration: req.PersonGeneration,
		CreatedAt:        time.Now(),
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if err := s.publisher.PublishJob(ctx, job.ID, uuid.NewString()); err != nil {
		// The row exists but no worker will pick it up; fail it so the caller
		// is not left polling a job that never runs.
		errMsg := "failed to enqueue job"
		if updateErr := s.jobRepo.UpdateStatus(ctx, job.ID, "failed", &errMsg); updateErr != nil {
			log.Error().Err(updateErr).Str("job_id", job.ID.String()).Msg("Failed to mark unpublished job as failed")
		}
		return nil, fmt.Errorf("failed to publish job: %w", err)
	}

	log.Info().
		Str("job_id", job.ID.String()).
		Str("user_id", userID.String()).
		Str("aspect_ratio", job.AspectRatio).
		Bool("use_fast_model", job.UseFastModel).
		Msg("Video job created")

	return &models.CreateVideoResponse{
		JobID:     job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
	}, nil
}

// GetVideo returns job status for the owning user
func (s *VideoService) GetVideo(ctx context.Context, jobID, userID uuid.UUID) (*models.VideoStatusResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, fmt.Errorf("video job not found")
	}

	resp := &models.VideoStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Prompt:      job.Prompt,
		AspectRatio: job.AspectRatio,
		Model:       job.Model,
		Error:       job.ErrorMessage,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		FinishedAt:  job.FinishedAt,
	}

	if job.Status == "succeeded" {
		asset, err := s.assetRepo.GetByJobID(ctx, job.ID)
		if err != nil {
			log.Warn().Err(err).Str("job_id", job.ID.String()).Msg("Succeeded job has no asset")
			return resp, nil
		}
		resp.Asset = s.assetInfo(asset)
	}

	return resp, nil
}

// ListVideos lists the user's jobs with cursor pagination
func (s *VideoService) ListVideos(ctx context.Context, userID uuid.UUID, limit int, cursor *time.Time) ([]*models.VideoJob, error) {
	return s.jobRepo.ListByUser(ctx, userID, clampListLimit(limit, s.config.MaxListLimit), cursor)
}

// clampListLimit normalizes a caller-supplied page size: non-positive values
// fall back to the default, oversized values clamp to max.
func clampListLimit(limit, max int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > max {
		return max
	}
	return limit
}

// GetAsset returns asset info for the owning user
func (s *VideoService) GetAsset(ctx context.Context, assetID, userID uuid.UUID) (*models.AssetInfo, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobRepo.GetByID(ctx, asset.JobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, fmt.Errorf("asset not found")
	}

	return s.assetInfo(asset), nil
}

// assetInfo builds the API-facing asset record, preferring a presigned URL
// and falling back to the public bucket URL.
func (s *VideoService) assetInfo(asset *models.Asset) *models.AssetInfo {
	info := &models.AssetInfo{
		AssetID:   asset.ID,
		MimeType:  asset.MimeType,
		SizeBytes: asset.SizeBytes,
	}

	if s.signer != nil {
		signed, err := s.signer.GeneratePresignedURL(asset.S3Key, presignedURLTTL)
		if err != nil {
			log.Warn().Err(err).Str("asset_id", asset.ID.String()).Msg("Failed to presign asset URL")
			info.URL = s.signer.PublicURL(asset.S3Key)
		} else {
			info.URL = signed
		}
	}

	return info
}
