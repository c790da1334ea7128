package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/videogen/internal/config"
	"github.com/snappy-loop/videogen/internal/database"
	"github.com/snappy-loop/videogen/internal/kafka"
	"github.com/snappy-loop/videogen/internal/models"
	"github.com/snappy-loop/videogen/internal/video"
)

// Generator runs a single video generation to completion
type Generator interface {
	Generate(ctx context.Context, req *video.GenerationRequest) *video.GenerationResult
}

// PromptEnhancer optionally rewrites prompts before generation
type PromptEnhancer interface {
	Enhance(ctx context.Context, prompt, style string) string
}

// AssetUploader stores generated binaries
type AssetUploader interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) error
	Bucket() string
}

// VideoProcessor executes queued video jobs
type VideoProcessor struct {
	jobRepo   *database.VideoJobRepository
	assetRepo *database.AssetRepository
	generator Generator
	enhancer  PromptEnhancer
	uploader  AssetUploader
	config    *config.Config
}

// NewVideoProcessor creates a new video processor
func NewVideoProcessor(db *database.DB, generator Generator, enhancer PromptEnhancer, uploader AssetUploader, cfg *config.Config) *VideoProcessor {
	return &VideoProcessor{
		jobRepo:   database.NewVideoJobRepository(db),
		assetRepo: database.NewAssetRepository(db),
		generator: generator,
		enhancer:  enhancer,
		uploader:  uploader,
		config:    cfg,
	}
}

// HandleMessage implements kafka.MessageHandler
func (p *VideoProcessor) HandleMessage(ctx context.Context, msg *kafka.VideoJobMessage) error {
	return p.ProcessJob(ctx, msg.JobID)
}

// ProcessJob runs a job end-to-end: generate, persist the asset, record the outcome
func (p *VideoProcessor) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	log.Info().Str("job_id", jobID.String()).Msg("Starting video job")

	job, err := p.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	if job.Status == "succeeded" || job.Status == "failed" {
		log.Warn().
			Str("job_id", jobID.String()).
			Str("status", job.Status).
			Msg("Job already processed")
		return nil
	}

	if err := p.jobRepo.UpdateStatus(ctx, jobID, "running", nil); err != nil {
		log.Error().Err(err).Msg("Failed to update job status to running")
	}

	model := p.config.VeoModel
	if job.UseFastModel {
		model = p.config.VeoFastModel
	}
	if err := p.jobRepo.SetModel(ctx, jobID, model); err != nil {
		log.Error().Err(err).Msg("Failed to record job model")
	}

	if err := p.runJob(ctx, job); err != nil {
		log.Error().
			Err(err).
			Str("job_id", jobID.String()).
			Msg("Video job failed")

		errMsg := err.Error()
		if err := p.jobRepo.UpdateStatus(ctx, jobID, "failed", &errMsg); err != nil {
			log.Error().Err(err).Msg("Failed to update job status to failed")
		}
		return nil // outcome recorded; don't retry the message
	}

	if err := p.jobRepo.UpdateStatus(ctx, jobID, "succeeded", nil); err != nil {
		log.Error().Err(err).Msg("Failed to update job status to succeeded")
	}

	log.Info().
		Str("job_id", jobID.String()).
		Msg("Video job completed")

	return nil
}

// runJob performs the generation and stores the result
func (p *VideoProcessor) runJob(ctx context.Context, job *models.VideoJob) error {
	req := buildGenerationRequest(job)

	if job.EnhancePrompt && p.enhancer != nil {
		style := ""
		if job.Style != nil {
			style = *job.Style
		}
		req.Prompt = p.enhancer.Enhance(ctx, req.Prompt, style)
	}

	result := p.generator.Generate(ctx, req)
	if !result.Success {
		return errors.New(result.Error)
	}

	key := fmt.Sprintf("jobs/%s/video.mp4", job.ID)
	if err := p.uploader.UploadBytes(ctx, key, result.Data, "video/mp4"); err != nil {
		return fmt.Errorf("video upload failed: %w", err)
	}

	asset := &models.Asset{
		ID:        uuid.New(),
		JobID:     job.ID,
		Kind:      "video",
		MimeType:  "video/mp4",
		S3Bucket:  p.uploader.Bucket(),
		S3Key:     key,
		SizeBytes: int64(len(result.Data)),
		Meta:      assetMeta(result, req.Prompt),
		CreatedAt: time.Now(),
	}

	if err := p.assetRepo.Create(ctx, asset); err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}

	log.Info().
		Str("job_id", job.ID.String()).
		Str("asset_id", asset.ID.String()).
		Str("s3_key", key).
		Int64("size_bytes", asset.SizeBytes).
		Msg("Video asset stored")

	return nil
}

// buildGenerationRequest maps a job row onto the provider's request.
func buildGenerationRequest(job *models.VideoJob) *video.GenerationRequest {
	req := &video.GenerationRequest{
		Prompt:           job.Prompt,
		AspectRatio:      job.AspectRatio,
		DurationSeconds:  job.DurationSeconds,
		UseFastModel:     job.UseFastModel,
		PersonGeneration: job.PersonGeneration,
	}
	if job.FirstFrameURL != nil {
		req.FirstFrameURL = *job.FirstFrameURL
	}
	return req
}

// assetMeta carries generation metadata onto the asset row. The stored prompt
// is the one actually submitted (post-enhancement).
func assetMeta(result *video.GenerationResult, submittedPrompt string) map[string]any {
	meta := map[string]any{
		"file_path": result.FilePath,
		"prompt":    submittedPrompt,
	}
	for k, v := range result.Metadata {
		if k == "prompt" {
			continue
		}
		meta[k] = v
	}
	return meta
}
