package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/snappy-loop/videogen/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// VideoJobRepository handles video job database operations
type VideoJobRepository struct {
	db *DB
}

// NewVideoJobRepository creates a new VideoJobRepository
func NewVideoJobRepository(db *DB) *VideoJobRepository {
	return &VideoJobRepository{db: db}
}

// Create creates a new video job
func (r *VideoJobRepository) Create(ctx context.Context, job *models.VideoJob) error {
	query := `
		INSERT INTO video_jobs (
			id, user_id, api_key_id, status, prompt, aspect_ratio, duration_seconds,
			first_frame_url, use_fast_model, enhance_prompt, style, person_generation, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.UserID, job.APIKeyID, job.Status, job.Prompt, job.AspectRatio,
		job.DurationSeconds, job.FirstFrameURL, job.UseFastModel, job.EnhancePrompt,
		job.Style, job.PersonGeneration, job.CreatedAt,
	)

	return err
}

// GetByID retrieves a video job by ID
func (r *VideoJobRepository) GetByID(ctx context.Context, jobID uuid.UUID) (*models.VideoJob, error) {
	query := `
		SELECT id, user_id, api_key_id, status, prompt, aspect_ratio, duration_seconds,
			first_frame_url, use_fast_model, enhance_prompt, style, person_generation,
			model, error_message, created_at, started_at, finished_at
		FROM video_jobs WHERE id = $1
	`

	job := &models.VideoJob{}
	err := r.db.QueryRowContext(ctx, query, jobID).Scan(
		&job.ID, &job.UserID, &job.APIKeyID, &job.Status, &job.Prompt, &job.AspectRatio,
		&job.DurationSeconds, &job.FirstFrameURL, &job.UseFastModel, &job.EnhancePrompt,
		&job.Style, &job.PersonGeneration, &job.Model, &job.ErrorMessage,
		&job.CreatedAt, &job.StartedAt, &job.FinishedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("video job not found")
	}

	return job, err
}

// ListByUser retrieves video jobs for a user with cursor pagination
func (r *VideoJobRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *time.Time) ([]*models.VideoJob, error) {
	query := `
		SELECT id, user_id, api_key_id, status, prompt, aspect_ratio, duration_seconds,
			first_frame_url, use_fast_model, enhance_prompt, style, person_generation,
			model, error_message, created_at, started_at, finished_at
		FROM video_jobs
		WHERE user_id = $1 AND ($2::timestamptz IS NULL OR created_at < $2)
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, cursor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.VideoJob
	for rows.Next() {
		job := &models.VideoJob{}
		err := rows.Scan(
			&job.ID, &job.UserID, &job.APIKeyID, &job.Status, &job.Prompt, &job.AspectRatio,
			&job.DurationSeconds, &job.FirstFrameURL, &job.UseFastModel, &job.EnhancePrompt,
			&job.Style, &job.PersonGeneration, &job.Model, &job.ErrorMessage,
			&job.CreatedAt, &job.StartedAt, &job.FinishedAt,
		)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// UpdateStatus updates job status and error message; running sets started_at,
// terminal states set finished_at.
func (r *VideoJobRepository) UpdateStatus(ctx context.Context, jobID uuid.UUID, status string, errorMessage *string) error {
	query := `
		UPDATE video_jobs
		SET status = $2,
			error_message = $3,
			started_at = CASE WHEN $2 = 'running' THEN now() ELSE started_at END,
			finished_at = CASE WHEN $2 IN ('succeeded', 'failed') THEN now() ELSE finished_at END
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, jobID, status, errorMessage)
	return err
}

// SetModel records the model the worker selected for the job
func (r *VideoJobRepository) SetModel(ctx context.Context, jobID uuid.UUID, model string) error {
	query := `UPDATE video_jobs SET model = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, jobID, model)
	return err
}

// AssetRepository handles asset database operations
type AssetRepository struct {
	db *DB
}

// NewAssetRepository creates a new AssetRepository
func NewAssetRepository(db *DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Create creates a new asset
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	var metaJSON []byte
	var err error

	if asset.Meta != nil {
		metaJSON, err = json.Marshal(asset.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal meta: %w", err)
		}
	}

	query := `
		INSERT INTO assets (
			id, job_id, kind, mime_type, s3_bucket, s3_key, size_bytes, meta, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		asset.ID, asset.JobID, asset.Kind, asset.MimeType,
		asset.S3Bucket, asset.S3Key, asset.SizeBytes, metaJSON, asset.CreatedAt,
	)

	return err
}

// GetByID retrieves an asset by ID
func (r *AssetRepository) GetByID(ctx context.Context, assetID uuid.UUID) (*models.Asset, error) {
	query := `
		SELECT id, job_id, kind, mime_type, s3_bucket, s3_key, size_bytes, meta, created_at
		FROM assets WHERE id = $1
	`
	return r.scanAsset(r.db.QueryRowContext(ctx, query, assetID))
}

// GetByJobID retrieves the asset produced by a job, if any
func (r *AssetRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Asset, error) {
	query := `
		SELECT id, job_id, kind, mime_type, s3_bucket, s3_key, size_bytes, meta, created_at
		FROM assets WHERE job_id = $1
		ORDER BY created_at DESC LIMIT 1
	`
	return r.scanAsset(r.db.QueryRowContext(ctx, query, jobID))
}

func (r *AssetRepository) scanAsset(row *sql.Row) (*models.Asset, error) {
	asset := &models.Asset{}
	var metaJSON []byte

	err := row.Scan(
		&asset.ID, &asset.JobID, &asset.Kind, &asset.MimeType,
		&asset.S3Bucket, &asset.S3Key, &asset.SizeBytes, &metaJSON, &asset.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("asset not found")
	}
	if err != nil {
		return nil, err
	}

	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &asset.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meta: %w", err)
		}
	}

	return asset, nil
}

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.CreatedAt)
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, email, created_at FROM users WHERE id = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	return user, err
}

// APIKeyRepository handles API key database operations
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// KeyLookupHash returns the lookup hash for an API key (sha256 hex).
// Used for secure lookup without storing the plain key.
func KeyLookupHash(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

// GetByKeyLookup retrieves an API key by its lookup hash (sha256 hex of the plain key)
func (r *APIKeyRepository) GetByKeyLookup(ctx context.Context, lookup string) (*models.APIKey, error) {
	query := `
		SELECT id, user_id, key_hash, status, created_at
		FROM api_keys
		WHERE key_lookup = $1
	`

	key := &models.APIKey{}
	err := r.db.QueryRowContext(ctx, query, lookup).Scan(
		&key.ID, &key.UserID, &key.KeyHash, &key.Status, &key.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("api key not found")
	}

	return key, err
}

// CreateAPIKey creates a new API key for a user and returns the plain key (shown only once).
func (r *APIKeyRepository) CreateAPIKey(ctx context.Context, userID uuid.UUID) (plainKey string, key *models.APIKey, err error) {
	const keyLen = 32
	b := make([]byte, keyLen)
	if _, err := rand.Read(b); err != nil {
		return "", nil, fmt.Errorf("generate key: %w", err)
	}
	plainKey = "vk_" + hex.EncodeToString(b)

	hash, err := bcrypt.GenerateFromPassword([]byte(plainKey), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash key: %w", err)
	}
	lookup := KeyLookupHash(plainKey)

	key = &models.APIKey{
		ID:        uuid.New(),
		UserID:    userID,
		KeyHash:   string(hash),
		Status:    "active",
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO api_keys (id, user_id, key_hash, key_lookup, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		key.ID, key.UserID, key.KeyHash, lookup, key.Status, key.CreatedAt,
	)
	if err != nil {
		return "", nil, err
	}
	return plainKey, key, nil
}
